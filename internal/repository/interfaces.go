package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/petcare-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository persists the scheduling aggregate. The
	// *WithConflictCheck methods must run the conflict query and the write
	// in a single transaction; on a detected overlap they fail with a
	// persistence-conflict error instead of writing.
	AppointmentRepository interface {
		// CreateWithConflictCheck atomically re-checks for overlapping
		// appointments on the same resource and inserts the appointment,
		// its full service-line set and the outbox event.
		CreateWithConflictCheck(ctx context.Context, apt *model.Appointment, lines []*model.ServiceLine, evt *model.OutboxEvent) error
		// UpdateScheduleWithConflictCheck atomically re-checks the new
		// window (excluding the appointment itself) and persists it.
		UpdateScheduleWithConflictCheck(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error
		// Update persists status, staff, notes and recurrence changes.
		// No conflict check: the window is untouched.
		Update(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// ListOverlapping returns every non-cancelled appointment of the
		// store whose interval overlaps [start, end), regardless of staff.
		ListOverlapping(ctx context.Context, storeID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
		Search(ctx context.Context, filters *model.AppointmentFilters, page model.Pagination, sort model.SortOrder) (*model.AppointmentPage, error)
	}

	// StoreRepository resolves store calendars.
	StoreRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Store, error)
	}

	// ServiceRepository resolves bookable services.
	ServiceRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
	}

	// OutboxRepository handles the transactional outbox
	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
