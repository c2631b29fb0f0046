package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/petcare-api/internal/model"
	"github.com/jwalitptl/petcare-api/pkg/errors"
)

const appointmentColumns = `
	id, store_id, customer_id, pet_id, staff_id,
	start_time, end_time, status, notes,
	created_by, recurrence_id, created_at, updated_at
`

// storeLockKey derives the advisory-lock key that serializes bookings per
// store. Two writers for the same store take the same lock, so the conflict
// re-check and the insert below execute as one atomic unit.
func storeLockKey(storeID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(storeID[:])
	return int64(h.Sum64())
}

// mapWriteError translates constraint and serialization failures into the
// persistence-conflict kind the orchestrator understands. Everything else
// stays an opaque internal failure.
func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "23505", "23P01": // serialization, unique, exclusion
			return errors.NewPersistenceConflict(err)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (r *appointmentRepository) CreateWithConflictCheck(ctx context.Context, apt *model.Appointment, lines []*model.ServiceLine, evt *model.OutboxEvent) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockStore(ctx, tx, apt.StoreID); err != nil {
			return err
		}

		ids, err := conflictingIDs(ctx, tx, apt.StoreID, apt.StaffID, apt.StartTime, apt.EndTime, nil)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			return errors.NewPersistenceConflictWithIDs(ids)
		}

		query := `
			INSERT INTO appointments (` + appointmentColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		if _, err := tx.ExecContext(ctx, query,
			apt.ID,
			apt.StoreID,
			apt.CustomerID,
			apt.PetID,
			apt.StaffID,
			apt.StartTime,
			apt.EndTime,
			apt.Status,
			apt.Notes,
			apt.CreatedBy,
			apt.RecurrenceID,
			apt.CreatedAt,
			apt.UpdatedAt,
		); err != nil {
			return err
		}

		if err := insertServiceLines(ctx, tx, lines); err != nil {
			return err
		}
		return insertOutboxEvent(ctx, tx, evt)
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrPersistenceConflict) {
			return err
		}
		return mapWriteError("create appointment", err)
	}
	return nil
}

func (r *appointmentRepository) UpdateScheduleWithConflictCheck(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockStore(ctx, tx, apt.StoreID); err != nil {
			return err
		}

		excludeID := apt.ID
		ids, err := conflictingIDs(ctx, tx, apt.StoreID, apt.StaffID, apt.StartTime, apt.EndTime, &excludeID)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			return errors.NewPersistenceConflictWithIDs(ids)
		}

		query := `
			UPDATE appointments
			SET start_time = $1, end_time = $2, status = $3, updated_at = $4
			WHERE id = $5
		`
		result, err := tx.ExecContext(ctx, query,
			apt.StartTime, apt.EndTime, apt.Status, apt.UpdatedAt, apt.ID)
		if err != nil {
			return err
		}
		if err := requireRow(result); err != nil {
			return err
		}
		return insertOutboxEvent(ctx, tx, evt)
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrPersistenceConflict) || errors.IsCode(err, errors.ErrNotFound) {
			return err
		}
		return mapWriteError("reschedule appointment", err)
	}
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment, evt *model.OutboxEvent) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE appointments
			SET status = $1, staff_id = $2, notes = $3, recurrence_id = $4, updated_at = $5
			WHERE id = $6
		`
		result, err := tx.ExecContext(ctx, query,
			apt.Status, apt.StaffID, apt.Notes, apt.RecurrenceID, apt.UpdatedAt, apt.ID)
		if err != nil {
			return err
		}
		if err := requireRow(result); err != nil {
			return err
		}
		return insertOutboxEvent(ctx, tx, evt)
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrNotFound) {
			return err
		}
		return mapWriteError("update appointment", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	lines, err := r.getServiceLines(ctx, id)
	if err != nil {
		return nil, err
	}
	apt.ServiceLines = lines
	return &apt, nil
}

func (r *appointmentRepository) ListOverlapping(ctx context.Context, storeID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE store_id = $1
		AND status != 'cancelled'
		AND start_time < $3 AND end_time > $2
		AND ($4::uuid IS NULL OR id != $4)
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, storeID, start, end, excludeID); err != nil {
		return nil, fmt.Errorf("failed to list overlapping appointments: %w", err)
	}
	return appointments, nil
}

var searchSortFields = map[string]string{
	"":           "start_time",
	"start_time": "start_time",
	"created_at": "created_at",
	"status":     "status",
}

func (r *appointmentRepository) Search(ctx context.Context, filters *model.AppointmentFilters, page model.Pagination, sort model.SortOrder) (*model.AppointmentPage, error) {
	// Reject bad input before touching the database.
	orderBy, ok := searchSortFields[sort.Field]
	if !ok {
		return nil, errors.NewValidation("unsupported sort field: " + sort.Field)
	}
	dir := "ASC"
	if strings.EqualFold(sort.Dir, "desc") {
		dir = "DESC"
	}

	where := []string{"1=1"}
	args := []interface{}{}
	argCount := 1

	addFilter := func(clause string, value interface{}) {
		where = append(where, fmt.Sprintf(clause, argCount))
		args = append(args, value)
		argCount++
	}

	if filters != nil {
		if filters.StoreID != uuid.Nil {
			addFilter("store_id = $%d", filters.StoreID)
		}
		if filters.StaffID != uuid.Nil {
			addFilter("staff_id = $%d", filters.StaffID)
		}
		if filters.CustomerID != uuid.Nil {
			addFilter("customer_id = $%d", filters.CustomerID)
		}
		if filters.PetID != uuid.Nil {
			addFilter("pet_id = $%d", filters.PetID)
		}
		if filters.Status != "" {
			addFilter("status = $%d", filters.Status)
		}
		if !filters.StartDate.IsZero() {
			addFilter("start_time >= $%d", filters.StartDate)
		}
		if !filters.EndDate.IsZero() {
			addFilter("start_time < $%d", filters.EndDate)
		}
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM appointments WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, appointmentColumns, whereClause, orderBy, dir, argCount, argCount+1)
	args = append(args, page.PageSize, page.Offset())

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search appointments: %w", err)
	}

	return &model.AppointmentPage{
		Items:    appointments,
		PageInfo: model.NewPageInfo(page, total),
	}, nil
}

func (r *appointmentRepository) getServiceLines(ctx context.Context, appointmentID uuid.UUID) ([]*model.ServiceLine, error) {
	query := `
		SELECT id, appointment_id, service_id, quantity, price_override, created_at
		FROM appointment_service_lines
		WHERE appointment_id = $1
		ORDER BY created_at ASC
	`
	var lines []*model.ServiceLine
	if err := r.db.SelectContext(ctx, &lines, query, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to get service lines: %w", err)
	}
	return lines, nil
}

func lockStore(ctx context.Context, tx *sqlx.Tx, storeID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, storeLockKey(storeID)); err != nil {
		return fmt.Errorf("failed to acquire store lock: %w", err)
	}
	return nil
}

// conflictingIDs re-runs the conflict query inside the booking transaction.
// The staff rule mirrors the in-process detector: a NULL staff on either
// side contends on the store itself.
func conflictingIDs(ctx context.Context, tx *sqlx.Tx, storeID uuid.UUID, staffID *uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM appointments
		WHERE store_id = $1
		AND status != 'cancelled'
		AND start_time < $3 AND end_time > $2
		AND ($4::uuid IS NULL OR staff_id IS NULL OR staff_id = $4)
		AND ($5::uuid IS NULL OR id != $5)
		ORDER BY start_time ASC
	`
	var ids []uuid.UUID
	if err := tx.SelectContext(ctx, &ids, query, storeID, start, end, staffID, excludeID); err != nil {
		return nil, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return ids, nil
}

func insertServiceLines(ctx context.Context, tx *sqlx.Tx, lines []*model.ServiceLine) error {
	query := `
		INSERT INTO appointment_service_lines (
			id, appointment_id, service_id, quantity, price_override, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, query,
			line.ID,
			line.AppointmentID,
			line.ServiceID,
			line.Quantity,
			line.PriceOverride,
			line.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return errors.NewNotFound("appointment", nil)
	}
	return nil
}
