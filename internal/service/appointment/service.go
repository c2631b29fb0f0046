package appointment

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/petcare-api/internal/model"
	"github.com/jwalitptl/petcare-api/internal/repository"
	"github.com/jwalitptl/petcare-api/pkg/errors"
	"github.com/jwalitptl/petcare-api/pkg/logger"
	"github.com/jwalitptl/petcare-api/pkg/metrics"
)

// Outbox event types emitted by the scheduling engine.
const (
	EventBooked          = "appointment.booked"
	EventRescheduled     = "appointment.rescheduled"
	EventStatusChanged   = "appointment.status_changed"
	EventStaffAssigned   = "appointment.staff_assigned"
	EventStaffUnassigned = "appointment.staff_unassigned"
)

// CatalogLookup resolves the store calendars and services the engine
// schedules against.
type CatalogLookup interface {
	Store(ctx context.Context, id uuid.UUID) (*model.Store, error)
	Service(ctx context.Context, id uuid.UUID) (*model.Service, error)
}

// Service orchestrates booking and rescheduling: opening-hours validation,
// conflict detection, pricing and the lifecycle state machine.
type Service struct {
	repo    repository.AppointmentRepository
	catalog CatalogLookup
	logger  *logger.Logger
	metrics *metrics.Metrics
	idgen   func() uuid.UUID
}

func NewService(repo repository.AppointmentRepository, catalog CatalogLookup, l *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		logger:  l,
		metrics: m,
		idgen:   uuid.New,
	}
}

// WithIDGenerator swaps the id source, mainly for deterministic tests.
func (s *Service) WithIDGenerator(gen func() uuid.UUID) *Service {
	s.idgen = gen
	return s
}

// BookAppointment implements the booking flow: window validation, opening
// hours, conflict detection, construction in Booked status, line pricing
// validation and an atomic persist. The sum of service durations is
// informational; the caller-supplied window is authoritative.
func (s *Service) BookAppointment(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	timer := prometheus.NewTimer(s.metrics.BookingLatency)
	defer timer.ObserveDuration()

	apt, err := s.bookAppointment(ctx, req)
	switch {
	case err == nil:
		s.metrics.BookingsTotal.WithLabelValues("success").Inc()
	case errors.IsCode(err, errors.ErrSchedulingConflict):
		s.metrics.SchedulingConflicts.Inc()
		s.metrics.BookingsTotal.WithLabelValues("conflict").Inc()
	default:
		s.metrics.BookingsTotal.WithLabelValues("rejected").Inc()
	}
	return apt, err
}

func (s *Service) bookAppointment(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	apt, err := model.NewAppointment(req.StoreID, req.CustomerID, req.PetID, req.StaffID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	apt.ID = s.idgen()
	apt.Notes = req.Notes
	apt.CreatedBy = req.CreatedBy

	lines, err := s.buildLines(ctx, apt.ID, req.Services)
	if err != nil {
		return nil, err
	}

	if err := s.validateWindow(ctx, apt.StoreID, apt.StaffID, apt.StartTime, apt.EndTime, nil); err != nil {
		return nil, err
	}

	evt, err := newOutboxEvent(EventBooked, apt)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := s.repo.CreateWithConflictCheck(ctx, apt, lines, evt); err != nil {
		return nil, s.mapPersistenceError(err)
	}
	apt.ServiceLines = lines

	s.logger.Info("appointment booked",
		"appointment_id", apt.ID.String(),
		"store_id", apt.StoreID.String(),
		"start_time", apt.StartTime)
	return apt, nil
}

// RescheduleAppointment re-validates the new window exactly as a fresh
// booking would, excluding the appointment itself from conflict checks.
func (s *Service) RescheduleAppointment(ctx context.Context, id uuid.UUID, start, end time.Time) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apt.Reschedule(start, end); err != nil {
		return nil, err
	}

	if err := s.validateWindow(ctx, apt.StoreID, apt.StaffID, start, end, &id); err != nil {
		if errors.IsCode(err, errors.ErrSchedulingConflict) {
			s.metrics.SchedulingConflicts.Inc()
		}
		return nil, err
	}

	evt, err := newOutboxEvent(EventRescheduled, apt)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := s.repo.UpdateScheduleWithConflictCheck(ctx, apt, evt); err != nil {
		err = s.mapPersistenceError(err)
		if errors.IsCode(err, errors.ErrSchedulingConflict) {
			s.metrics.SchedulingConflicts.Inc()
		}
		return nil, err
	}

	s.logger.Info("appointment rescheduled",
		"appointment_id", apt.ID.String(),
		"start_time", apt.StartTime)
	return apt, nil
}

// TransitionStatus moves the appointment through the lifecycle table. A
// transition to the current status is a no-op success and skips the write
// entirely.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, target model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := apt.Transition(target)
	if err != nil {
		return nil, err
	}
	if !changed {
		return apt, nil
	}

	evt, err := newOutboxEvent(EventStatusChanged, apt)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := s.repo.Update(ctx, apt, evt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.logger.Info("appointment status changed",
		"appointment_id", apt.ID.String(),
		"status", string(apt.Status))
	return apt, nil
}

func (s *Service) AssignStaff(ctx context.Context, id, staffID uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apt.AssignStaff(staffID); err != nil {
		return nil, err
	}

	evt, err := newOutboxEvent(EventStaffAssigned, apt)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := s.repo.Update(ctx, apt, evt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) UnassignStaff(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apt.UnassignStaff(); err != nil {
		return nil, err
	}

	evt, err := newOutboxEvent(EventStaffUnassigned, apt)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := s.repo.Update(ctx, apt, evt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apt.UpdateNotes(notes); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, apt, nil); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return apt, nil
}

// PriceAppointment resolves each line's service and computes the quote.
func (s *Service) PriceAppointment(ctx context.Context, id uuid.UUID) (*Quote, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	quote := &Quote{AppointmentID: apt.ID}
	for _, line := range apt.ServiceLines {
		svc, err := s.catalog.Service(ctx, line.ServiceID)
		if err != nil {
			return nil, err
		}
		lp := priceLine(line, svc.Price)
		quote.Lines = append(quote.Lines, lp)
		quote.Total += lp.LineTotal
	}
	return quote, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) SearchAppointments(ctx context.Context, filters *model.AppointmentFilters, page model.Pagination, sort model.SortOrder) (*model.AppointmentPage, error) {
	page.Normalize()
	result, err := s.repo.Search(ctx, filters, page, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to search appointments: %w", err)
	}
	return result, nil
}

// validateWindow runs opening-hours and conflict checks for a proposed
// window on a store/staff resource.
func (s *Service) validateWindow(ctx context.Context, storeID uuid.UUID, staffID *uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	store, err := s.catalog.Store(ctx, storeID)
	if err != nil {
		return err
	}
	if err := checkOpeningHours(store, start, end); err != nil {
		return err
	}

	candidates, err := s.repo.ListOverlapping(ctx, storeID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("failed to query overlapping appointments: %w", err)
	}
	conflicts := filterConflicts(NewResourceKey(storeID, staffID), start, end, excludeID, candidates)
	if len(conflicts) > 0 {
		return errors.NewSchedulingConflict(conflictIDs(conflicts))
	}
	return nil
}

func (s *Service) buildLines(ctx context.Context, aptID uuid.UUID, reqs []model.ServiceLineRequest) ([]*model.ServiceLine, error) {
	if len(reqs) == 0 {
		return nil, errors.NewValidation("at least one service is required")
	}

	lines := make([]*model.ServiceLine, 0, len(reqs))
	for _, r := range reqs {
		// Every requested service must exist before the booking persists.
		if _, err := s.catalog.Service(ctx, r.ServiceID); err != nil {
			return nil, err
		}
		quantity := r.Quantity
		if quantity == 0 {
			quantity = 1
		}
		line, err := model.NewServiceLine(r.ServiceID, quantity, r.PriceOverride)
		if err != nil {
			return nil, err
		}
		line.ID = s.idgen()
		line.AppointmentID = aptID
		lines = append(lines, line)
	}
	return lines, nil
}

// mapPersistenceError converts a repository conflict-constraint failure
// into the scheduling-conflict result callers retry on. Anything else in
// the write path propagates untouched.
func (s *Service) mapPersistenceError(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Code == errors.ErrPersistenceConflict {
		if ids, ok := appErr.Details["conflicting_appointment_ids"].([]uuid.UUID); ok {
			return errors.NewSchedulingConflict(ids)
		}
		return errors.NewSchedulingConflict(nil)
	}
	return err
}

func newOutboxEvent(eventType string, apt *model.Appointment) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(apt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}, nil
}
