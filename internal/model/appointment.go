package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/petcare-api/pkg/errors"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked          AppointmentStatus = "booked"
	AppointmentStatusConfirmed       AppointmentStatus = "confirmed"
	AppointmentStatusCheckedIn       AppointmentStatus = "checked_in"
	AppointmentStatusCompleted       AppointmentStatus = "completed"
	AppointmentStatusCancelled       AppointmentStatus = "cancelled"
	AppointmentStatusNeedsReschedule AppointmentStatus = "needs_reschedule"
)

// statusTransitions is the single source of truth for the appointment
// lifecycle. A missing source key means the state is terminal.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusBooked:          {AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusNeedsReschedule},
	AppointmentStatusConfirmed:       {AppointmentStatusCheckedIn, AppointmentStatusCancelled, AppointmentStatusNeedsReschedule},
	AppointmentStatusCheckedIn:       {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNeedsReschedule},
	AppointmentStatusNeedsReschedule: {AppointmentStatusBooked, AppointmentStatusCancelled},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusBooked, AppointmentStatusConfirmed, AppointmentStatusCheckedIn,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNeedsReschedule:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// CanTransitionTo consults the transition table. Same-state transitions are
// handled by Transition as no-ops, not here.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Appointment is the central scheduling aggregate. Status is never assigned
// directly outside this package; all lifecycle changes go through Transition
// and the mutation methods below.
type Appointment struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	StoreID      uuid.UUID         `db:"store_id" json:"store_id"`
	CustomerID   uuid.UUID         `db:"customer_id" json:"customer_id"`
	PetID        uuid.UUID         `db:"pet_id" json:"pet_id"`
	StaffID      *uuid.UUID        `db:"staff_id" json:"staff_id,omitempty"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	CreatedBy    *uuid.UUID        `db:"created_by" json:"created_by,omitempty"`
	RecurrenceID *uuid.UUID        `db:"recurrence_id" json:"recurrence_id,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`

	ServiceLines []*ServiceLine `db:"-" json:"service_lines,omitempty"`
}

// NewAppointment constructs an appointment in the initial Booked status.
// The window invariant start < end holds here and after every mutation.
func NewAppointment(storeID, customerID, petID uuid.UUID, staffID *uuid.UUID, start, end time.Time) (*Appointment, error) {
	if storeID == uuid.Nil {
		return nil, errors.NewValidation("store_id is required")
	}
	if customerID == uuid.Nil {
		return nil, errors.NewValidation("customer_id is required")
	}
	if petID == uuid.Nil {
		return nil, errors.NewValidation("pet_id is required")
	}
	if staffID != nil && *staffID == uuid.Nil {
		return nil, errors.NewValidation("staff_id must be a valid id when provided")
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Appointment{
		StoreID:    storeID,
		CustomerID: customerID,
		PetID:      petID,
		StaffID:    staffID,
		StartTime:  start,
		EndTime:    end,
		Status:     AppointmentStatusBooked,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return errors.NewValidation("start_time and end_time are required")
	}
	if !start.Before(end) {
		return errors.NewValidation("end_time must be after start_time")
	}
	return nil
}

// CanModify reports whether the appointment accepts mutations (reschedule,
// staff assignment, notes, recurrence linking).
func (a *Appointment) CanModify() bool {
	return !a.Status.Terminal()
}

// Transition moves the appointment to target per the lifecycle table.
// Transitioning to the current status is a no-op success; the returned bool
// reports whether anything changed.
func (a *Appointment) Transition(target AppointmentStatus) (bool, error) {
	if !target.Valid() {
		return false, errors.NewValidation("unknown appointment status: " + string(target))
	}
	if target == a.Status {
		return false, nil
	}
	if !a.Status.CanTransitionTo(target) {
		return false, errors.NewInvalidTransition(string(a.Status), string(target))
	}
	a.Status = target
	a.touch()
	return true, nil
}

// Reschedule moves the window. Opening-hours and conflict validation is the
// orchestrator's job; the aggregate only enforces its own invariants.
func (a *Appointment) Reschedule(start, end time.Time) error {
	if !a.CanModify() {
		return errors.NewImmutable(string(a.Status))
	}
	if err := validateWindow(start, end); err != nil {
		return err
	}
	a.StartTime = start
	a.EndTime = end
	a.touch()
	return nil
}

func (a *Appointment) AssignStaff(staffID uuid.UUID) error {
	if !a.CanModify() {
		return errors.NewImmutable(string(a.Status))
	}
	if staffID == uuid.Nil {
		return errors.NewValidation("staff_id is required")
	}
	a.StaffID = &staffID
	a.touch()
	return nil
}

func (a *Appointment) UnassignStaff() error {
	if !a.CanModify() {
		return errors.NewImmutable(string(a.Status))
	}
	a.StaffID = nil
	a.touch()
	return nil
}

func (a *Appointment) UpdateNotes(notes string) error {
	if !a.CanModify() {
		return errors.NewImmutable(string(a.Status))
	}
	a.Notes = notes
	a.touch()
	return nil
}

// LinkRecurrence tags the appointment as a member of a recurring series.
// The engine never generates series itself.
func (a *Appointment) LinkRecurrence(recurrenceID uuid.UUID) error {
	if !a.CanModify() {
		return errors.NewImmutable(string(a.Status))
	}
	if recurrenceID == uuid.Nil {
		return errors.NewValidation("recurrence_id is required")
	}
	a.RecurrenceID = &recurrenceID
	a.touch()
	return nil
}

func (a *Appointment) touch() {
	a.UpdatedAt = time.Now().UTC()
}

// ServiceLine joins an appointment to a requested service. A full set of
// lines is created with the appointment and replaced wholesale on update.
type ServiceLine struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	ServiceID     uuid.UUID `db:"service_id" json:"service_id"`
	Quantity      int       `db:"quantity" json:"quantity"`
	PriceOverride *float64  `db:"price_override" json:"price_override,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// NewServiceLine validates quantity and override at construction time.
func NewServiceLine(serviceID uuid.UUID, quantity int, priceOverride *float64) (*ServiceLine, error) {
	if serviceID == uuid.Nil {
		return nil, errors.NewValidation("service_id is required")
	}
	if quantity <= 0 {
		return nil, errors.NewValidation("quantity must be a positive integer")
	}
	if priceOverride != nil && *priceOverride < 0 {
		return nil, errors.NewValidation("price_override must be non-negative")
	}
	return &ServiceLine{
		ServiceID:     serviceID,
		Quantity:      quantity,
		PriceOverride: priceOverride,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

type BookAppointmentRequest struct {
	StoreID    uuid.UUID            `json:"store_id" binding:"required"`
	CustomerID uuid.UUID            `json:"customer_id" binding:"required"`
	PetID      uuid.UUID            `json:"pet_id" binding:"required"`
	StaffID    *uuid.UUID           `json:"staff_id"`
	StartTime  time.Time            `json:"start_time" binding:"required"`
	EndTime    time.Time            `json:"end_time" binding:"required,gtfield=StartTime"`
	Notes      string               `json:"notes" binding:"max=1000"`
	CreatedBy  *uuid.UUID           `json:"created_by"`
	Services   []ServiceLineRequest `json:"services" binding:"required,min=1,dive"`
}

type ServiceLineRequest struct {
	ServiceID     uuid.UUID `json:"service_id" binding:"required"`
	Quantity      int       `json:"quantity" binding:"omitempty,min=1"`
	PriceOverride *float64  `json:"price_override" binding:"omitempty,min=0"`
}

type RescheduleAppointmentRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
}

type TransitionStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,appointment_status"`
}

type AssignStaffRequest struct {
	StaffID uuid.UUID `json:"staff_id" binding:"required"`
}

// AppointmentFilters narrows a search. Zero values mean "no filter".
type AppointmentFilters struct {
	StoreID    uuid.UUID         `form:"store_id"`
	StaffID    uuid.UUID         `form:"staff_id"`
	CustomerID uuid.UUID         `form:"customer_id"`
	PetID      uuid.UUID         `form:"pet_id"`
	Status     AppointmentStatus `form:"status"`
	StartDate  time.Time         `form:"start_date" time_format:"2006-01-02"`
	EndDate    time.Time         `form:"end_date" time_format:"2006-01-02"`
}

// AppointmentPage is a paginated search result, default-sorted by start time
// ascending.
type AppointmentPage struct {
	Items    []*Appointment `json:"items"`
	PageInfo PageInfo       `json:"page_info"`
}
