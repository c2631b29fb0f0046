package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/petcare-api/pkg/errors"
)

func newTestAppointment(t *testing.T) *Appointment {
	t.Helper()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	apt, err := NewAppointment(uuid.New(), uuid.New(), uuid.New(), nil, start, start.Add(time.Hour))
	require.NoError(t, err)
	return apt
}

func TestNewAppointment(t *testing.T) {
	storeID, customerID, petID := uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("valid", func(t *testing.T) {
		apt, err := NewAppointment(storeID, customerID, petID, nil, start, end)
		require.NoError(t, err)
		assert.Equal(t, AppointmentStatusBooked, apt.Status)
		assert.Nil(t, apt.StaffID)
	})

	t.Run("missing ids", func(t *testing.T) {
		_, err := NewAppointment(uuid.Nil, customerID, petID, nil, start, end)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))

		_, err = NewAppointment(storeID, uuid.Nil, petID, nil, start, end)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))

		_, err = NewAppointment(storeID, customerID, uuid.Nil, nil, start, end)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))
	})

	t.Run("nil staff id pointer value", func(t *testing.T) {
		nilStaff := uuid.Nil
		_, err := NewAppointment(storeID, customerID, petID, &nilStaff, start, end)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))
	})

	t.Run("end not after start", func(t *testing.T) {
		_, err := NewAppointment(storeID, customerID, petID, nil, start, start)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))

		_, err = NewAppointment(storeID, customerID, petID, nil, end, start)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))
	})
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{AppointmentStatusBooked, AppointmentStatusConfirmed, true},
		{AppointmentStatusBooked, AppointmentStatusCancelled, true},
		{AppointmentStatusBooked, AppointmentStatusNeedsReschedule, true},
		{AppointmentStatusBooked, AppointmentStatusCheckedIn, false},
		{AppointmentStatusBooked, AppointmentStatusCompleted, false},
		{AppointmentStatusConfirmed, AppointmentStatusCheckedIn, true},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, false},
		{AppointmentStatusCheckedIn, AppointmentStatusCompleted, true},
		{AppointmentStatusCheckedIn, AppointmentStatusCancelled, true},
		{AppointmentStatusCheckedIn, AppointmentStatusConfirmed, false},
		{AppointmentStatusNeedsReschedule, AppointmentStatusBooked, true},
		{AppointmentStatusNeedsReschedule, AppointmentStatusCancelled, true},
		{AppointmentStatusNeedsReschedule, AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{AppointmentStatusCompleted, AppointmentStatusBooked, false},
		{AppointmentStatusCancelled, AppointmentStatusBooked, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			apt := newTestAppointment(t)
			apt.Status = tt.from

			changed, err := apt.Transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.True(t, changed)
				assert.Equal(t, tt.to, apt.Status)
			} else {
				assert.True(t, errors.IsCode(err, errors.ErrInvalidTransition))
				assert.Equal(t, tt.from, apt.Status)
			}
		})
	}
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	apt := newTestAppointment(t)

	changed, err := apt.Transition(AppointmentStatusBooked)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, AppointmentStatusBooked, apt.Status)
}

func TestTransitionUnknownStatus(t *testing.T) {
	apt := newTestAppointment(t)

	_, err := apt.Transition(AppointmentStatus("archived"))
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestTerminalStatusesRejectMutations(t *testing.T) {
	for _, status := range []AppointmentStatus{AppointmentStatusCompleted, AppointmentStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			apt := newTestAppointment(t)
			apt.Status = status

			assert.False(t, apt.CanModify())

			err := apt.Reschedule(apt.StartTime.Add(time.Hour), apt.EndTime.Add(time.Hour))
			assert.True(t, errors.IsCode(err, errors.ErrImmutable))

			err = apt.AssignStaff(uuid.New())
			assert.True(t, errors.IsCode(err, errors.ErrImmutable))

			err = apt.UnassignStaff()
			assert.True(t, errors.IsCode(err, errors.ErrImmutable))

			err = apt.UpdateNotes("late arrival")
			assert.True(t, errors.IsCode(err, errors.ErrImmutable))

			err = apt.LinkRecurrence(uuid.New())
			assert.True(t, errors.IsCode(err, errors.ErrImmutable))
		})
	}
}

func TestReschedule(t *testing.T) {
	apt := newTestAppointment(t)
	newStart := apt.StartTime.Add(24 * time.Hour)
	newEnd := newStart.Add(30 * time.Minute)

	require.NoError(t, apt.Reschedule(newStart, newEnd))
	assert.Equal(t, newStart, apt.StartTime)
	assert.Equal(t, newEnd, apt.EndTime)

	err := apt.Reschedule(newEnd, newStart)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestStaffAssignment(t *testing.T) {
	apt := newTestAppointment(t)
	staffID := uuid.New()

	require.NoError(t, apt.AssignStaff(staffID))
	require.NotNil(t, apt.StaffID)
	assert.Equal(t, staffID, *apt.StaffID)

	err := apt.AssignStaff(uuid.Nil)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	require.NoError(t, apt.UnassignStaff())
	assert.Nil(t, apt.StaffID)
}

func TestNewServiceLine(t *testing.T) {
	serviceID := uuid.New()

	line, err := NewServiceLine(serviceID, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Nil(t, line.PriceOverride)

	override := 12.50
	line, err = NewServiceLine(serviceID, 1, &override)
	require.NoError(t, err)
	assert.Equal(t, 12.50, *line.PriceOverride)

	_, err = NewServiceLine(uuid.Nil, 1, nil)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	_, err = NewServiceLine(serviceID, 0, nil)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	_, err = NewServiceLine(serviceID, -1, nil)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	negative := -0.01
	_, err = NewServiceLine(serviceID, 1, &negative)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}
