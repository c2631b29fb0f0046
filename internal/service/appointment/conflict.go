package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/petcare-api/internal/model"
)

// ResourceKey identifies the contended resource of a booking: either the
// store itself, or one staff member at that store. Modeling the optional
// staff as a variant keeps the matching rule total instead of a chain of
// nil checks at every call site.
type ResourceKey struct {
	StoreID uuid.UUID
	StaffID *uuid.UUID
}

func NewResourceKey(storeID uuid.UUID, staffID *uuid.UUID) ResourceKey {
	return ResourceKey{StoreID: storeID, StaffID: staffID}
}

// ContendsWith reports whether two bookings compete for the same resource.
// With both staff pinned the keys contend only when they match; as soon as
// one side has no staff, the store itself is the contended resource.
func (k ResourceKey) ContendsWith(other ResourceKey) bool {
	if k.StoreID != other.StoreID {
		return false
	}
	if k.StaffID == nil || other.StaffID == nil {
		return true
	}
	return *k.StaffID == *other.StaffID
}

// overlaps is the half-open interval test: touching endpoints (back-to-back
// bookings) do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// filterConflicts applies the full matching rule to candidate appointments
// fetched for the store. Cancelled appointments never conflict; completed
// ones still do. Every match is returned so callers can report all
// conflicts, not just the first.
func filterConflicts(key ResourceKey, start, end time.Time, excludeID *uuid.UUID, candidates []*model.Appointment) []*model.Appointment {
	var conflicts []*model.Appointment
	for _, apt := range candidates {
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		if apt.Status == model.AppointmentStatusCancelled {
			continue
		}
		if !key.ContendsWith(NewResourceKey(apt.StoreID, apt.StaffID)) {
			continue
		}
		if !overlaps(start, end, apt.StartTime, apt.EndTime) {
			continue
		}
		conflicts = append(conflicts, apt)
	}
	return conflicts
}

func conflictIDs(conflicts []*model.Appointment) []uuid.UUID {
	ids := make([]uuid.UUID, len(conflicts))
	for i, apt := range conflicts {
		ids[i] = apt.ID
	}
	return ids
}
