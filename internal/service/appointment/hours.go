package appointment

import (
	"fmt"
	"time"

	"github.com/jwalitptl/petcare-api/internal/model"
	"github.com/jwalitptl/petcare-api/pkg/errors"
)

// checkOpeningHours verifies that [start, end) sits entirely inside the
// store's opening window for the weekday of start, resolved in the store's
// timezone. Windows that cross local midnight are rejected outright: the
// calendar is per single weekday.
func checkOpeningHours(store *model.Store, start, end time.Time) error {
	loc, err := store.Location()
	if err != nil {
		return errors.NewInternal(err)
	}

	localStart := start.In(loc)
	localEnd := end.In(loc)

	day := localStart.Weekday()
	hours := store.WeeklyHours.HoursFor(day)

	sy, sm, sd := localStart.Date()
	ey, em, ed := localEnd.Date()
	if sy != ey || sm != em || sd != ed {
		return errors.NewOutsideOpeningHours(day.String(), hours.String())
	}

	if !hours.IsOpen {
		return errors.NewOutsideOpeningHours(day.String(), hours.String())
	}

	openAt, err := clockOn(localStart, hours.Open, loc)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("store %s has malformed open time: %w", store.ID, err))
	}
	closeAt, err := clockOn(localStart, hours.Close, loc)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("store %s has malformed close time: %w", store.ID, err))
	}

	if localStart.Before(openAt) || localEnd.After(closeAt) {
		return errors.NewOutsideOpeningHours(day.String(), hours.String())
	}
	return nil
}

// clockOn places an "HH:mm" wall-clock value on the calendar day of ref.
func clockOn(ref time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := ref.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}
