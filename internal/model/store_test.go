package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayHoursString(t *testing.T) {
	open := DayHours{IsOpen: true, Open: "09:00", Close: "17:00"}
	assert.Equal(t, "09:00-17:00", open.String())

	assert.Equal(t, "closed", DayHours{}.String())
}

func TestWeeklyHoursHoursFor(t *testing.T) {
	w := WeeklyHours{
		time.Monday: {IsOpen: true, Open: "08:00", Close: "18:00"},
	}

	assert.True(t, w.HoursFor(time.Monday).IsOpen)
	// Missing weekday means closed.
	assert.False(t, w.HoursFor(time.Sunday).IsOpen)
}

func TestWeeklyHoursScanRoundTrip(t *testing.T) {
	w := WeeklyHours{
		time.Monday:  {IsOpen: true, Open: "09:00", Close: "17:00"},
		time.Tuesday: {IsOpen: false},
	}

	val, err := w.Value()
	require.NoError(t, err)

	var scanned WeeklyHours
	require.NoError(t, scanned.Scan(val))
	assert.Equal(t, w, scanned)

	var nilScanned WeeklyHours
	require.NoError(t, nilScanned.Scan(nil))
	assert.Nil(t, nilScanned)
}

func TestStoreLocation(t *testing.T) {
	store := &Store{Timezone: "America/New_York"}
	loc, err := store.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	store.Timezone = "Not/AZone"
	_, err = store.Location()
	assert.Error(t, err)
}
