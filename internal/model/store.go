package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DayHours holds a single weekday's opening window in 24-hour HH:mm local
// time. When IsOpen is false the times are empty.
type DayHours struct {
	IsOpen bool   `json:"is_open"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
}

// String renders the window for error messages, e.g. "09:00-17:00".
func (h DayHours) String() string {
	if !h.IsOpen {
		return "closed"
	}
	return h.Open + "-" + h.Close
}

// WeeklyHours maps weekday to opening hours. Stored as a JSONB column.
type WeeklyHours map[time.Weekday]DayHours

func (w WeeklyHours) Value() (driver.Value, error) {
	return json.Marshal(w)
}

func (w *WeeklyHours) Scan(src interface{}) error {
	if src == nil {
		*w = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for weekly hours: %T", src)
	}
	return json.Unmarshal(b, w)
}

// Store is the scheduling view of a store: its weekly calendar and timezone.
// Customer-facing store attributes live with the store management system.
type Store struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Timezone    string      `db:"timezone" json:"timezone"`
	WeeklyHours WeeklyHours `db:"weekly_hours" json:"weekly_hours"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// Location resolves the store's IANA timezone.
func (s *Store) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid store timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// HoursFor returns the opening hours for a weekday; a missing entry means
// closed.
func (w WeeklyHours) HoursFor(day time.Weekday) DayHours {
	return w[day]
}
