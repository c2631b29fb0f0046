package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Service is a bookable offering (groom, wash, nail trim). The scheduling
// engine reads it for pricing and duration; it never mutates services.
type Service struct {
	ID          uuid.UUID `db:"id" json:"id"`
	StoreID     uuid.UUID `db:"store_id" json:"store_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	// Duration in minutes. Informational for scheduling: the caller-supplied
	// window stays authoritative.
	DurationMinutes int     `db:"duration_minutes" json:"duration_minutes"`
	Price           float64 `db:"price" json:"price"`
	// Tags describing what staff or equipment the service needs. Carried
	// through to callers, not validated against staff capability here.
	RequiredResources pq.StringArray `db:"required_resources" json:"required_resources"`
	ConsumesInventory bool           `db:"consumes_inventory" json:"consumes_inventory"`
	ConsumedItems     pq.StringArray `db:"consumed_items" json:"consumed_items,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}
