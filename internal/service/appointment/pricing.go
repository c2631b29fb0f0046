package appointment

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/petcare-api/internal/model"
)

// LinePrice is the derived pricing of one service line. Derived values are
// computed on demand, never stored.
type LinePrice struct {
	ServiceID      uuid.UUID `json:"service_id"`
	Quantity       int       `json:"quantity"`
	EffectivePrice float64   `json:"effective_price"`
	LineTotal      float64   `json:"line_total"`
}

// Quote is the priced view of an appointment's full line set.
type Quote struct {
	AppointmentID uuid.UUID   `json:"appointment_id"`
	Lines         []LinePrice `json:"lines"`
	Total         float64     `json:"total"`
}

// priceLine computes effective price and line total for a validated line.
// A negative base price is a broken contract with the service catalog, not
// user input, so it panics rather than returning an error.
func priceLine(line *model.ServiceLine, servicePrice float64) LinePrice {
	if servicePrice < 0 {
		panic(fmt.Sprintf("negative base price %f for service %s", servicePrice, line.ServiceID))
	}
	effective := servicePrice
	if line.PriceOverride != nil {
		effective = *line.PriceOverride
	}
	return LinePrice{
		ServiceID:      line.ServiceID,
		Quantity:       line.Quantity,
		EffectivePrice: effective,
		LineTotal:      float64(line.Quantity) * effective,
	}
}
