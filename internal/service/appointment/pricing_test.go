package appointment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/petcare-api/internal/model"
)

func TestPriceLine(t *testing.T) {
	serviceID := uuid.New()

	t.Run("base price times quantity", func(t *testing.T) {
		lp := priceLine(&model.ServiceLine{ServiceID: serviceID, Quantity: 3}, 10.00)
		assert.Equal(t, 10.00, lp.EffectivePrice)
		assert.Equal(t, 30.00, lp.LineTotal)
	})

	t.Run("override replaces base price", func(t *testing.T) {
		override := 5.00
		lp := priceLine(&model.ServiceLine{ServiceID: serviceID, Quantity: 3, PriceOverride: &override}, 10.00)
		assert.Equal(t, 5.00, lp.EffectivePrice)
		assert.Equal(t, 15.00, lp.LineTotal)
	})

	t.Run("zero override is a valid free line", func(t *testing.T) {
		override := 0.0
		lp := priceLine(&model.ServiceLine{ServiceID: serviceID, Quantity: 2, PriceOverride: &override}, 10.00)
		assert.Equal(t, 0.0, lp.LineTotal)
	})

	t.Run("negative base price panics", func(t *testing.T) {
		assert.Panics(t, func() {
			priceLine(&model.ServiceLine{ServiceID: serviceID, Quantity: 1}, -1.00)
		})
	})
}
