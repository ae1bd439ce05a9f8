package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowStockCrossing(t *testing.T) {
	tests := []struct {
		name     string
		before   int32
		after    int32
		min      int32
		crossing bool
	}{
		{"drops below minimum", 5, 2, 3, true},
		{"lands exactly on minimum", 5, 3, 3, true},
		{"stays above minimum", 10, 8, 3, false},
		{"already at minimum before sale", 3, 1, 3, false},
		{"already below minimum before sale", 2, 1, 3, false},
		{"drains to zero with zero minimum", 5, 0, 0, true},
		{"drains to zero across minimum", 4, 0, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Snapshot{
				QuantityBefore: tt.before,
				QuantityAfter:  tt.after,
				MinimumStock:   tt.min,
			}
			assert.Equal(t, tt.crossing, s.LowStockCrossing())
		})
	}
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{ItemID: 7, ItemName: "Rice 5kg", Available: 2, Requested: 5}
	assert.Contains(t, err.Error(), "Rice 5kg")
	assert.Contains(t, err.Error(), "available 2")
	assert.Contains(t, err.Error(), "requested 5")
}

func TestValidMoney(t *testing.T) {
	assert.NoError(t, validMoney("unit_cost", "100.50"))
	assert.NoError(t, validMoney("unit_cost", "0"))
	assert.Error(t, validMoney("unit_cost", "-1.00"))
	assert.Error(t, validMoney("unit_cost", "abc"))
	assert.Error(t, validMoney("unit_cost", ""))
}
