package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shwepos/internal/income"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestOwnerDeltasSingleOwner(t *testing.T) {
	lines := []LineFact{
		{OwnerID: 1, Total: d("1500.00"), Profit: d("500.00"), Quantity: 3},
		{OwnerID: 1, Total: d("2000.00"), Profit: d("400.00"), Quantity: 2},
	}

	deltas := OwnerDeltas(lines)
	require.Len(t, deltas, 1)

	delta := deltas[1]
	assert.True(t, delta.Sales.Equal(d("3500.00")), "sales = %s", delta.Sales)
	assert.True(t, delta.Profit.Equal(d("900.00")), "profit = %s", delta.Profit)
	assert.Equal(t, int32(5), delta.Items)
}

func TestOwnerDeltasSplitsByOwner(t *testing.T) {
	lines := []LineFact{
		{OwnerID: 1, Total: d("100.00"), Profit: d("20.00"), Quantity: 1},
		{OwnerID: 2, Total: d("300.00"), Profit: d("75.00"), Quantity: 3},
		{OwnerID: 1, Total: d("50.00"), Profit: d("10.00"), Quantity: 1},
	}

	deltas := OwnerDeltas(lines)
	require.Len(t, deltas, 2)

	assert.True(t, deltas[1].Sales.Equal(d("150.00")))
	assert.True(t, deltas[1].Profit.Equal(d("30.00")))
	assert.Equal(t, int32(2), deltas[1].Items)

	assert.True(t, deltas[2].Sales.Equal(d("300.00")))
	assert.True(t, deltas[2].Profit.Equal(d("75.00")))
	assert.Equal(t, int32(3), deltas[2].Items)
}

func TestOwnerDeltasEmpty(t *testing.T) {
	assert.Empty(t, OwnerDeltas(nil))
}

func TestOwnerDeltasNegativeProfit(t *testing.T) {
	// Selling below cost is legal; the delta carries the loss through.
	lines := []LineFact{
		{OwnerID: 1, Total: d("80.00"), Profit: d("-20.00"), Quantity: 2},
	}
	delta := OwnerDeltas(lines)[1]
	assert.True(t, delta.Profit.IsNegative())
}

func TestDeltaNegateRoundTrip(t *testing.T) {
	delta := income.Delta{Sales: d("3500.00"), Profit: d("900.00"), Items: 5}
	back := delta.Add(delta.Negate())
	assert.True(t, back.IsZero(), "sales=%s profit=%s items=%d", back.Sales, back.Profit, back.Items)
}
