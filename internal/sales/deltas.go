package sales

import (
	"github.com/shopspring/decimal"

	"shwepos/internal/income"
)

// LineFact is the income-relevant view of one sale line: whose income it is,
// what it sold for, and what it earned net of cost.
type LineFact struct {
	OwnerID  int64
	Total    decimal.Decimal
	Profit   decimal.Decimal
	Quantity int32
}

// OwnerDeltas groups line facts into one income delta per owner. Profit is
// summed per line, never derived from totals after the fact.
func OwnerDeltas(lines []LineFact) map[int64]income.Delta {
	deltas := make(map[int64]income.Delta, len(lines))
	for _, line := range lines {
		deltas[line.OwnerID] = deltas[line.OwnerID].Add(income.Delta{
			Sales:  line.Total,
			Profit: line.Profit,
			Items:  line.Quantity,
		})
	}
	return deltas
}
