package income

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shwepos/internal/database/models"
)

// DayFormat is the calendar-day key for income rows.
const DayFormat = "2006-01-02"

func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// Delta is one owner's contribution to a day's income row. Negative deltas
// reverse a previously applied contribution.
type Delta struct {
	Sales  decimal.Decimal
	Profit decimal.Decimal
	Items  int32
}

func (d Delta) Add(o Delta) Delta {
	return Delta{
		Sales:  d.Sales.Add(o.Sales),
		Profit: d.Profit.Add(o.Profit),
		Items:  d.Items + o.Items,
	}
}

func (d Delta) Negate() Delta {
	return Delta{
		Sales:  d.Sales.Neg(),
		Profit: d.Profit.Neg(),
		Items:  -d.Items,
	}
}

func (d Delta) IsZero() bool {
	return d.Sales.IsZero() && d.Profit.IsZero() && d.Items == 0
}

// Aggregator owns the income_summaries rows. ApplyDelta is the only write
// path; rows are never deleted, so a fully reversed day is distinguishable
// from a day with no activity.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// ApplyDelta inserts the (owner, date) row with the delta as initial values,
// or increments the existing row's three fields, in one statement. The
// ON CONFLICT arithmetic runs in the database, so concurrent commits for the
// same owner and day cannot lose updates.
func (a *Aggregator) ApplyDelta(tx *gorm.DB, ownerID int64, date string, d Delta) error {
	row := models.IncomeSummary{
		OwnerID:        ownerID,
		Date:           date,
		TotalSales:     d.Sales.StringFixed(2),
		TotalProfit:    d.Profit.StringFixed(2),
		TotalItemsSold: d.Items,
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_sales":      gorm.Expr("income_summaries.total_sales + ?", d.Sales.StringFixed(2)),
			"total_profit":     gorm.Expr("income_summaries.total_profit + ?", d.Profit.StringFixed(2)),
			"total_items_sold": gorm.Expr("income_summaries.total_items_sold + ?", d.Items),
			"updated_at":       time.Now(),
		}),
	}).Create(&row).Error
}
