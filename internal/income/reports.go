package income

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shwepos/internal/database/models"
)

const (
	reportCacheKeyPrefix = "income:report:"
	reportCacheTTL       = 5 * time.Minute
)

// DailyReport is one owner's income row for one calendar day.
type DailyReport struct {
	Date           string `json:"date"`
	TotalSales     string `json:"total_sales"`
	TotalProfit    string `json:"total_profit"`
	TotalItemsSold int32  `json:"total_items_sold"`
}

// RangeReport aggregates an owner's rows across a date range, with the
// per-day breakdown attached.
type RangeReport struct {
	OwnerID        int64         `json:"owner_id"`
	StartDate      string        `json:"start_date"`
	EndDate        string        `json:"end_date"`
	TotalSales     string        `json:"total_sales"`
	TotalProfit    string        `json:"total_profit"`
	TotalItemsSold int32         `json:"total_items_sold"`
	Days           []DailyReport `json:"days"`
}

// Reports serves income reads. Range reports that end before today are
// cached in Redis; anything touching the current day is always read from the
// database because sales are still landing on it.
type Reports struct {
	db  *gorm.DB
	rdb *redis.Client
	log *zap.Logger
}

func NewReports(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *Reports {
	return &Reports{db: db, rdb: rdb, log: log}
}

// GetDaily returns the owner's row for one day. A day with no row reports
// zeros rather than an error.
func (r *Reports) GetDaily(ctx context.Context, ownerID int64, date string) (*DailyReport, error) {
	var row models.IncomeSummary
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND date = ?", ownerID, date).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return &DailyReport{
			Date:        date,
			TotalSales:  "0.00",
			TotalProfit: "0.00",
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &DailyReport{
		Date:           row.Date,
		TotalSales:     row.TotalSales,
		TotalProfit:    row.TotalProfit,
		TotalItemsSold: row.TotalItemsSold,
	}, nil
}

// GetMonthly rolls a calendar month ("2006-01") up into a range report.
func (r *Reports) GetMonthly(ctx context.Context, ownerID int64, month string) (*RangeReport, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", month, err)
	}
	end := start.AddDate(0, 1, -1)
	return r.GetRange(ctx, ownerID, Day(start), Day(end))
}

// GetRange returns the owner's rows between startDate and endDate inclusive,
// summed and broken down by day.
func (r *Reports) GetRange(ctx context.Context, ownerID int64, startDate, endDate string) (*RangeReport, error) {
	cacheable := endDate < Day(time.Now())
	cacheKey := fmt.Sprintf("%s%d:%s:%s", reportCacheKeyPrefix, ownerID, startDate, endDate)

	if cacheable && r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var report RangeReport
			if err := json.Unmarshal([]byte(cached), &report); err == nil {
				return &report, nil
			}
		}
	}

	var rows []models.IncomeSummary
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND date >= ? AND date <= ?", ownerID, startDate, endDate).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	report := &RangeReport{
		OwnerID:   ownerID,
		StartDate: startDate,
		EndDate:   endDate,
		Days:      make([]DailyReport, 0, len(rows)),
	}

	totalSales := decimal.Zero
	totalProfit := decimal.Zero
	var totalItems int32
	for _, row := range rows {
		sales, err := decimal.NewFromString(row.TotalSales)
		if err != nil {
			return nil, fmt.Errorf("invalid total_sales on income row %d: %w", row.ID, err)
		}
		profit, err := decimal.NewFromString(row.TotalProfit)
		if err != nil {
			return nil, fmt.Errorf("invalid total_profit on income row %d: %w", row.ID, err)
		}
		totalSales = totalSales.Add(sales)
		totalProfit = totalProfit.Add(profit)
		totalItems += row.TotalItemsSold
		report.Days = append(report.Days, DailyReport{
			Date:           row.Date,
			TotalSales:     row.TotalSales,
			TotalProfit:    row.TotalProfit,
			TotalItemsSold: row.TotalItemsSold,
		})
	}
	report.TotalSales = totalSales.StringFixed(2)
	report.TotalProfit = totalProfit.StringFixed(2)
	report.TotalItemsSold = totalItems

	if cacheable && r.rdb != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := r.rdb.Set(ctx, cacheKey, data, reportCacheTTL).Err(); err != nil {
				r.log.Warn("failed to cache income report", zap.Error(err))
			}
		}
	}

	return report, nil
}

// InvalidateOwner drops every cached report for the owner. Called after any
// income mutation that can touch a past day (mark-paid, delete) so cached
// completed ranges never go stale.
func (r *Reports) InvalidateOwner(ctx context.Context, ownerID int64) {
	if r.rdb == nil {
		return
	}
	pattern := fmt.Sprintf("%s%d:*", reportCacheKeyPrefix, ownerID)
	keys, err := r.rdb.Keys(ctx, pattern).Result()
	if err != nil {
		r.log.Warn("report cache scan failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("report cache invalidation failed", zap.Int64("owner_id", ownerID), zap.Error(err))
	}
}

// TopItem is one row of a best-sellers report.
type TopItem struct {
	InventoryItemID int64   `json:"inventory_item_id"`
	Name            string  `json:"name"`
	Category        *string `json:"category"`
	QuantitySold    int32   `json:"quantity_sold"`
	Revenue         string  `json:"revenue"`
}

// TopItems ranks items by units sold across paid sales in the date range.
func (r *Reports) TopItems(ctx context.Context, ownerID int64, startDate, endDate string, limit int) ([]TopItem, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var rows []TopItem
	err := r.db.WithContext(ctx).
		Table("sale_items").
		Select(`sale_items.inventory_item_id,
			inventory_items.name,
			inventory_items.category,
			SUM(sale_items.quantity) AS quantity_sold,
			SUM(sale_items.total_price) AS revenue`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN inventory_items ON inventory_items.id = sale_items.inventory_item_id").
		Where("sale_items.owner_id = ? AND sales.is_paid = ?", ownerID, true).
		Where("sales.sale_date >= ? AND sales.sale_date < ?::date + interval '1 day'", startDate, endDate).
		Group("sale_items.inventory_item_id, inventory_items.name, inventory_items.category").
		Order("quantity_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CategorySales is one category's share of paid revenue.
type CategorySales struct {
	Category     string `json:"category"`
	QuantitySold int32  `json:"quantity_sold"`
	Revenue      string `json:"revenue"`
}

// CategoryBreakdown groups paid sale revenue by item category; uncategorized
// items land under "uncategorized".
func (r *Reports) CategoryBreakdown(ctx context.Context, ownerID int64, startDate, endDate string) ([]CategorySales, error) {
	var rows []CategorySales
	err := r.db.WithContext(ctx).
		Table("sale_items").
		Select(`COALESCE(inventory_items.category, 'uncategorized') AS category,
			SUM(sale_items.quantity) AS quantity_sold,
			SUM(sale_items.total_price) AS revenue`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN inventory_items ON inventory_items.id = sale_items.inventory_item_id").
		Where("sale_items.owner_id = ? AND sales.is_paid = ?", ownerID, true).
		Where("sales.sale_date >= ? AND sales.sale_date < ?::date + interval '1 day'", startDate, endDate).
		Group("COALESCE(inventory_items.category, 'uncategorized')").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OverallStats is the owner's lifetime aggregate.
type OverallStats struct {
	OwnerID        int64  `json:"owner_id"`
	TotalSales     string `json:"total_sales"`
	TotalProfit    string `json:"total_profit"`
	TotalItemsSold int64  `json:"total_items_sold"`
	ActiveDays     int64  `json:"active_days"`
}

func (r *Reports) GetOverallStats(ctx context.Context, ownerID int64) (*OverallStats, error) {
	var row struct {
		TotalSales     *string
		TotalProfit    *string
		TotalItemsSold *int64
		ActiveDays     int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.IncomeSummary{}).
		Select(`SUM(total_sales) AS total_sales,
			SUM(total_profit) AS total_profit,
			SUM(total_items_sold) AS total_items_sold,
			COUNT(*) AS active_days`).
		Where("owner_id = ?", ownerID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &OverallStats{OwnerID: ownerID, TotalSales: "0.00", TotalProfit: "0.00"}
	if row.TotalSales != nil {
		stats.TotalSales = *row.TotalSales
	}
	if row.TotalProfit != nil {
		stats.TotalProfit = *row.TotalProfit
	}
	if row.TotalItemsSold != nil {
		stats.TotalItemsSold = *row.TotalItemsSold
	}
	stats.ActiveDays = row.ActiveDays
	return stats, nil
}
