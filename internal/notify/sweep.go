package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shwepos/internal/database/models"
)

// Sweeper pushes a daily low-stock digest to each device at its preferred
// alert time, minute granularity. It complements the per-sale crossing
// alerts: the digest covers items that were already low before any sale.
type Sweeper struct {
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
}

func NewSweeper(db *gorm.DB, notifier Notifier, log *zap.Logger) *Sweeper {
	return &Sweeper{db: db, notifier: notifier, log: log}
}

// Run ticks once a minute until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweep(ctx, now)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context, now time.Time) {
	minute := now.Format("15:04")

	var tokens []string
	err := s.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("is_active = ? AND low_stock_alerts = ? AND low_stock_alert_time = ?", true, true, minute).
		Pluck("push_token", &tokens).Error
	if err != nil {
		s.log.Warn("low-stock sweep device query failed", zap.Error(err))
		return
	}
	if len(tokens) == 0 {
		return
	}

	var items []models.InventoryItem
	err = s.db.WithContext(ctx).
		Where("is_active = ? AND quantity <= minimum_stock", true).
		Order("quantity ASC").
		Find(&items).Error
	if err != nil {
		s.log.Warn("low-stock sweep item query failed", zap.Error(err))
		return
	}

	for _, item := range items {
		ev := LowStockEvent{
			ItemID:          item.ID,
			ItemName:        item.Name,
			CurrentQuantity: item.Quantity,
			MinimumStock:    item.MinimumStock,
		}
		if _, err := s.notifier.NotifyLowStock(ctx, tokens, ev); err != nil {
			s.log.Warn("low-stock sweep push failed", zap.Int64("item_id", item.ID), zap.Error(err))
		}
	}

	s.log.Info("low-stock sweep completed",
		zap.String("minute", minute),
		zap.Int("devices", len(tokens)),
		zap.Int("items", len(items)))
}
