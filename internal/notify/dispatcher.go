package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shwepos/internal/database/models"
)

const dispatchTimeout = 15 * time.Second

// Dispatcher fans committed sale facts out to registered devices and the
// event bus. Every call is asynchronous and failure-isolated: nothing here
// can affect the transaction that produced the event.
type Dispatcher struct {
	db        *gorm.DB
	notifier  Notifier
	publisher *Publisher
	log       *zap.Logger
}

func NewDispatcher(db *gorm.DB, notifier Notifier, publisher *Publisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		db:        db,
		notifier:  notifier,
		publisher: publisher,
		log:       log,
	}
}

func (d *Dispatcher) SaleCompleted(ctx context.Context, ev SaleCompletedEvent) {
	go func() {
		// Detached from the request context: the caller's response must not
		// wait on delivery, and a cancelled request must not cancel it.
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if d.publisher != nil {
			if err := d.publisher.Publish(ctx, EventSaleCompleted, ev); err != nil {
				d.log.Warn("failed to publish sale event", zap.Int64("sale_id", ev.SaleID), zap.Error(err))
			}
		}

		tokens, err := d.deviceTokens(ctx, "sales_notifications")
		if err != nil {
			d.log.Warn("failed to load devices for sale notification", zap.Error(err))
			return
		}
		if len(tokens) == 0 {
			return
		}

		receipts, err := d.notifier.NotifySaleCompleted(ctx, tokens, ev)
		if err != nil {
			d.log.Warn("sale notification failed", zap.Int64("sale_id", ev.SaleID), zap.Error(err))
			return
		}
		d.log.Info("sale notification sent",
			zap.Int64("sale_id", ev.SaleID),
			zap.Int("devices", len(tokens)),
			zap.Int("receipts", len(receipts)))
	}()
}

func (d *Dispatcher) LowStock(ctx context.Context, ev LowStockEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if d.publisher != nil {
			if err := d.publisher.Publish(ctx, EventStockLow, ev); err != nil {
				d.log.Warn("failed to publish low-stock event", zap.Int64("item_id", ev.ItemID), zap.Error(err))
			}
		}

		tokens, err := d.deviceTokens(ctx, "low_stock_alerts")
		if err != nil {
			d.log.Warn("failed to load devices for low-stock alert", zap.Error(err))
			return
		}
		if len(tokens) == 0 {
			return
		}

		receipts, err := d.notifier.NotifyLowStock(ctx, tokens, ev)
		if err != nil {
			d.log.Warn("low-stock alert failed", zap.Int64("item_id", ev.ItemID), zap.Error(err))
			return
		}
		d.log.Info("low-stock alert sent",
			zap.Int64("item_id", ev.ItemID),
			zap.Int("devices", len(tokens)),
			zap.Int("receipts", len(receipts)))
	}()
}

func (d *Dispatcher) deviceTokens(ctx context.Context, preference string) ([]string, error) {
	var tokens []string
	err := d.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("is_active = ? AND "+preference+" = ?", true, true).
		Pluck("push_token", &tokens).Error
	return tokens, err
}
