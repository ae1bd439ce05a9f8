package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shwepos/internal/database/models"
	"shwepos/internal/income"
	"shwepos/internal/notify"
	"shwepos/internal/stock"
)

// EventDispatcher receives computed facts strictly after commit. A failing
// dispatcher must never affect the outcome of the transaction that produced
// the events.
type EventDispatcher interface {
	SaleCompleted(ctx context.Context, ev notify.SaleCompletedEvent)
	LowStock(ctx context.Context, ev notify.LowStockEvent)
}

// ReportCache drops cached income reads for an owner after a committed
// income mutation. May be nil.
type ReportCache interface {
	InvalidateOwner(ctx context.Context, ownerID int64)
}

type LineItemRequest struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	Quantity        int32 `json:"quantity"`
}

type CreateSaleRequest struct {
	Items         []LineItemRequest    `json:"items"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	CustomerName  *string              `json:"customer_name"`
	CustomerPhone *string              `json:"customer_phone"`
	Notes         *string              `json:"notes"`
}

type UpdateSaleRequest struct {
	Items         []LineItemRequest `json:"items"`
	CustomerName  *string           `json:"customer_name"`
	CustomerPhone *string           `json:"customer_phone"`
	Notes         *string           `json:"notes"`
}

// Service drives a sale through its lifecycle: created (paid or credit),
// edited while unpaid, marked paid, deleted with full reversal. Every
// transition is one database transaction spanning the stock ledger, the sale
// rows, and the income aggregate.
type Service struct {
	db         *gorm.DB
	ledger     *stock.Ledger
	aggregator *income.Aggregator
	events     EventDispatcher
	reports    ReportCache
	log        *zap.Logger
}

func NewService(db *gorm.DB, ledger *stock.Ledger, aggregator *income.Aggregator, events EventDispatcher, reports ReportCache, log *zap.Logger) *Service {
	return &Service{
		db:         db,
		ledger:     ledger,
		aggregator: aggregator,
		events:     events,
		reports:    reports,
		log:        log,
	}
}

func (s *Service) invalidateReports(ctx context.Context, deltas map[int64]income.Delta) {
	if s.reports == nil {
		return
	}
	for ownerID := range deltas {
		s.reports.InvalidateOwner(ctx, ownerID)
	}
}

// reservedLines is what one pass over a request's line items produces inside
// the transaction: rows to insert, income facts, and stock snapshots for
// post-commit low-stock detection.
type reservedLines struct {
	saleItems []models.SaleItem
	facts     []LineFact
	snapshots []*stock.Snapshot
	total     decimal.Decimal
}

func (s *Service) reserveLines(tx *gorm.DB, items []LineItemRequest, now time.Time) (*reservedLines, error) {
	res := &reservedLines{
		saleItems: make([]models.SaleItem, 0, len(items)),
		facts:     make([]LineFact, 0, len(items)),
		snapshots: make([]*stock.Snapshot, 0, len(items)),
		total:     decimal.Zero,
	}

	for _, line := range items {
		snap, err := s.ledger.CheckAndReserve(tx, line.InventoryItemID, line.Quantity)
		if err != nil {
			return nil, err
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		lineTotal := snap.SellingPrice.Mul(qty)
		lineProfit := snap.SellingPrice.Sub(snap.UnitCost).Mul(qty)

		res.total = res.total.Add(lineTotal)
		res.snapshots = append(res.snapshots, snap)
		res.facts = append(res.facts, LineFact{
			OwnerID:  snap.OwnerID,
			Total:    lineTotal,
			Profit:   lineProfit,
			Quantity: line.Quantity,
		})
		res.saleItems = append(res.saleItems, models.SaleItem{
			InventoryItemID: snap.ItemID,
			OwnerID:         snap.OwnerID,
			Quantity:        line.Quantity,
			UnitPrice:       snap.SellingPrice.StringFixed(2),
			TotalPrice:      lineTotal.StringFixed(2),
			CreatedAt:       now,
		})
	}

	return res, nil
}

func validateItems(items []LineItemRequest) error {
	if len(items) == 0 {
		return &ValidationError{Reason: "no items provided"}
	}
	for _, line := range items {
		if line.InventoryItemID <= 0 {
			return &ValidationError{Reason: "inventory_item_id is required on every line"}
		}
		if line.Quantity <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("quantity must be positive for item %d", line.InventoryItemID)}
		}
	}
	return nil
}

// CreateSale validates and reserves every line, records the sale with frozen
// price snapshots, and, for cash/mobile sales, applies per-owner income
// deltas for today. All of it commits or none of it does.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*models.Sale, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}
	if !method.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown payment method %q", method)}
	}

	now := time.Now()
	var sale models.Sale
	var reserved *reservedLines

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reserved, err = s.reserveLines(tx, req.Items, now)
		if err != nil {
			return err
		}

		sale = models.Sale{
			SaleDate:      now,
			TotalAmount:   reserved.total.StringFixed(2),
			PaymentMethod: method,
			IsPaid:        method.Settled(),
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			Notes:         req.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if sale.IsPaid {
			paidAt := now
			sale.PaidAt = &paidAt
		}

		if err := tx.Create(&sale).Error; err != nil {
			return wrapConstraint(err)
		}
		for i := range reserved.saleItems {
			reserved.saleItems[i].SaleID = sale.ID
		}
		if err := tx.Create(&reserved.saleItems).Error; err != nil {
			return wrapConstraint(err)
		}

		if sale.IsPaid {
			day := income.Day(now)
			for ownerID, delta := range OwnerDeltas(reserved.facts) {
				if err := s.aggregator.ApplyDelta(tx, ownerID, day, delta); err != nil {
					return err
				}
			}
		}

		sale.Items = reserved.saleItems
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale created",
		zap.Int64("sale_id", sale.ID),
		zap.String("payment_method", string(method)),
		zap.String("total", sale.TotalAmount),
		zap.Bool("paid", sale.IsPaid))

	if sale.IsPaid {
		s.invalidateReports(ctx, OwnerDeltas(reserved.facts))
	}
	s.emitLowStock(ctx, reserved.snapshots)
	s.events.SaleCompleted(ctx, notify.SaleCompletedEvent{
		SaleID:        sale.ID,
		TotalAmount:   sale.TotalAmount,
		ItemsCount:    len(sale.Items),
		PaymentMethod: string(method),
		IsPaid:        sale.IsPaid,
	})

	return &sale, nil
}

// MarkAsPaid settles a credit sale. Deltas are recomputed from the stored
// lines (frozen unit price, current item cost) and applied to the day the
// sale happened, not the day it was settled.
func (s *Service) MarkAsPaid(ctx context.Context, saleID int64) (*models.Sale, error) {
	var sale models.Sale
	var facts []LineFact

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sale, saleID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSaleNotFound
			}
			return err
		}
		if sale.IsPaid {
			return ErrAlreadyPaid
		}

		var items []models.SaleItem
		if err := tx.Where("sale_id = ?", saleID).Find(&items).Error; err != nil {
			return err
		}

		var err error
		facts, err = s.lineFacts(tx, items)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Sale{}).Where("id = ?", saleID).
			Updates(map[string]interface{}{
				"is_paid":    true,
				"paid_at":    now,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		day := income.Day(sale.SaleDate)
		for ownerID, delta := range OwnerDeltas(facts) {
			if err := s.aggregator.ApplyDelta(tx, ownerID, day, delta); err != nil {
				return err
			}
		}

		sale.IsPaid = true
		sale.PaidAt = &now
		sale.UpdatedAt = now
		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx, OwnerDeltas(facts))

	s.log.Info("sale marked paid",
		zap.Int64("sale_id", sale.ID),
		zap.String("sale_date", income.Day(sale.SaleDate)))

	return &sale, nil
}

// UpdateSale replaces an unpaid sale's line items: old quantities go back to
// the ledger, the new set runs through the same reservation path as create.
// A rejected new set rolls the whole thing back, old lines included.
func (s *Service) UpdateSale(ctx context.Context, saleID int64, req UpdateSaleRequest) (*models.Sale, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	var sale models.Sale
	var reserved *reservedLines

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sale, saleID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSaleNotFound
			}
			return err
		}
		if sale.IsPaid {
			return ErrCannotEditPaid
		}

		var oldItems []models.SaleItem
		if err := tx.Where("sale_id = ?", saleID).Find(&oldItems).Error; err != nil {
			return err
		}
		for _, item := range oldItems {
			if err := s.ledger.Release(tx, item.InventoryItemID, item.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}

		now := time.Now()
		var err error
		reserved, err = s.reserveLines(tx, req.Items, now)
		if err != nil {
			return err
		}
		for i := range reserved.saleItems {
			reserved.saleItems[i].SaleID = saleID
		}
		if err := tx.Create(&reserved.saleItems).Error; err != nil {
			return wrapConstraint(err)
		}

		updates := map[string]interface{}{
			"total_amount": reserved.total.StringFixed(2),
			"updated_at":   now,
		}
		if req.CustomerName != nil {
			updates["customer_name"] = *req.CustomerName
		}
		if req.CustomerPhone != nil {
			updates["customer_phone"] = *req.CustomerPhone
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}
		if err := tx.Model(&models.Sale{}).Where("id = ?", saleID).Updates(updates).Error; err != nil {
			return err
		}

		sale.TotalAmount = reserved.total.StringFixed(2)
		sale.UpdatedAt = now
		sale.Items = reserved.saleItems
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale updated",
		zap.Int64("sale_id", sale.ID),
		zap.String("total", sale.TotalAmount),
		zap.Int("items", len(sale.Items)))

	s.emitLowStock(ctx, reserved.snapshots)

	return &sale, nil
}

// DeleteSale removes a sale and undoes everything it did: quantities go back
// to the ledger and, when the sale was paid, the income aggregate for the
// sale's own day is decremented by the same per-owner deltas.
func (s *Service) DeleteSale(ctx context.Context, saleID int64) error {
	var reversed []LineFact

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sale, saleID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSaleNotFound
			}
			return err
		}

		var items []models.SaleItem
		if err := tx.Where("sale_id = ?", saleID).Find(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			if err := s.ledger.Release(tx, item.InventoryItemID, item.Quantity); err != nil {
				return err
			}
		}

		if sale.IsPaid {
			facts, err := s.lineFacts(tx, items)
			if err != nil {
				return err
			}
			reversed = facts
			day := income.Day(sale.SaleDate)
			for ownerID, delta := range OwnerDeltas(facts) {
				if err := s.aggregator.ApplyDelta(tx, ownerID, day, delta.Negate()); err != nil {
					return err
				}
			}
		}

		if err := tx.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Sale{}, saleID).Error
	})
	if err != nil {
		return err
	}

	if len(reversed) > 0 {
		s.invalidateReports(ctx, OwnerDeltas(reversed))
	}

	s.log.Info("sale deleted", zap.Int64("sale_id", saleID))
	return nil
}

// lineFacts rebuilds income facts from stored sale items. The sale price is
// the frozen snapshot; the cost is whatever the inventory item carries now.
func (s *Service) lineFacts(tx *gorm.DB, items []models.SaleItem) ([]LineFact, error) {
	facts := make([]LineFact, 0, len(items))
	for _, item := range items {
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price on sale item %d: %w", item.ID, err)
		}
		totalPrice, err := decimal.NewFromString(item.TotalPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid total price on sale item %d: %w", item.ID, err)
		}
		cost, err := s.ledger.CurrentCost(tx, item.InventoryItemID)
		if err != nil {
			return nil, err
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		facts = append(facts, LineFact{
			OwnerID:  item.OwnerID,
			Total:    totalPrice,
			Profit:   unitPrice.Sub(cost).Mul(qty),
			Quantity: item.Quantity,
		})
	}
	return facts, nil
}

func (s *Service) emitLowStock(ctx context.Context, snapshots []*stock.Snapshot) {
	for _, snap := range snapshots {
		if !snap.LowStockCrossing() {
			continue
		}
		s.events.LowStock(ctx, notify.LowStockEvent{
			ItemID:          snap.ItemID,
			ItemName:        snap.Name,
			CurrentQuantity: snap.QuantityAfter,
			MinimumStock:    snap.MinimumStock,
		})
	}
}

// wrapConstraint surfaces unique-key violations as conflicts instead of
// opaque database errors.
func wrapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
	}
	return err
}
