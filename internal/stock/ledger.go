package stock

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shwepos/internal/database/models"
)

type ItemNotFoundError struct {
	ItemID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("inventory item %d not found or inactive", e.ItemID)
}

type InsufficientStockError struct {
	ItemID    int64
	ItemName  string
	Available int32
	Requested int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ItemName, e.Available, e.Requested)
}

// Snapshot captures an inventory item's state just before a reservation
// decremented it. Price and cost are what downstream income math must use.
type Snapshot struct {
	ItemID         int64
	OwnerID        int64
	Name           string
	UnitCost       decimal.Decimal
	SellingPrice   decimal.Decimal
	QuantityBefore int32
	QuantityAfter  int32
	MinimumStock   int32
}

// LowStockCrossing reports whether this reservation moved the item from
// above its minimum-stock threshold to at or below it.
func (s Snapshot) LowStockCrossing() bool {
	return s.QuantityAfter <= s.MinimumStock && s.QuantityBefore > s.MinimumStock
}

// Ledger owns all quantity mutations on inventory items. Every method takes
// the caller's transaction so the read-check-write stays inside the same
// atomic unit of work as the rest of the sale mutation.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// CheckAndReserve locks the item row, verifies it is active and has at least
// quantity units, then decrements. The row lock serializes concurrent sales
// on the same item so stock can never go negative.
func (l *Ledger) CheckAndReserve(tx *gorm.DB, itemID int64, quantity int32) (*Snapshot, error) {
	var item models.InventoryItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", itemID, true).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ItemNotFoundError{ItemID: itemID}
		}
		return nil, err
	}

	if item.Quantity < quantity {
		return nil, &InsufficientStockError{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Available: item.Quantity,
			Requested: quantity,
		}
	}

	unitCost, err := decimal.NewFromString(item.UnitCost)
	if err != nil {
		return nil, fmt.Errorf("invalid unit cost on item %d: %w", item.ID, err)
	}
	sellingPrice, err := decimal.NewFromString(item.SellingPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid selling price on item %d: %w", item.ID, err)
	}

	before := item.Quantity
	if err := tx.Model(&models.InventoryItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		}).Error; err != nil {
		return nil, err
	}

	return &Snapshot{
		ItemID:         item.ID,
		OwnerID:        item.OwnerID,
		Name:           item.Name,
		UnitCost:       unitCost,
		SellingPrice:   sellingPrice,
		QuantityBefore: before,
		QuantityAfter:  before - quantity,
		MinimumStock:   item.MinimumStock,
	}, nil
}

// Release returns quantity units to the item. Used when a sale is edited or
// deleted; the item may be soft-deleted by then, so no is_active filter.
func (l *Ledger) Release(tx *gorm.DB, itemID int64, quantity int32) error {
	res := tx.Model(&models.InventoryItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ItemNotFoundError{ItemID: itemID}
	}
	return nil
}

// CurrentCost reads an item's unit cost inside the caller's transaction.
// Mark-paid recomputes profit from the cost at settlement time, not the cost
// frozen when the sale was created.
func (l *Ledger) CurrentCost(tx *gorm.DB, itemID int64) (decimal.Decimal, error) {
	var item models.InventoryItem
	if err := tx.Select("id", "unit_cost").First(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, &ItemNotFoundError{ItemID: itemID}
		}
		return decimal.Zero, err
	}
	cost, err := decimal.NewFromString(item.UnitCost)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid unit cost on item %d: %w", item.ID, err)
	}
	return cost, nil
}
