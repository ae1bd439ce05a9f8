package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shwepos/internal/database/models"
)

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid inventory input: " + e.Reason
}

type CreateItemRequest struct {
	OwnerID      int64   `json:"owner_id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	Unit         string  `json:"unit"`
	Quantity     int32   `json:"quantity"`
	UnitCost     string  `json:"unit_cost"`
	SellingPrice string  `json:"selling_price"`
	MinimumStock int32   `json:"minimum_stock"`
	Barcode      *string `json:"barcode"`
	Supplier     *string `json:"supplier"`
}

type UpdateItemRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	Unit         *string `json:"unit"`
	UnitCost     *string `json:"unit_cost"`
	SellingPrice *string `json:"selling_price"`
	MinimumStock *int32  `json:"minimum_stock"`
	Barcode      *string `json:"barcode"`
	Supplier     *string `json:"supplier"`
	IsActive     *bool   `json:"is_active"`
}

type ItemFilter struct {
	OwnerID  int64
	Category string
	Search   string
	LowStock bool
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// Column allow-list for sorting; anything else falls back to name.
var sortColumns = map[string]string{
	"name":          "name",
	"quantity":      "quantity",
	"category":      "category",
	"unit_cost":     "unit_cost",
	"selling_price": "selling_price",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

// Inventory is the catalog side of the stock package: item definitions,
// prices, restocks. Quantity mutations tied to sales go through Ledger.
type Inventory struct {
	db     *gorm.DB
	ledger *Ledger
	log    *zap.Logger
}

func NewInventory(db *gorm.DB, ledger *Ledger, log *zap.Logger) *Inventory {
	return &Inventory{db: db, ledger: ledger, log: log}
}

func validMoney(field, value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("%s must be a decimal number", field)}
	}
	if d.IsNegative() {
		return &ValidationError{Reason: field + " cannot be negative"}
	}
	return nil
}

func (i *Inventory) CreateItem(ctx context.Context, req CreateItemRequest) (*models.InventoryItem, error) {
	if req.Name == "" {
		return nil, &ValidationError{Reason: "name is required"}
	}
	if req.OwnerID <= 0 {
		return nil, &ValidationError{Reason: "owner_id is required"}
	}
	if req.Quantity < 0 {
		return nil, &ValidationError{Reason: "quantity cannot be negative"}
	}
	if req.MinimumStock < 0 {
		return nil, &ValidationError{Reason: "minimum_stock cannot be negative"}
	}
	if err := validMoney("unit_cost", req.UnitCost); err != nil {
		return nil, err
	}
	if err := validMoney("selling_price", req.SellingPrice); err != nil {
		return nil, err
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}

	item := models.InventoryItem{
		OwnerID:      req.OwnerID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Unit:         unit,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		SellingPrice: req.SellingPrice,
		MinimumStock: req.MinimumStock,
		Barcode:      req.Barcode,
		Supplier:     req.Supplier,
		IsActive:     true,
	}
	if err := i.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}

	i.log.Info("inventory item created",
		zap.Int64("item_id", item.ID),
		zap.String("name", item.Name),
		zap.Int32("quantity", item.Quantity))
	return &item, nil
}

func (i *Inventory) GetItem(ctx context.Context, itemID int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := i.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ItemNotFoundError{ItemID: itemID}
		}
		return nil, err
	}
	return &item, nil
}

func (i *Inventory) ListItems(ctx context.Context, filter ItemFilter) ([]models.InventoryItem, int64, error) {
	query := i.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("is_active = ?", true)

	if filter.OwnerID > 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR barcode = ?", pattern, filter.Search)
	}
	if filter.LowStock {
		query = query.Where("quantity <= minimum_stock")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "name"
	}
	order := column + " ASC"
	if filter.SortDesc {
		order = column + " DESC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var items []models.InventoryItem
	err := query.Order(order).Limit(limit).Offset(filter.Offset).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (i *Inventory) UpdateItem(ctx context.Context, itemID int64, req UpdateItemRequest) (*models.InventoryItem, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, &ValidationError{Reason: "name cannot be empty"}
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.UnitCost != nil {
		if err := validMoney("unit_cost", *req.UnitCost); err != nil {
			return nil, err
		}
		updates["unit_cost"] = *req.UnitCost
	}
	if req.SellingPrice != nil {
		if err := validMoney("selling_price", *req.SellingPrice); err != nil {
			return nil, err
		}
		updates["selling_price"] = *req.SellingPrice
	}
	if req.MinimumStock != nil {
		if *req.MinimumStock < 0 {
			return nil, &ValidationError{Reason: "minimum_stock cannot be negative"}
		}
		updates["minimum_stock"] = *req.MinimumStock
	}
	if req.Barcode != nil {
		updates["barcode"] = *req.Barcode
	}
	if req.Supplier != nil {
		updates["supplier"] = *req.Supplier
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, &ValidationError{Reason: "no fields to update"}
	}

	res := i.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ?", itemID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &ItemNotFoundError{ItemID: itemID}
	}
	return i.GetItem(ctx, itemID)
}

// Restock adds quantity to an item outside of any sale. Quantity must be
// positive; corrections downward go through UpdateItem on other fields or a
// manual adjustment, never through a negative restock.
func (i *Inventory) Restock(ctx context.Context, itemID int64, quantity int32) (*models.InventoryItem, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Reason: "restock quantity must be positive"}
	}

	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.Select("id").
			Where("id = ? AND is_active = ?", itemID, true).
			First(&item).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &ItemNotFoundError{ItemID: itemID}
			}
			return err
		}
		return i.ledger.Release(tx, itemID, quantity)
	})
	if err != nil {
		return nil, err
	}

	i.log.Info("inventory item restocked",
		zap.Int64("item_id", itemID),
		zap.Int32("added", quantity))
	return i.GetItem(ctx, itemID)
}

// DeactivateItem soft-deletes: the item stops selling but its rows survive
// so historical sales keep resolving.
func (i *Inventory) DeactivateItem(ctx context.Context, itemID int64) error {
	res := i.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ?", itemID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ItemNotFoundError{ItemID: itemID}
	}
	i.log.Info("inventory item deactivated", zap.Int64("item_id", itemID))
	return nil
}
