package sales

import (
	"context"

	"gorm.io/gorm"

	"shwepos/internal/database/models"
)

type ListFilter struct {
	StartDate     string
	EndDate       string
	PaymentMethod string
	// OwnerID keeps sales containing at least one line attributed to the
	// owner; sales themselves are shop-wide.
	OwnerID int64
	IsPaid  *bool
	Limit   int
	Offset  int
}

const defaultListLimit = 50

// ListSales returns sales newest first, with line items preloaded.
func (s *Service) ListSales(ctx context.Context, filter ListFilter) ([]models.Sale, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Sale{})

	if filter.StartDate != "" {
		query = query.Where("sale_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		query = query.Where("sale_date < ?::date + interval '1 day'", filter.EndDate)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}
	if filter.OwnerID > 0 {
		query = query.Where("id IN (?)",
			s.db.Model(&models.SaleItem{}).Select("sale_id").Where("owner_id = ?", filter.OwnerID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	var sales []models.Sale
	err := query.
		Preload("Items").
		Order("sale_date DESC, id DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// GetSale fetches a single sale with its line items.
func (s *Service) GetSale(ctx context.Context, saleID int64) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).Preload("Items").First(&sale, saleID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}
