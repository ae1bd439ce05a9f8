package models

import "time"

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentMobile PaymentMethod = "mobile"
	PaymentCredit PaymentMethod = "credit"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentMobile, PaymentCredit:
		return true
	}
	return false
}

// Settled reports whether payment was collected at sale time. Credit sales
// stay unpaid until marked paid.
func (m PaymentMethod) Settled() bool {
	return m == PaymentCash || m == PaymentMobile
}

type Owner struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	FullName  string `gorm:"type:varchar(100);not null"`
	Email     *string
	Phone     *string `gorm:"type:varchar(20)"`
	IsActive  bool    `gorm:"not null;default:true"`
	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InventoryItem struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	OwnerID      int64  `gorm:"index;not null"`
	Name         string `gorm:"type:varchar(200);not null"`
	Description  *string
	Category     *string `gorm:"type:varchar(100)"`
	Unit         string  `gorm:"type:varchar(50);not null;default:'unit'"`
	Quantity     int32   `gorm:"not null;default:0"`
	UnitCost     string  `gorm:"type:decimal(10,2);not null"`
	SellingPrice string  `gorm:"type:decimal(10,2);not null"`
	MinimumStock int32   `gorm:"not null;default:0"`
	Barcode      *string `gorm:"type:varchar(100)"`
	Supplier     *string `gorm:"type:varchar(200)"`
	IsActive     bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Owner *Owner `gorm:"foreignKey:OwnerID"`
}

type Sale struct {
	ID            int64         `gorm:"primaryKey;autoIncrement"`
	SaleDate      time.Time     `gorm:"index;not null"`
	TotalAmount   string        `gorm:"type:decimal(10,2);not null"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(16);not null;default:'cash'"`
	IsPaid        bool          `gorm:"not null;default:false"`
	PaidAt        *time.Time
	CustomerName  *string `gorm:"type:varchar(100)"`
	CustomerPhone *string `gorm:"type:varchar(20)"`
	Notes         *string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

type SaleItem struct {
	ID              int64 `gorm:"primaryKey;autoIncrement"`
	SaleID          int64 `gorm:"index;not null"`
	InventoryItemID int64 `gorm:"not null"`
	OwnerID         int64 `gorm:"index;not null"`
	Quantity        int32 `gorm:"not null"`
	// UnitPrice is the selling price frozen at sale time; later price edits
	// on the inventory item do not touch it.
	UnitPrice  string `gorm:"type:decimal(10,2);not null"`
	TotalPrice string `gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time

	InventoryItem *InventoryItem `gorm:"foreignKey:InventoryItemID"`
	Owner         *Owner         `gorm:"foreignKey:OwnerID"`
}

// IncomeSummary is the per-(owner, day) running aggregate of paid sales.
// Rows are created lazily and only ever incremented or decremented; a fully
// reversed day keeps its zeroed row.
type IncomeSummary struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	OwnerID        int64  `gorm:"uniqueIndex:idx_income_owner_date;not null"`
	Date           string `gorm:"type:date;uniqueIndex:idx_income_owner_date;not null"`
	TotalSales     string `gorm:"type:decimal(10,2);not null;default:0"`
	TotalProfit    string `gorm:"type:decimal(10,2);not null;default:0"`
	TotalItemsSold int32  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Owner *Owner `gorm:"foreignKey:OwnerID"`
}

type Device struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement"`
	OwnerID            int64  `gorm:"index;not null"`
	PushToken          string `gorm:"type:varchar(255);uniqueIndex;not null"`
	DeviceID           *string `gorm:"type:varchar(255)"`
	DeviceModel        *string `gorm:"type:varchar(100)"`
	IsActive           bool    `gorm:"not null;default:true"`
	LastActive         *time.Time
	LowStockAlerts     bool `gorm:"not null;default:true"`
	SalesNotifications bool `gorm:"not null;default:true"`
	// Preferred daily low-stock alert time, "HH:MM" local.
	LowStockAlertTime *string `gorm:"type:varchar(8)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
