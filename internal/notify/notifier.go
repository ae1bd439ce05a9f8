package notify

import "context"

const (
	EventSaleCompleted = "sale.completed"
	EventStockLow      = "stock.low"
)

// LowStockEvent is emitted after commit when a sale pushed an item to or
// below its minimum-stock threshold.
type LowStockEvent struct {
	ItemID          int64  `json:"item_id"`
	ItemName        string `json:"item_name"`
	CurrentQuantity int32  `json:"current_quantity"`
	MinimumStock    int32  `json:"minimum_stock"`
}

// SaleCompletedEvent is emitted after a sale commits.
type SaleCompletedEvent struct {
	SaleID        int64  `json:"sale_id"`
	TotalAmount   string `json:"total_amount"`
	ItemsCount    int    `json:"items_count"`
	PaymentMethod string `json:"payment_method"`
	IsPaid        bool   `json:"is_paid"`
}

// Receipt is one delivery ticket from the push provider. Receipts are logged
// and never acted on.
type Receipt struct {
	Status  string                 `json:"status"`
	ID      string                 `json:"id,omitempty"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Notifier delivers push notifications to a set of device tokens. All
// implementations are best-effort: a failed delivery must never surface as
// an error on the sale path.
type Notifier interface {
	NotifyLowStock(ctx context.Context, tokens []string, ev LowStockEvent) ([]Receipt, error)
	NotifySaleCompleted(ctx context.Context, tokens []string, ev SaleCompletedEvent) ([]Receipt, error)
}
