package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      *int64          `json:"customer_id,omitempty"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountTotal   decimal.Decimal `json:"discount_total"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []Item          `json:"items,omitempty"`
}

// Item is a point-in-time snapshot of the product as sold. Orders must
// stay stable when the catalog later changes, so nothing here is a
// live reference except ProductID, kept for reporting.
type Item struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductCode   string          `json:"product_code"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	DiscountType  string          `json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Qty           decimal.Decimal `json:"qty"`
	Unit          string          `json:"unit"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// CanTransition encodes the order lifecycle:
// pending → confirmed → processing → completed, and any non-terminal
// status may move to cancelled.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	switch to {
	case StatusCancelled:
		return from != StatusCompleted && from != StatusCancelled
	case StatusConfirmed:
		return from == StatusPending
	case StatusProcessing:
		return from == StatusConfirmed
	case StatusCompleted:
		return from == StatusProcessing
	}
	return false
}
