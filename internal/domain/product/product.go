package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Product struct {
	ID          int64            `json:"id"`
	CategoryID  int64            `json:"category_id"`
	Category    string           `json:"category,omitempty"`
	Name        string           `json:"name"`
	Code        string           `json:"code"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	StockQty    decimal.Decimal  `json:"stock_qty"`
	StockUnit   string           `json:"stock_unit"`
	MinOrderQty *decimal.Decimal `json:"min_order_qty,omitempty"`
	MaxOrderQty *decimal.Decimal `json:"max_order_qty,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Discount history, newest first. At most one row is active at any
	// instant; the pricing package resolves which.
	Discounts []Discount `json:"discounts,omitempty"`

	// EffectivePrice is derived at read time, never stored.
	EffectivePrice decimal.Decimal `json:"effective_price"`
}

type Discount struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Type      string          `json:"type"`
	Value     decimal.Decimal `json:"value"`
	StartsAt  *time.Time      `json:"starts_at,omitempty"`
	EndsAt    *time.Time      `json:"ends_at,omitempty"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ActiveAt reports whether the discount applies at the given instant.
// Open-ended windows are allowed on either side.
func (d Discount) ActiveAt(at time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.StartsAt != nil && at.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && at.After(*d.EndsAt) {
		return false
	}
	return true
}
