package pricelog

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceUpdate is an append-only audit row written whenever a product's
// price, discount or stock is edited (single or bulk).
type PriceUpdate struct {
	ID                int64           `json:"id"`
	ProductID         int64           `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	OldPrice          decimal.Decimal `json:"old_price"`
	NewPrice          decimal.Decimal `json:"new_price"`
	OldEffectivePrice decimal.Decimal `json:"old_effective_price"`
	NewEffectivePrice decimal.Decimal `json:"new_effective_price"`
	OldStockQty       decimal.Decimal `json:"old_stock_qty"`
	NewStockQty       decimal.Decimal `json:"new_stock_qty"`
	Reason            string          `json:"reason"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ChangePercent derives the relative change between old and new effective
// price, rounded to 2 decimals. Zero old price yields zero to avoid a
// meaningless division.
func (p PriceUpdate) ChangePercent() decimal.Decimal {
	if p.OldEffectivePrice.IsZero() {
		return decimal.Zero
	}
	diff := p.NewEffectivePrice.Sub(p.OldEffectivePrice)
	return diff.Div(p.OldEffectivePrice).Mul(decimal.NewFromInt(100)).Round(2)
}
