package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
)

var hundred = decimal.NewFromInt(100)

// ActiveDiscount picks the discount in force at the given instant, or nil.
// When discount history is inconsistent and several rows overlap, the
// oldest row (created_at, then id) wins, so the result is deterministic.
func ActiveDiscount(p product.Product, at time.Time) *product.Discount {
	var best *product.Discount
	for i := range p.Discounts {
		d := &p.Discounts[i]
		if !d.ActiveAt(at) {
			continue
		}
		if best == nil ||
			d.CreatedAt.Before(best.CreatedAt) ||
			(d.CreatedAt.Equal(best.CreatedAt) && d.ID < best.ID) {
			best = d
		}
	}
	return best
}

// Apply returns base after the discount, clamped at zero and rounded to
// 2 decimals. A nil discount returns base rounded.
func Apply(base decimal.Decimal, d *product.Discount) decimal.Decimal {
	price := base
	if d != nil {
		switch d.Type {
		case product.DiscountPercentage:
			price = base.Sub(base.Mul(d.Value).Div(hundred))
		case product.DiscountFixed:
			price = base.Sub(d.Value)
		}
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price.Round(2)
}

// EffectivePrice is the selling price per stock unit at the given instant.
func EffectivePrice(p product.Product, at time.Time) decimal.Decimal {
	return Apply(p.BasePrice, ActiveDiscount(p, at))
}

// PriceForQuantity prices qty expressed in the given unit against the
// product's per-stock-unit effective price. The unit must share a family
// with the product's stock unit.
func PriceForQuantity(p product.Product, qty decimal.Decimal, unit string, at time.Time) (decimal.Decimal, error) {
	inStockUnits, err := ConvertQuantity(qty, unit, p.StockUnit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot convert unit %s to %s for product %s", unit, p.StockUnit, p.Code)
	}
	return EffectivePrice(p, at).Mul(inStockUnits).Round(2), nil
}

// DiscountAmountForQuantity is the saving versus the undiscounted price
// for the same quantity, used for order-level discount reporting.
func DiscountAmountForQuantity(p product.Product, qty decimal.Decimal, unit string, at time.Time) (decimal.Decimal, error) {
	inStockUnits, err := ConvertQuantity(qty, unit, p.StockUnit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot convert unit %s to %s for product %s", unit, p.StockUnit, p.Code)
	}
	full := p.BasePrice.Round(2).Mul(inStockUnits)
	discounted := EffectivePrice(p, at).Mul(inStockUnits)
	amt := full.Sub(discounted).Round(2)
	if amt.IsNegative() {
		return decimal.Zero, nil
	}
	return amt, nil
}
