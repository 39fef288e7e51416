package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/order"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/pricing"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/util"
)

// ProductSource supplies current catalog state for repricing.
type ProductSource interface {
	ByIDs(ctx context.Context, ids []int64) (map[int64]product.Product, error)
}

// OrderStore persists a reconciled order atomically.
type OrderStore interface {
	CreateWithItems(ctx context.Context, o order.Order) (order.Order, error)
}

type Service struct {
	products ProductSource
	orders   OrderStore
	now      func() time.Time
}

func NewService(products ProductSource, orders OrderStore) *Service {
	return &Service{products: products, orders: orders, now: time.Now}
}

type Line struct {
	ProductID int64           `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
	Unit      string          `json:"unit"`
}

type PlaceInput struct {
	CustomerID      *int64
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Lines           []Line
	// ClientTotal is what the client claims the order is worth. It is
	// never persisted; totals are always rederived from catalog state.
	ClientTotal decimal.Decimal
}

// QtyViolation identifies a line that failed quantity rules.
type QtyViolation struct {
	ProductID int64           `json:"product_id"`
	Rule      string          `json:"rule"` // below_minimum | above_maximum | insufficient_stock
	Limit     decimal.Decimal `json:"limit"`
}

// PlaceOrder validates and reprices a submitted selection, then persists
// the order with item snapshots. Validation is batch-style: every
// violating line is reported, not just the first.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceInput) (order.Order, error) {
	lines := make([]Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.Qty.IsPositive() {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return order.Order{}, &httpx.BusinessError{Msg: "order has no items"}
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	catalog, err := s.products.ByIDs(ctx, ids)
	if err != nil {
		return order.Order{}, err
	}

	var violations []QtyViolation
	for _, l := range lines {
		p, ok := catalog[l.ProductID]
		if !ok || !p.IsActive {
			return order.Order{}, &httpx.BusinessError{
				Msg:     fmt.Sprintf("product %d is not available", l.ProductID),
				Details: map[string]any{"product_id": l.ProductID},
			}
		}
		qtyInStock, err := pricing.ConvertQuantity(l.Qty, l.Unit, p.StockUnit)
		if err != nil {
			return order.Order{}, &httpx.ValidationError{
				Msg: fmt.Sprintf("cannot convert unit %s to %s for product %s", l.Unit, p.StockUnit, p.Code),
			}
		}
		if p.MinOrderQty != nil && qtyInStock.LessThan(*p.MinOrderQty) {
			violations = append(violations, QtyViolation{ProductID: p.ID, Rule: "below_minimum", Limit: *p.MinOrderQty})
		}
		if p.MaxOrderQty != nil && qtyInStock.GreaterThan(*p.MaxOrderQty) {
			violations = append(violations, QtyViolation{ProductID: p.ID, Rule: "above_maximum", Limit: *p.MaxOrderQty})
		}
		if qtyInStock.GreaterThan(p.StockQty) {
			violations = append(violations, QtyViolation{ProductID: p.ID, Rule: "insufficient_stock", Limit: p.StockQty})
		}
	}
	if len(violations) > 0 {
		return order.Order{}, &httpx.BusinessError{Msg: "quantity rules violated", Details: violations}
	}

	now := s.now()
	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	items := make([]order.Item, 0, len(lines))

	for _, l := range lines {
		p := catalog[l.ProductID]

		lineTotal, err := pricing.PriceForQuantity(p, l.Qty, l.Unit, now)
		if err != nil {
			return order.Order{}, &httpx.ValidationError{Msg: err.Error()}
		}
		lineDiscount, err := pricing.DiscountAmountForQuantity(p, l.Qty, l.Unit, now)
		if err != nil {
			return order.Order{}, &httpx.ValidationError{Msg: err.Error()}
		}
		subtotal = subtotal.Add(lineTotal)
		discountTotal = discountTotal.Add(lineDiscount)

		it := order.Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			ProductCode: p.Code,
			UnitPrice:   pricing.EffectivePrice(p, now),
			Qty:         l.Qty,
			Unit:        l.Unit,
			Subtotal:    lineTotal,
		}
		if d := pricing.ActiveDiscount(p, now); d != nil {
			it.DiscountType = d.Type
			it.DiscountValue = d.Value
		}
		items = append(items, it)
	}

	if !subtotal.IsPositive() {
		return order.Order{}, &httpx.BusinessError{Msg: "order total must be greater than zero"}
	}

	o := order.Order{
		OrderNumber:     util.NewOrderNumber(now),
		CustomerID:      in.CustomerID,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
		Subtotal:        subtotal,
		DiscountTotal:   discountTotal,
		GrandTotal:      subtotal,
		Status:          order.StatusPending,
		Items:           items,
	}

	created, err := s.orders.CreateWithItems(ctx, o)
	if IsUniqueViolation(err) {
		// astronomically unlikely; one regeneration is all the schema needs
		o.OrderNumber = util.NewOrderNumber(s.now())
		created, err = s.orders.CreateWithItems(ctx, o)
	}
	if err != nil {
		return order.Order{}, err
	}
	return created, nil
}

// Transition validates and applies an order status change.
func Transition(current order.Order, to string) error {
	switch to {
	case order.StatusPending, order.StatusConfirmed, order.StatusProcessing, order.StatusCompleted, order.StatusCancelled:
	default:
		return &httpx.ValidationError{Msg: "unknown status " + to}
	}
	if !order.CanTransition(current.Status, to) {
		return &httpx.BusinessError{Msg: fmt.Sprintf("cannot move order from %s to %s", current.Status, to)}
	}
	return nil
}
