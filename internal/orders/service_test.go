package orders

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/order"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/pricing"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type fakeCatalog map[int64]product.Product

func (f fakeCatalog) ByIDs(_ context.Context, ids []int64) (map[int64]product.Product, error) {
	out := map[int64]product.Product{}
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeStore struct {
	created []order.Order
	fail    error
}

func (f *fakeStore) CreateWithItems(_ context.Context, o order.Order) (order.Order, error) {
	if f.fail != nil {
		err := f.fail
		f.fail = nil
		return order.Order{}, err
	}
	o.ID = int64(len(f.created) + 1)
	f.created = append(f.created, o)
	return o, nil
}

func newTestService(catalog fakeCatalog, store *fakeStore) *Service {
	s := NewService(catalog, store)
	s.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func catalogProduct(id int64, price string, stock string, unit string) product.Product {
	return product.Product{
		ID:        id,
		Name:      "Product",
		Code:      "P-" + decimal.NewFromInt(id).String(),
		BasePrice: dec(price),
		StockQty:  dec(stock),
		StockUnit: unit,
		IsActive:  true,
	}
}

func TestPlaceOrder_EmptySelectionRejected(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(fakeCatalog{}, store)

	_, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines:         []Line{{ProductID: 1, Qty: dec("0"), Unit: pricing.UnitKg}},
	})
	var be *httpx.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "order has no items", be.Msg)
	assert.Empty(t, store.created, "no order row may exist after rejection")
}

func TestPlaceOrder_MinQuantityBatchRejection(t *testing.T) {
	min1 := dec("5")
	min2 := dec("2")
	p1 := catalogProduct(1, "10.00", "100", pricing.UnitKg)
	p1.MinOrderQty = &min1
	p2 := catalogProduct(2, "4.00", "100", pricing.UnitPiece)
	p2.MinOrderQty = &min2
	p3 := catalogProduct(3, "7.00", "100", pricing.UnitKg)

	store := &fakeStore{}
	svc := newTestService(fakeCatalog{1: p1, 2: p2, 3: p3}, store)

	_, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines: []Line{
			{ProductID: 1, Qty: dec("3"), Unit: pricing.UnitKg},    // below min 5
			{ProductID: 2, Qty: dec("1"), Unit: pricing.UnitPiece}, // below min 2
			{ProductID: 3, Qty: dec("1"), Unit: pricing.UnitKg},    // fine
		},
	})

	var be *httpx.BusinessError
	require.ErrorAs(t, err, &be)
	violations, ok := be.Details.([]QtyViolation)
	require.True(t, ok)
	require.Len(t, violations, 2, "both offenders must be enumerated")
	assert.Equal(t, int64(1), violations[0].ProductID)
	assert.True(t, min1.Equal(violations[0].Limit))
	assert.Equal(t, int64(2), violations[1].ProductID)
	assert.Empty(t, store.created)
}

func TestPlaceOrder_MinQuantityComparesInStockUnits(t *testing.T) {
	min := dec("0.4") // kg
	p := catalogProduct(1, "100.00", "50", pricing.UnitKg)
	p.MinOrderQty = &min

	store := &fakeStore{}
	svc := newTestService(fakeCatalog{1: p}, store)

	// 500 g = 0.5 kg, above the 0.4 kg minimum
	o, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines:         []Line{{ProductID: 1, Qty: dec("500"), Unit: pricing.UnitGram}},
	})
	require.NoError(t, err)
	assert.True(t, dec("50.00").Equal(o.GrandTotal))
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	p := catalogProduct(1, "10.00", "2", pricing.UnitKg)
	store := &fakeStore{}
	svc := newTestService(fakeCatalog{1: p}, store)

	_, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines:         []Line{{ProductID: 1, Qty: dec("3"), Unit: pricing.UnitKg}},
	})
	var be *httpx.BusinessError
	require.ErrorAs(t, err, &be)
	violations := be.Details.([]QtyViolation)
	require.Len(t, violations, 1)
	assert.Equal(t, "insufficient_stock", violations[0].Rule)
}

func TestPlaceOrder_ServerPricesWin(t *testing.T) {
	p := catalogProduct(1, "60.00", "100", pricing.UnitKg)
	store := &fakeStore{}
	svc := newTestService(fakeCatalog{1: p}, store)

	o, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines:         []Line{{ProductID: 1, Qty: dec("2"), Unit: pricing.UnitKg}},
		ClientTotal:   dec("1.00"), // lies
	})
	require.NoError(t, err)
	assert.True(t, dec("120.00").Equal(o.GrandTotal), "derived total persisted, not the client value")
	assert.True(t, dec("120.00").Equal(store.created[0].GrandTotal))
}

func TestPlaceOrder_SnapshotsDiscount(t *testing.T) {
	p := catalogProduct(1, "100.00", "100", pricing.UnitKg)
	p.Discounts = []product.Discount{{
		ID: 1, Type: product.DiscountPercentage, Value: dec("10"), IsActive: true,
	}}
	store := &fakeStore{}
	svc := newTestService(fakeCatalog{1: p}, store)

	o, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines:         []Line{{ProductID: 1, Qty: dec("1"), Unit: pricing.UnitKg}},
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	it := o.Items[0]
	assert.True(t, dec("90.00").Equal(it.UnitPrice))
	assert.Equal(t, product.DiscountPercentage, it.DiscountType)
	assert.True(t, dec("10").Equal(it.DiscountValue))
	assert.True(t, dec("90.00").Equal(o.Subtotal))
	assert.True(t, dec("10.00").Equal(o.DiscountTotal))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Regexp(t, `^ORD-20240601-[0-9A-F]{6}$`, o.OrderNumber)
}

func TestPlaceOrder_ZeroTotalRejected(t *testing.T) {
	p := catalogProduct(1, "10.00", "100", pricing.UnitKg)
	p.Discounts = []product.Discount{{
		ID: 1, Type: product.DiscountFixed, Value: dec("999"), IsActive: true,
	}}
	store := &fakeStore{}
	svc := newTestService(fakeCatalog{1: p}, store)

	_, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines:         []Line{{ProductID: 1, Qty: dec("2"), Unit: pricing.UnitKg}},
	})
	var be *httpx.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "order total must be greater than zero", be.Msg)
	assert.Empty(t, store.created)
}

func TestPlaceOrder_InactiveProductRejected(t *testing.T) {
	p := catalogProduct(1, "10.00", "100", pricing.UnitKg)
	p.IsActive = false
	svc := newTestService(fakeCatalog{1: p}, &fakeStore{})

	_, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines:         []Line{{ProductID: 1, Qty: dec("1"), Unit: pricing.UnitKg}},
	})
	var be *httpx.BusinessError
	require.ErrorAs(t, err, &be)
}

func TestPlaceOrder_CrossFamilyUnitRejected(t *testing.T) {
	p := catalogProduct(1, "10.00", "100", pricing.UnitKg)
	svc := newTestService(fakeCatalog{1: p}, &fakeStore{})

	_, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines:         []Line{{ProductID: 1, Qty: dec("1"), Unit: pricing.UnitLiter}},
	})
	var ve *httpx.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Msg, "cannot convert unit liter to kg")
}

func TestPlaceOrder_RetriesOnceOnDuplicateNumber(t *testing.T) {
	p := catalogProduct(1, "10.00", "100", pricing.UnitKg)
	store := &fakeStore{fail: &pgconn.PgError{Code: "23505"}}
	svc := newTestService(fakeCatalog{1: p}, store)

	o, err := svc.PlaceOrder(context.Background(), PlaceInput{
		CustomerName:  "A",
		CustomerPhone: "628111",
		Lines:         []Line{{ProductID: 1, Qty: dec("1"), Unit: pricing.UnitKg}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, o.OrderNumber)
	require.Len(t, store.created, 1)
}

func TestTransitionRules(t *testing.T) {
	ok := func(from, to string) bool {
		return Transition(order.Order{Status: from}, to) == nil
	}
	assert.True(t, ok(order.StatusPending, order.StatusConfirmed))
	assert.True(t, ok(order.StatusConfirmed, order.StatusProcessing))
	assert.True(t, ok(order.StatusProcessing, order.StatusCompleted))
	assert.True(t, ok(order.StatusPending, order.StatusCancelled))
	assert.True(t, ok(order.StatusProcessing, order.StatusCancelled))

	assert.False(t, ok(order.StatusCompleted, order.StatusCancelled))
	assert.False(t, ok(order.StatusPending, order.StatusProcessing))
	assert.False(t, ok(order.StatusCancelled, order.StatusConfirmed))
	assert.False(t, ok(order.StatusPending, order.StatusPending))

	var ve *httpx.ValidationError
	err := Transition(order.Order{Status: order.StatusPending}, "shipped")
	require.ErrorAs(t, err, &ve)
}
