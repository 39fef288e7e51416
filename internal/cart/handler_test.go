package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincart "github.com/viknesh-web/grocery-management-api-sub001/internal/domain/cart"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/customer"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/order"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/orders"
)

type fakeStore struct {
	carts   map[string]domaincart.Cart
	removed []int64
	cleared []int64
}

func (f *fakeStore) Create(context.Context) (domaincart.Cart, error) {
	c := domaincart.Cart{ID: int64(len(f.carts) + 1), Token: "crt_test"}
	f.carts[c.Token] = c
	return c, nil
}

func (f *fakeStore) ByToken(_ context.Context, token string) (domaincart.Cart, error) {
	c, ok := f.carts[token]
	if !ok {
		return domaincart.Cart{}, nil
	}
	return c, nil
}

func (f *fakeStore) UpsertItem(_ context.Context, cartID, productID int64, qty decimal.Decimal, unit string) error {
	return nil
}

func (f *fakeStore) RemoveItem(_ context.Context, cartID, productID int64) error {
	f.removed = append(f.removed, productID)
	return nil
}

func (f *fakeStore) SetCustomer(_ context.Context, cartID int64, name, phone, address string) error {
	return nil
}

func (f *fakeStore) Clear(_ context.Context, cartID int64) error {
	f.cleared = append(f.cleared, cartID)
	return nil
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

type fakeOrderStore struct {
	created []order.Order
}

func (f *fakeOrderStore) CreateWithItems(_ context.Context, o order.Order) (order.Order, error) {
	o.ID = int64(len(f.created) + 1)
	f.created = append(f.created, o)
	return o, nil
}

type fakeCustomers struct{}

func (fakeCustomers) Upsert(_ context.Context, name, phone, address string) (customer.Customer, error) {
	return customer.Customer{ID: 7, Name: name, Phone: phone, Address: address}, nil
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func activeProduct(id int64, name, code string, price string) product.Product {
	return product.Product{
		ID:        id,
		Name:      name,
		Code:      code,
		BasePrice: dec(price),
		StockQty:  dec("100"),
		StockUnit: "kg",
		IsActive:  true,
	}
}

func newTestRouter(store *fakeStore, catalog fakeCatalog, orderStore *fakeOrderStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := orders.NewService(catalog, orderStore)
	h := NewHandler(store, catalog, svc, fakeCustomers{})

	r := gin.New()
	r.POST("/cart", h.Create)
	r.GET("/cart/:token", h.Show)
	r.PUT("/cart/:token/items", h.PutItem)
	r.DELETE("/cart/:token/items/:productId", h.RemoveItem)
	r.PUT("/cart/:token/customer", h.SetCustomer)
	r.GET("/cart/:token/review", h.Review)
	r.POST("/cart/:token/confirm", h.Confirm)
	return r
}

func seededStore(items ...domaincart.Item) *fakeStore {
	return &fakeStore{carts: map[string]domaincart.Cart{
		"crt_test": {ID: 1, Token: "crt_test", CustomerName: "Asha", CustomerPhone: "919800000001", Items: items},
	}}
}

func TestRemoveItemReadsProductIDFromPath(t *testing.T) {
	store := seededStore(
		domaincart.Item{ProductID: 5, ProductName: "Rice", Qty: dec("2"), Unit: "kg"},
		domaincart.Item{ProductID: 7, ProductName: "Oil", Qty: dec("1"), Unit: "liter"},
	)
	r := newTestRouter(store, fakeCatalog{}, &fakeOrderStore{})

	// No request body: the path names the product.
	req := httptest.NewRequest(http.MethodDelete, "/cart/crt_test/items/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []int64{7}, store.removed)
}

func TestRemoveItemRejectsMalformedProductID(t *testing.T) {
	store := seededStore(domaincart.Item{ProductID: 5, Qty: dec("1"), Unit: "kg"})
	r := newTestRouter(store, fakeCatalog{}, &fakeOrderStore{})

	req := httptest.NewRequest(http.MethodDelete, "/cart/crt_test/items/oil", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, store.removed)
}

func TestReviewFlagsWithdrawnProduct(t *testing.T) {
	store := seededStore(
		domaincart.Item{ProductID: 1, ProductName: "Rice", Qty: dec("2"), Unit: "kg"},
		domaincart.Item{ProductID: 2, ProductName: "Gone", Qty: dec("1"), Unit: "kg"},
	)
	catalog := fakeCatalog{1: activeProduct(1, "Rice", "RICE-01", "100")}
	r := newTestRouter(store, catalog, &fakeOrderStore{})

	req := httptest.NewRequest(http.MethodGet, "/cart/crt_test/review", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Lines []struct {
			ProductID int64           `json:"product_id"`
			Available bool            `json:"available"`
			Subtotal  decimal.Decimal `json:"subtotal"`
		} `json:"lines"`
		UnavailableCount int             `json:"unavailable_count"`
		GrandTotal       decimal.Decimal `json:"grand_total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Len(t, body.Lines, 2)
	assert.True(t, body.Lines[0].Available)
	assert.False(t, body.Lines[1].Available, "withdrawn product must be surfaced, not hidden")
	assert.Equal(t, 1, body.UnavailableCount)
	// Totals cover priced lines only.
	assert.True(t, body.GrandTotal.Equal(dec("200")), body.GrandTotal.String())
}

func TestReviewFlagsDeactivatedProduct(t *testing.T) {
	inactive := activeProduct(3, "Paused", "PAUSE-01", "10")
	inactive.IsActive = false
	store := seededStore(domaincart.Item{ProductID: 3, Qty: dec("1"), Unit: "kg"})
	r := newTestRouter(store, fakeCatalog{3: inactive}, &fakeOrderStore{})

	req := httptest.NewRequest(http.MethodGet, "/cart/crt_test/review", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unavailable_count":1`)
}

func TestConfirmPlacesOrderAndClearsCart(t *testing.T) {
	store := seededStore(domaincart.Item{ProductID: 1, Qty: dec("2"), Unit: "kg"})
	catalog := fakeCatalog{1: activeProduct(1, "Rice", "RICE-01", "100")}
	orderStore := &fakeOrderStore{}
	r := newTestRouter(store, catalog, orderStore)

	req := httptest.NewRequest(http.MethodPost, "/cart/crt_test/confirm",
		strings.NewReader(`{"grand_total":"1.00"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, orderStore.created, 1)
	assert.True(t, orderStore.created[0].GrandTotal.Equal(dec("200")), "server repricing must win")
	assert.Equal(t, []int64{1}, store.cleared, "cart cleared only after the order committed")
}

func TestConfirmFailureKeepsCart(t *testing.T) {
	// Product withdrawn between review and confirm: the order is
	// rejected and the cart survives for another attempt.
	store := seededStore(domaincart.Item{ProductID: 9, Qty: dec("1"), Unit: "kg"})
	r := newTestRouter(store, fakeCatalog{}, &fakeOrderStore{})

	req := httptest.NewRequest(http.MethodPost, "/cart/crt_test/confirm", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.cleared)
}

func TestNewTokenShape(t *testing.T) {
	a, err := newToken()
	require.NoError(t, err)
	b, err := newToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "crt_"))
	assert.Len(t, a, 4+32)
}
