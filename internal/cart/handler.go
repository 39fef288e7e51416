package cart

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domaincart "github.com/viknesh-web/grocery-management-api-sub001/internal/domain/cart"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/customer"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/orders"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/pricing"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/util"
)

// Store is the cart persistence surface; *Repo satisfies it.
type Store interface {
	Create(ctx context.Context) (domaincart.Cart, error)
	ByToken(ctx context.Context, token string) (domaincart.Cart, error)
	UpsertItem(ctx context.Context, cartID, productID int64, qty decimal.Decimal, unit string) error
	RemoveItem(ctx context.Context, cartID, productID int64) error
	SetCustomer(ctx context.Context, cartID int64, name, phone, address string) error
	Clear(ctx context.Context, cartID int64) error
}

// CustomerDirectory records the order-form customer; *customers.Repo
// satisfies it.
type CustomerDirectory interface {
	Upsert(ctx context.Context, name, phone, address string) (customer.Customer, error)
}

type Handler struct {
	store     Store
	products  orders.ProductSource
	orderSvc  *orders.Service
	customers CustomerDirectory
}

func NewHandler(store Store, products orders.ProductSource, orderSvc *orders.Service, customers CustomerDirectory) *Handler {
	return &Handler{store: store, products: products, orderSvc: orderSvc, customers: customers}
}

// Create opens an empty cart; the returned token keys every later call.
func (h *Handler) Create(c *gin.Context) {
	crt, err := h.store.Create(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, crt)
}

func (h *Handler) Show(c *gin.Context) {
	crt, err := h.store.ByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

type itemReq struct {
	ProductID int64           `json:"product_id" binding:"required"`
	Qty       decimal.Decimal `json:"qty" binding:"required"`
	Unit      string          `json:"unit" binding:"required"`
}

func (h *Handler) PutItem(c *gin.Context) {
	crt, err := h.store.ByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	var req itemReq
	if err := c.ShouldBindJSON(&req); err != nil || !req.Qty.IsPositive() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid item"})
		return
	}
	if !pricing.ValidUnit(req.Unit) {
		httpx.Fail(c, &httpx.ValidationError{Msg: "unknown unit " + req.Unit})
		return
	}

	if err := h.store.UpsertItem(c.Request.Context(), crt.ID, req.ProductID, req.Qty, req.Unit); err != nil {
		httpx.Fail(c, &httpx.BusinessError{Msg: "failed to add item (unknown product?)"})
		return
	}
	crt, err = h.store.ByToken(c.Request.Context(), crt.Token)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, crt)
}

// RemoveItem drops one product from the cart. The product id lives in
// the path; the request carries no body.
func (h *Handler) RemoveItem(c *gin.Context) {
	crt, err := h.store.ByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Fail(c, &httpx.ValidationError{Msg: "invalid product id"})
		return
	}
	if err := h.store.RemoveItem(c.Request.Context(), crt.ID, productID); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type customerReq struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
}

func (h *Handler) SetCustomer(c *gin.Context) {
	crt, err := h.store.ByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	var req customerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	phone, err := util.NormalizePhone(req.Phone)
	if err != nil {
		httpx.Fail(c, &httpx.ValidationError{Msg: "invalid phone number"})
		return
	}
	if err := h.store.SetCustomer(c.Request.Context(), crt.ID, req.Name, phone, req.Address); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type reviewLine struct {
	domaincart.Item
	// Available is false when the product was withdrawn or deactivated
	// after it went into the cart; confirmation will reject such lines,
	// so the quote must show them.
	Available     bool            `json:"available"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	DiscountType  string          `json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// Review prices the cart from current catalog state so the visitor sees
// the same numbers confirmation will persist.
func (h *Handler) Review(c *gin.Context) {
	crt, err := h.store.ByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if len(crt.Items) == 0 {
		httpx.Fail(c, &httpx.BusinessError{Msg: "cart is empty"})
		return
	}

	ids := make([]int64, 0, len(crt.Items))
	for _, it := range crt.Items {
		ids = append(ids, it.ProductID)
	}
	catalog, err := h.products.ByIDs(c.Request.Context(), ids)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	now := time.Now()
	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	unavailable := 0
	lines := make([]reviewLine, 0, len(crt.Items))
	for _, it := range crt.Items {
		p, ok := catalog[it.ProductID]
		if !ok || !p.IsActive {
			// Confirmation would reject this line, so the quote
			// flags it instead of hiding it.
			unavailable++
			lines = append(lines, reviewLine{Item: it})
			continue
		}
		lineTotal, err := pricing.PriceForQuantity(p, it.Qty, it.Unit, now)
		if err != nil {
			httpx.Fail(c, &httpx.ValidationError{Msg: err.Error()})
			return
		}
		lineDiscount, _ := pricing.DiscountAmountForQuantity(p, it.Qty, it.Unit, now)
		subtotal = subtotal.Add(lineTotal)
		discountTotal = discountTotal.Add(lineDiscount)

		rl := reviewLine{Item: it, Available: true, UnitPrice: pricing.EffectivePrice(p, now), Subtotal: lineTotal}
		if d := pricing.ActiveDiscount(p, now); d != nil {
			rl.DiscountType = d.Type
			rl.DiscountValue = d.Value
		}
		lines = append(lines, rl)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":             crt.Token,
		"customer_name":     crt.CustomerName,
		"customer_phone":    crt.CustomerPhone,
		"lines":             lines,
		"unavailable_count": unavailable,
		"subtotal":          subtotal,
		"discount_total":    discountTotal,
		"grand_total":       subtotal,
	})
}

type confirmReq struct {
	// An echo of the client-side total; informational only, never stored.
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Confirm turns the cart into a persisted order and clears the cart only
// after the order committed, so a failed attempt keeps the selection.
func (h *Handler) Confirm(c *gin.Context) {
	crt, err := h.store.ByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if crt.CustomerName == "" || crt.CustomerPhone == "" {
		httpx.Fail(c, &httpx.BusinessError{Msg: "customer name and phone are required before confirmation"})
		return
	}

	var req confirmReq
	_ = c.ShouldBindJSON(&req)

	cust, err := h.customers.Upsert(c.Request.Context(), crt.CustomerName, crt.CustomerPhone, crt.CustomerAddress)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	lines := make([]orders.Line, 0, len(crt.Items))
	for _, it := range crt.Items {
		lines = append(lines, orders.Line{ProductID: it.ProductID, Qty: it.Qty, Unit: it.Unit})
	}

	o, err := h.orderSvc.PlaceOrder(c.Request.Context(), orders.PlaceInput{
		CustomerID:      &cust.ID,
		CustomerName:    crt.CustomerName,
		CustomerPhone:   crt.CustomerPhone,
		CustomerAddress: crt.CustomerAddress,
		Lines:           lines,
		ClientTotal:     req.GrandTotal,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	if err := h.store.Clear(c.Request.Context(), crt.ID); err != nil {
		// Order is committed; a stale cart is only cosmetic.
		log.Printf("cart clear failed for cart %d: %v", crt.ID, err)
	}

	c.JSON(http.StatusCreated, o)
}
