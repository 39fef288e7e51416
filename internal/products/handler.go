package products

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/pricing"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func filterFromQuery(c *gin.Context) Filter {
	f := Filter{
		Search:      c.Query("search"),
		StockStatus: c.Query("stock_status"),
	}
	if v := c.Query("category_id"); v != "" {
		f.CategoryID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("active"); v != "" {
		b := v == "true" || v == "1"
		f.Active = &b
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	return f
}

func (h *Handler) Index(c *gin.Context) {
	f := filterFromQuery(c)
	items, total, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"total":    total,
		"page":     f.normalized().Page,
		"per_page": f.normalized().PerPage,
	})
}

// ListPublic serves the customer order form: active products only.
func (h *Handler) ListPublic(c *gin.Context) {
	f := filterFromQuery(c)
	active := true
	f.Active = &active
	items, total, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) Search(c *gin.Context) {
	f := Filter{Search: c.Query("q"), PerPage: 10}
	items, _, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Show(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	p, err := h.repo.ByID(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type createReq struct {
	CategoryID  int64            `json:"category_id" binding:"required"`
	Name        string           `json:"name" binding:"required"`
	Code        string           `json:"code" binding:"required"`
	BasePrice   decimal.Decimal  `json:"base_price" binding:"required"`
	StockQty    decimal.Decimal  `json:"stock_qty"`
	StockUnit   string           `json:"stock_unit" binding:"required"`
	MinOrderQty *decimal.Decimal `json:"min_order_qty"`
	MaxOrderQty *decimal.Decimal `json:"max_order_qty"`
	ImageURL    string           `json:"image_url"`
}

func (h *Handler) Store(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if !pricing.ValidUnit(req.StockUnit) {
		httpx.Fail(c, &httpx.ValidationError{Msg: "unknown stock unit " + req.StockUnit})
		return
	}
	if req.BasePrice.IsNegative() {
		httpx.Fail(c, &httpx.ValidationError{Msg: "base price must not be negative"})
		return
	}

	p, err := h.repo.Create(c.Request.Context(), CreateInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Code:        req.Code,
		BasePrice:   req.BasePrice,
		StockQty:    req.StockQty,
		StockUnit:   req.StockUnit,
		MinOrderQty: req.MinOrderQty,
		MaxOrderQty: req.MaxOrderQty,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httpx.Fail(c, &httpx.BusinessError{Msg: "failed to create product (duplicate code?)"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

type updateReq struct {
	CategoryID  *int64           `json:"category_id"`
	Name        *string          `json:"name"`
	Code        *string          `json:"code"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	StockQty    *decimal.Decimal `json:"stock_qty"`
	StockUnit   *string          `json:"stock_unit"`
	MinOrderQty *decimal.Decimal `json:"min_order_qty"`
	MaxOrderQty *decimal.Decimal `json:"max_order_qty"`
	ImageURL    *string          `json:"image_url"`
}

func (h *Handler) Update(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if req.StockUnit != nil && !pricing.ValidUnit(*req.StockUnit) {
		httpx.Fail(c, &httpx.ValidationError{Msg: "unknown stock unit " + *req.StockUnit})
		return
	}
	if req.BasePrice != nil && req.BasePrice.IsNegative() {
		httpx.Fail(c, &httpx.ValidationError{Msg: "base price must not be negative"})
		return
	}

	p, err := h.repo.Update(c.Request.Context(), id, UpdateInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Code:        req.Code,
		BasePrice:   req.BasePrice,
		StockQty:    req.StockQty,
		StockUnit:   req.StockUnit,
		MinOrderQty: req.MinOrderQty,
		MaxOrderQty: req.MaxOrderQty,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ToggleStatus(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	p, err := h.repo.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Destroy(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		httpx.Fail(c, &httpx.BusinessError{Msg: "could not delete product; it may appear on past orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type bulkReq struct {
	ProductIDs []int64         `json:"product_ids"`
	CategoryID int64           `json:"category_id"`
	Mode       string          `json:"mode" binding:"required"`
	Value      decimal.Decimal `json:"value" binding:"required"`
}

func (h *Handler) BulkUpdate(c *gin.Context) {
	var req bulkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	n, err := h.repo.BulkUpdatePrices(c.Request.Context(), BulkAdjustment{
		ProductIDs: req.ProductIDs,
		CategoryID: req.CategoryID,
		Mode:       req.Mode,
		Value:      req.Value,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

type discountReq struct {
	Type     string          `json:"type" binding:"required"`
	Value    decimal.Decimal `json:"value" binding:"required"`
	StartsAt *time.Time      `json:"starts_at"`
	EndsAt   *time.Time      `json:"ends_at"`
	IsActive bool            `json:"is_active"`
}

func (h *Handler) AddDiscount(c *gin.Context) {
	productID, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	var req discountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	d, err := h.repo.AddDiscount(c.Request.Context(), productID, DiscountInput{
		Type: req.Type, Value: req.Value, StartsAt: req.StartsAt, EndsAt: req.EndsAt, IsActive: req.IsActive,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDiscount(c *gin.Context) {
	discountID, _ := strconv.ParseInt(c.Param("discountId"), 10, 64)

	var req discountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	d, err := h.repo.UpdateDiscount(c.Request.Context(), discountID, DiscountInput{
		Type: req.Type, Value: req.Value, StartsAt: req.StartsAt, EndsAt: req.EndsAt, IsActive: req.IsActive,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDiscount(c *gin.Context) {
	discountID, _ := strconv.ParseInt(c.Param("discountId"), 10, 64)
	if err := h.repo.DeleteDiscount(c.Request.Context(), discountID); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
