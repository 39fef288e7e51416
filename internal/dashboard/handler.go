package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.repo.Stats(ctx, time.Now())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	recent, err := h.repo.RecentOrders(ctx, 10)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	lowStock, err := h.repo.LowStock(ctx, decimal.NewFromInt(10), 10)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"stats":         stats,
		"recent_orders": recent,
		"low_stock":     lowStock,
	}})
}

func (h *Handler) LowStock(c *gin.Context) {
	threshold := decimal.NewFromInt(10)
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
			return
		}
		threshold = parsed
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	out, err := h.repo.LowStock(c.Request.Context(), threshold, limit)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
