package priceupdates

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/pricelog"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

type entry struct {
	pricelog.PriceUpdate
	ChangePercent decimal.Decimal `json:"change_percent"`
}

func withDerived(items []pricelog.PriceUpdate) []entry {
	out := make([]entry, len(items))
	for i, u := range items {
		out[i] = entry{PriceUpdate: u, ChangePercent: u.ChangePercent()}
	}
	return out
}

func (h *Handler) Index(c *gin.Context) {
	productID, _ := strconv.ParseInt(c.Query("product_id"), 10, 64)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	items, total, err := h.repo.List(c.Request.Context(), productID, page, perPage)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": withDerived(items), "total": total})
}

func (h *Handler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	items, err := h.repo.Recent(c.Request.Context(), limit)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": withDerived(items)})
}
