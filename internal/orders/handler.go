package orders

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
)

type Handler struct {
	repo *Repo
	svc  *Service
}

func NewHandler(repo *Repo, svc *Service) *Handler {
	return &Handler{repo: repo, svc: svc}
}

func (h *Handler) Index(c *gin.Context) {
	f := Filter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if v := c.Query("customer_id"); v != "" {
		f.CustomerID, _ = strconv.ParseInt(v, 10, 64)
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	items, total, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) Show(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	o, err := h.repo.ByID(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Track lets a customer look up their order by number, no auth required.
func (h *Handler) Track(c *gin.Context) {
	o, err := h.repo.ByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	current, err := h.repo.ByID(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if err := Transition(current, req.Status); err != nil {
		httpx.Fail(c, err)
		return
	}

	updated, err := h.repo.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
