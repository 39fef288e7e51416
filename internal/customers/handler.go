package customers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/util"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Index(c *gin.Context) {
	f := Filter{Search: c.Query("search")}
	if v := c.Query("active"); v != "" {
		b := v == "true" || v == "1"
		f.Active = &b
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
	item, err := h.repo.ByID(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type createReq struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
}

func (h *Handler) Store(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	phone, err := util.NormalizePhone(req.Phone)
	if err != nil {
		httpx.Fail(c, &httpx.ValidationError{Msg: "invalid phone number"})
		return
	}
	created, err := h.repo.Create(c.Request.Context(), req.Name, phone, req.Address)
	if err != nil {
		httpx.Fail(c, &httpx.BusinessError{Msg: "failed to create customer (duplicate phone?)"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

type updateReq struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *Handler) Update(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if req.Phone != nil {
		phone, err := util.NormalizePhone(*req.Phone)
		if err != nil {
			httpx.Fail(c, &httpx.ValidationError{Msg: "invalid phone number"})
			return
		}
		req.Phone = &phone
	}
	updated, err := h.repo.Update(c.Request.Context(), id, req.Name, req.Phone, req.Address)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) ToggleStatus(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	updated, err := h.repo.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Destroy(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		httpx.Fail(c, &httpx.BusinessError{Msg: "could not delete customer; orders may reference them"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
