package categories

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) ListPublic(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), true)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Index(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), false)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
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
	Name      string `json:"name" binding:"required"`
	ParentID  *int64 `json:"parent_id"`
	ImageURL  string `json:"image_url"`
	SortOrder int    `json:"sort_order"`
}

func (h *Handler) Store(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	created, err := h.repo.Create(c.Request.Context(), req.Name, req.ParentID, req.ImageURL, req.SortOrder)
	if err != nil {
		httpx.Fail(c, &httpx.BusinessError{Msg: "failed to create category (duplicate name?)"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

type updateReq struct {
	Name      *string `json:"name"`
	ParentID  *int64  `json:"parent_id"`
	ImageURL  *string `json:"image_url"`
	SortOrder *int    `json:"sort_order"`
}

func (h *Handler) Update(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), id, req.Name, req.ParentID, req.ImageURL, req.SortOrder)
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

	inUse, err := h.repo.HasProducts(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if inUse {
		httpx.Fail(c, &httpx.BusinessError{Msg: "category still has products"})
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
