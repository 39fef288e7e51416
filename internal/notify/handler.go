package notify

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/util"
)

type Handler struct {
	dispatcher *Dispatcher
}

func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary, err := h.dispatcher.Send(c.Request.Context(), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

type validateNumberRequest struct {
	Phone string `json:"phone" binding:"required"`
}

func (h *Handler) ValidateNumber(c *gin.Context) {
	var req validateNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	normalized, err := util.NormalizePhone(req.Phone)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"valid": false, "reason": err.Error()}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"valid": true, "phone": normalized}})
}

func (h *Handler) PriceListPDF(c *gin.Context) {
	doc, err := h.dispatcher.PriceListPDF(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	filename := "price-list-" + time.Now().Format("20060102") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
