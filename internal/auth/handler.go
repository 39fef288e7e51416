package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	JWT     *JWTManager
	Users   *UserRepo
	Refresh *RefreshRepo
}

type Handler struct {
	deps Dependencies
}

func NewHandler(d Dependencies) *Handler {
	return &Handler{deps: d}
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	u, err := h.deps.Users.ByEmail(c.Request.Context(), req.Email)
	if err != nil || !u.IsActive || VerifyPassword(u.PasswordHash, req.Password) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	access, accessExp, err := h.deps.JWT.SignAccess(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token sign failed"})
		return
	}
	refresh, refreshExp, err := h.deps.JWT.SignRefresh(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token sign failed"})
		return
	}
	if err := h.deps.Refresh.Store(c.Request.Context(), u.ID, TokenDigest(refresh), refreshExp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh store failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":       access,
		"access_expires_at":  accessExp,
		"refresh_token":      refresh,
		"refresh_expires_at": refreshExp,
		"user":               u,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.deps.JWT.ParseRefresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	// Rotation: Consume atomically revokes the presented token, so the
	// same refresh token can never mint two new pairs.
	live, err := h.deps.Refresh.Consume(c.Request.Context(), claims.UserID, TokenDigest(req.RefreshToken))
	if err != nil || !live {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token revoked or expired"})
		return
	}

	access, accessExp, err := h.deps.JWT.SignAccess(claims.UserID, claims.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token sign failed"})
		return
	}
	refresh, refreshExp, err := h.deps.JWT.SignRefresh(claims.UserID, claims.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token sign failed"})
		return
	}
	if err := h.deps.Refresh.Store(c.Request.Context(), claims.UserID, TokenDigest(refresh), refreshExp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh store failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":       access,
		"access_expires_at":  accessExp,
		"refresh_token":      refresh,
		"refresh_expires_at": refreshExp,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, err := h.deps.JWT.ParseRefresh(req.RefreshToken)
	if err == nil {
		_ = h.deps.Refresh.Revoke(c.Request.Context(), claims.UserID, TokenDigest(req.RefreshToken))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.deps.Users.ByID(c.Request.Context(), UserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every outstanding refresh token for the account.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := UserID(c)
	u, err := h.deps.Users.ByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if VerifyPassword(u.PasswordHash, req.CurrentPassword) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is wrong"})
		return
	}

	newHash, err := HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := h.deps.Users.UpdatePassword(c.Request.Context(), userID, newHash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password update failed"})
		return
	}
	_ = h.deps.Refresh.RevokeAll(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
