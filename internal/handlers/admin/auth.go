package admin

import (
	"net/http"
	"time"

	"wearxture_back_end/internal/auth"
	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var in auth.LoginInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	session, err := h.Auth.AdminLogin(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	middleware.SetSessionCookie(c, middleware.AdminCookie, session.Token, maxAge, h.SecureCookies)
	c.JSON(http.StatusOK, gin.H{
		"user":       session.User,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, middleware.AdminCookie, h.SecureCookies)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Auth.ListUsers(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// SetUserActive active ou désactive un compte; un admin ne peut pas se désactiver.
func (h *Handler) SetUserActive(c *gin.Context) {
	var in struct {
		Active *bool `json:"is_active" binding:"required"`
	}
	if !handlers.BindJSON(c, &in) {
		return
	}
	if !*in.Active && c.Param("id") == middleware.UserID(c) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Impossible de désactiver son propre compte"})
		return
	}
	u, err := h.Auth.SetActive(c.Request.Context(), c.Param("id"), *in.Active)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
