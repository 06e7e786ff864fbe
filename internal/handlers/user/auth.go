package user

import (
	"context"
	"net/http"
	"strings"
	"time"

	"wearxture_back_end/internal/auth"
	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"github.com/rs/zerolog/log"
)

func (h *Handler) startSession(c *gin.Context, status int, s *auth.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	middleware.SetSessionCookie(c, middleware.CustomerCookie, s.Token, maxAge, h.SecureCookies)
	c.JSON(status, gin.H{
		"user":       s.User,
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
	})
}

func (h *Handler) Register(c *gin.Context) {
	var in struct {
		auth.RegisterInput
		Remember bool `json:"remember"`
	}
	if !handlers.BindJSON(c, &in) {
		return
	}
	session, err := h.Auth.Register(c.Request.Context(), in.RegisterInput, in.Remember)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if h.Welcome != nil {
		go h.Welcome.Welcome(context.WithoutCancel(c.Request.Context()), session.User)
	}
	h.startSession(c, http.StatusCreated, session)
}

func (h *Handler) Login(c *gin.Context) {
	var in auth.LoginInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	session, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	h.startSession(c, http.StatusOK, session)
}

// Logout efface le cookie; les jetons émis restent valides jusqu'à expiration.
func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, middleware.CustomerCookie, h.SecureCookies)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.Auth.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var in auth.ProfileUpdate
	if !handlers.BindJSON(c, &in) {
		return
	}
	u, err := h.Auth.UpdateProfile(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// BeginOAuth redirige vers le fournisseur (flux web gothic).
func (h *Handler) BeginOAuth(c *gin.Context) {
	if !h.OAuthWeb {
		handlers.RespondError(c, errs.Validation("connexion %s non configurée", c.Param("provider")))
		return
	}
	gothic.BeginAuthHandler(c.Writer, auth.WithProvider(c.Request, c.Param("provider")))
}

func (h *Handler) OAuthCallback(c *gin.Context) {
	if !h.OAuthWeb {
		handlers.RespondError(c, errs.Validation("connexion %s non configurée", c.Param("provider")))
		return
	}
	gu, err := gothic.CompleteUserAuth(c.Writer, auth.WithProvider(c.Request, c.Param("provider")))
	if err != nil {
		log.Warn().Err(err).Str("provider", c.Param("provider")).Msg("⚠️ Callback OAuth refusé")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentification OAuth échouée"})
		return
	}
	session, err := h.Auth.OAuthLogin(c.Request.Context(), auth.ProfileFromGoth(gu))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if h.FrontendURL == "" {
		h.startSession(c, http.StatusOK, session)
		return
	}
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	middleware.SetSessionCookie(c, middleware.CustomerCookie, session.Token, maxAge, h.SecureCookies)
	c.Redirect(http.StatusFound, strings.TrimRight(h.FrontendURL, "/")+"/")
}

// GoogleToken échange un code d'autorisation obtenu par une application native.
func (h *Handler) GoogleToken(c *gin.Context) {
	if h.Google == nil {
		handlers.RespondError(c, errs.Validation("connexion Google non configurée"))
		return
	}
	var in struct {
		Code        string `json:"code" binding:"required"`
		RedirectURI string `json:"redirect_uri"`
	}
	if !handlers.BindJSON(c, &in) {
		return
	}
	profile, err := h.Google.Exchange(c.Request.Context(), in.Code, in.RedirectURI)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	session, err := h.Auth.OAuthLogin(c.Request.Context(), profile)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	h.startSession(c, http.StatusOK, session)
}
