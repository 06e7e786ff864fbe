package middleware

import (
	"net/http"
	"strings"

	"wearxture_back_end/internal/auth"
	"wearxture_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	CustomerCookie = "access_token"
	AdminCookie    = "admin_access_token"

	keyUserID = "user_id"
	keyEmail  = "email"
	keyRole   = "role"
)

// CustomerAuth accepte le cookie client ou un en-tête Bearer.
func CustomerAuth(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens, CustomerCookie) {
			return
		}
		c.Next()
	}
}

// AdminAuth n'accepte que les jetons signés pour l'audience admin.
func AdminAuth(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens, AdminCookie) {
			return
		}
		if Role(c) != models.RoleAdmin {
			log.Warn().Str("user_id", UserID(c)).Msg("⚠️ Accès admin refusé")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
			return
		}
		c.Next()
	}
}

// authenticate place les claims dans le contexte, ou interrompt la requête.
func authenticate(c *gin.Context, tokens *auth.TokenIssuer, cookie string) bool {
	raw := bearer(c.GetHeader("Authorization"))
	if raw == "" {
		raw, _ = c.Cookie(cookie)
	}
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
		return false
	}

	claims, err := tokens.Parse(raw)
	if err != nil {
		log.Debug().Err(err).Str("audience", tokens.Audience()).Msg("❌ Jeton rejeté")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
		return false
	}

	c.Set(keyUserID, claims.Subject)
	c.Set(keyEmail, claims.Email)
	c.Set(keyRole, claims.Role)
	return true
}

func bearer(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func UserID(c *gin.Context) string { return c.GetString(keyUserID) }
func Email(c *gin.Context) string  { return c.GetString(keyEmail) }
func Role(c *gin.Context) string   { return c.GetString(keyRole) }

// SetSessionCookie pose le jeton en cookie http-only sur tout le site.
func SetSessionCookie(c *gin.Context, name, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, name string, secure bool) {
	SetSessionCookie(c, name, "", -1, secure)
}
