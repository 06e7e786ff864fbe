package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wearxture_back_end/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	LoginMaxAttempts = 5
	LoginCooldown    = 15 * time.Minute

	APIMaxRequests = 100
	APIWindow      = time.Minute
)

// LoginRateLimit bloque un email après LoginMaxAttempts échecs consécutifs.
// Sans Redis le contrôle est désactivé.
func LoginRateLimit(store *cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var input struct {
			Email string `json:"email"`
		}
		if json.Unmarshal(body, &input) != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "login_attempts:" + strings.ToLower(strings.TrimSpace(input.Email))

		if raw, err := store.GetString(ctx, key); err == nil {
			if attempts, _ := strconv.Atoi(raw); attempts >= LoginMaxAttempts {
				ttl, _ := store.TTL(ctx, key)
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())+1),
					"retry_after": int(ttl.Seconds()),
				})
				return
			}
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			n, err := store.IncrementRateLimit(ctx, key, LoginCooldown)
			if err != nil {
				log.Warn().Err(err).Msg("⚠️ Compteur de connexion indisponible")
				return
			}
			if n >= LoginMaxAttempts {
				log.Warn().Str("email", input.Email).Msg("⚠️ Connexion bloquée après trop d'échecs")
			}
		case http.StatusOK:
			_ = store.ResetRateLimit(ctx, key)
		}
	}
}

// APIRateLimit limite le nombre de requêtes par IP et par minute.
func APIRateLimit(store *cache.Store, max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}
		n, err := store.IncrementRateLimit(c.Request.Context(), "api_requests:"+c.ClientIP(), APIWindow)
		if err != nil {
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		if n > max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de requêtes. Réessayez dans 1 minute",
				"retry_after": int(APIWindow.Seconds()),
			})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max-n, 10))
		c.Next()
	}
}
