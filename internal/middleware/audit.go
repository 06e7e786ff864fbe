package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PriceLookup retourne le prix courant d'un produit.
type PriceLookup func(ctx context.Context, productID string) (float64, error)

// AuditPriceChanges journalise l'ancien et le nouveau prix quand une mise
// à jour produit modifie le prix avec succès.
func AuditPriceChanges(lookup PriceLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var input struct {
			Price *float64 `json:"price"`
		}
		if json.Unmarshal(body, &input) != nil || input.Price == nil {
			c.Next()
			return
		}

		productID := c.Param("id")
		oldPrice, err := lookup(c.Request.Context(), productID)
		if err != nil {
			c.Next()
			return
		}

		c.Next()

		if status := c.Writer.Status(); status >= 200 && status < 300 && oldPrice != *input.Price {
			log.Info().
				Str("component", "audit").
				Str("product_id", productID).
				Str("admin_id", UserID(c)).
				Float64("old_price", oldPrice).
				Float64("new_price", *input.Price).
				Msg("💰 Changement de prix")
		}
	}
}

// AuditAction journalise le résultat d'une action d'administration.
func AuditAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		evt := log.Info()
		if c.Writer.Status() >= 400 {
			evt = log.Warn()
		}
		evt.Str("component", "audit").
			Str("action", action).
			Str("resource_id", c.Param("id")).
			Str("admin_id", UserID(c)).
			Int("status", c.Writer.Status()).
			Msg("📝 Action admin")
	}
}
