package payment

import (
	"io"
	"net/http"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/payment"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxWebhookBody = 64 << 10

// WebhookParser authentifie un webhook de la passerelle.
type WebhookParser interface {
	ParseWebhook(payload []byte, signatureHeader string) (payment.WebhookPayment, bool, error)
}

type Handler struct {
	bridge  *payment.Bridge
	webhook WebhookParser
}

// NewHandler: webhook est nil si Stripe n'est pas la passerelle active.
func NewHandler(bridge *payment.Bridge, webhook WebhookParser) *Handler {
	return &Handler{bridge: bridge, webhook: webhook}
}

// Verify confirme la commande après le retour du formulaire de paiement.
func (h *Handler) Verify(c *gin.Context) {
	var req payment.VerifyRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	result, err := h.bridge.Verify(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"verified": true,
		"replay":   result.Replay,
		"order":    result.Order,
	})
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.webhook == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Webhook non configuré"})
		return
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		handlers.RespondError(c, errs.Validation("corps illisible"))
		return
	}
	evt, ok, err := h.webhook.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Webhook Stripe rejeté")
		handlers.RespondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	result, err := h.bridge.ConfirmWebhook(c.Request.Context(), evt.OrderID, evt.PaymentIntentID)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "replay": result.Replay})
}
