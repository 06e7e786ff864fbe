package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/services"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

// Stripe utilise des PaymentIntents; l'id de l'intent sert d'id de commande passerelle.
type Stripe struct {
	webhookSecret string
	breaker       *gobreaker.CircuitBreaker[*stripe.PaymentIntent]
}

func NewStripe(cfg config.PaymentConfig) *Stripe {
	stripe.Key = cfg.StripeSecretKey
	return &Stripe{
		webhookSecret: cfg.StripeWebhookSecret,
		breaker:       services.NewBreaker[*stripe.PaymentIntent]("stripe"),
	}
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) CreateOrder(ctx context.Context, req GatewayOrder) (*GatewayOrderResult, error) {
	if req.Amount <= 0 {
		return nil, errs.Validation("montant de paiement invalide: %d", req.Amount)
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: req.Notes,
	}
	params.Context = ctx
	params.SetIdempotencyKey("order-" + req.Receipt)

	intent, err := s.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		pi, err := paymentintent.New(params)
		return pi, statusError(err)
	})
	if err != nil {
		return nil, errs.Upstream(s.Name(), err)
	}
	return &GatewayOrderResult{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// VerifyPayment relit l'intent: il doit être réglé. La signature n'est pas utilisée.
func (s *Stripe) VerifyPayment(ctx context.Context, gatewayOrderID, _, _ string) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := s.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		pi, err := paymentintent.Get(gatewayOrderID, params)
		return pi, statusError(err)
	})
	if err != nil {
		return errs.Upstream(s.Name(), err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return errs.Validation("paiement %s au statut %s", gatewayOrderID, intent.Status)
	}
	return nil
}

// WebhookPayment est un paiement confirmé reçu par webhook.
type WebhookPayment struct {
	OrderID         string
	PaymentIntentID string
}

// ParseWebhook vérifie la signature Stripe; ok vaut false pour les événements ignorés.
func (s *Stripe) ParseWebhook(payload []byte, signatureHeader string) (WebhookPayment, bool, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, s.webhookSecret)
	if err != nil {
		return WebhookPayment{}, false, errs.Validation("signature Stripe invalide")
	}
	if event.Type != "payment_intent.succeeded" {
		return WebhookPayment{}, false, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return WebhookPayment{}, false, errs.Validation("PaymentIntent illisible: %v", err)
	}
	orderID := pi.Metadata["order_id"]
	if orderID == "" {
		return WebhookPayment{}, false, errs.Validation("PaymentIntent %s sans order_id", pi.ID)
	}
	return WebhookPayment{OrderID: orderID, PaymentIntentID: pi.ID}, true, nil
}

// statusError expose le code HTTP Stripe au disjoncteur et aux logs.
func statusError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.HTTPStatusCode != 0 {
		return &services.StatusError{Code: se.HTTPStatusCode, Body: fmt.Sprint(se.Msg)}
	}
	return err
}
