package payment

import (
	"context"
	"strings"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/repository"

	"github.com/rs/zerolog/log"
)

// Starter ouvre le paiement en ligne d'une commande.
type Starter struct {
	gateway  Gateway
	currency string
}

func NewStarter(gateway Gateway, currency string) *Starter {
	return &Starter{gateway: gateway, currency: currency}
}

func (s *Starter) StartPayment(ctx context.Context, o *models.Order) (*models.PaymentSession, error) {
	amount := ToMinorUnits(o.AmountDueOnline())
	res, err := s.gateway.CreateOrder(ctx, GatewayOrder{
		Receipt:  o.ID,
		Amount:   amount,
		Currency: s.currency,
		Notes: map[string]string{
			"order_id":       o.ID,
			"customer_email": o.UserEmail,
			"payment_method": string(o.PaymentMethod),
		},
	})
	if err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Str("gateway", s.gateway.Name()).Msg("❌ Création du paiement échouée")
		return nil, err
	}
	return &models.PaymentSession{
		Provider:       s.gateway.Name(),
		KeyID:          res.KeyID,
		GatewayOrderID: res.ID,
		ClientSecret:   res.ClientSecret,
		Amount:         amount,
		Currency:       s.currency,
	}, nil
}

// OrderConfirmer enregistre un paiement vérifié.
type OrderConfirmer interface {
	MarkPaid(ctx context.Context, id string, p models.PaymentUpdate) (*models.Order, bool, error)
}

// ConfirmationSender envoie l'email de confirmation.
type ConfirmationSender interface {
	OrderConfirmed(ctx context.Context, o models.Order)
}

// Shipper transmet la commande au transporteur sans jamais échouer.
type Shipper interface {
	ShipBestEffort(ctx context.Context, o models.Order)
}

// BridgeDeps: Notifier et Shipper sont optionnels. Async lance les effets de
// bord en arrière-plan.
type BridgeDeps struct {
	Gateway   Gateway
	Orders    repository.OrderRepository
	Confirmer OrderConfirmer
	Notifier  ConfirmationSender
	Shipper   Shipper
	Async     bool
}

type Bridge struct {
	gateway   Gateway
	orders    repository.OrderRepository
	confirmer OrderConfirmer
	notifier  ConfirmationSender
	shipper   Shipper
	async     bool
}

func NewBridge(d BridgeDeps) *Bridge {
	return &Bridge{
		gateway:   d.Gateway,
		orders:    d.Orders,
		confirmer: d.Confirmer,
		notifier:  d.Notifier,
		shipper:   d.Shipper,
		async:     d.Async,
	}
}

// VerifyRequest est le retour du formulaire de paiement côté client.
type VerifyRequest struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id" binding:"required"`
	Signature      string `json:"razorpay_signature"`
}

// VerifyResult indique si ce rappel a effectivement confirmé la commande.
type VerifyResult struct {
	Order  *models.Order `json:"order"`
	Replay bool          `json:"replay"`
}

// Verify contrôle le paiement puis confirme la commande. Un rappel rejoué est
// acquitté sans renvoyer l'email ni resoumettre l'expédition.
func (b *Bridge) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	o, err := b.lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	if o.GatewayOrderID == "" {
		return nil, errs.Validation("la commande %s n'attend pas de paiement en ligne", o.ID)
	}
	if req.GatewayOrderID != "" && req.GatewayOrderID != o.GatewayOrderID {
		return nil, errs.Validation("commande passerelle inattendue")
	}
	if err := b.gateway.VerifyPayment(ctx, o.GatewayOrderID, req.PaymentID, req.Signature); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("⚠️ Vérification du paiement refusée")
		return nil, err
	}
	return b.confirm(ctx, o, req.PaymentID, req.Signature)
}

// ConfirmWebhook confirme une commande à partir d'un webhook déjà authentifié.
func (b *Bridge) ConfirmWebhook(ctx context.Context, orderID, paymentID string) (*VerifyResult, error) {
	o, err := b.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return b.confirm(ctx, o, paymentID, "")
}

func (b *Bridge) confirm(ctx context.Context, o *models.Order, paymentID, signature string) (*VerifyResult, error) {
	status := models.PaymentCompleted
	if o.PaymentMethod == models.PaymentCOD {
		status = models.PaymentCODFeePaid
	}
	updated, changed, err := b.confirmer.MarkPaid(ctx, o.ID, models.PaymentUpdate{
		Status:           status,
		GatewayPaymentID: paymentID,
		GatewaySignature: signature,
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		log.Info().Str("order_id", o.ID).Msg("🔁 Paiement déjà enregistré, rappel ignoré")
		return &VerifyResult{Order: updated, Replay: true}, nil
	}

	if b.async {
		bg := context.WithoutCancel(ctx)
		go b.sideEffects(bg, *updated)
	} else {
		b.sideEffects(ctx, *updated)
	}
	return &VerifyResult{Order: updated}, nil
}

func (b *Bridge) sideEffects(ctx context.Context, o models.Order) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if b.notifier != nil {
		b.notifier.OrderConfirmed(ctx, o)
	}
	if b.shipper != nil {
		b.shipper.ShipBestEffort(ctx, o)
	}
}

func (b *Bridge) lookup(ctx context.Context, req VerifyRequest) (*models.Order, error) {
	switch {
	case strings.TrimSpace(req.OrderID) != "":
		return b.orders.Get(ctx, req.OrderID)
	case strings.TrimSpace(req.GatewayOrderID) != "":
		return b.orders.GetByGatewayOrderID(ctx, req.GatewayOrderID)
	default:
		return nil, errs.Validation("order_id ou razorpay_order_id requis")
	}
}
