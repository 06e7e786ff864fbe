package payment

import (
	"context"
	"fmt"

	"wearxture_back_end/internal/config"

	"github.com/shopspring/decimal"
)

// GatewayOrder est la demande de paiement envoyée à la passerelle.
type GatewayOrder struct {
	Receipt  string
	Amount   int64
	Currency string
	Notes    map[string]string
}

// Gateway abstrait Razorpay et Stripe.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, req GatewayOrder) (*GatewayOrderResult, error)
	// VerifyPayment retourne nil si le paiement paymentID a bien réglé gatewayOrderID.
	VerifyPayment(ctx context.Context, gatewayOrderID, paymentID, signature string) error
}

type GatewayOrderResult struct {
	ID           string
	ClientSecret string
	KeyID        string
}

// ToMinorUnits convertit des roupies en paise.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// NewGateway construit la passerelle choisie par PAYMENT_PROVIDER.
func NewGateway(cfg config.PaymentConfig, timeoutCfg config.ServerConfig) (Gateway, error) {
	switch cfg.Provider {
	case "razorpay":
		return NewRazorpay(cfg, timeoutCfg.UpstreamTimeout), nil
	case "stripe":
		return NewStripe(cfg), nil
	default:
		return nil, fmt.Errorf("passerelle inconnue: %q", cfg.Provider)
	}
}
