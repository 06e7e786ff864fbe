package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/services"
)

type Razorpay struct {
	http    *services.HTTPClient
	keyID   string
	secret  string
	baseURL string
}

func NewRazorpay(cfg config.PaymentConfig, timeout time.Duration) *Razorpay {
	return &Razorpay{
		http:    services.NewHTTPClient("razorpay", timeout),
		keyID:   cfg.RazorpayKeyID,
		secret:  cfg.RazorpayKeySecret,
		baseURL: strings.TrimRight(cfg.RazorpayBaseURL, "/"),
	}
}

func (r *Razorpay) Name() string { return "razorpay" }

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (r *Razorpay) CreateOrder(ctx context.Context, req GatewayOrder) (*GatewayOrderResult, error) {
	if req.Amount <= 0 {
		return nil, errs.Validation("montant de paiement invalide: %d", req.Amount)
	}
	var out razorpayOrder
	err := r.http.DoJSON(ctx, services.HTTPRequest{
		Method: http.MethodPost,
		URL:    r.baseURL + "/orders",
		Body: map[string]any{
			"amount":          req.Amount,
			"currency":        req.Currency,
			"receipt":         req.Receipt,
			"notes":           req.Notes,
			"payment_capture": 1,
		},
		BasicAuth: [2]string{r.keyID, r.secret},
	}, &out)
	if err != nil {
		return nil, errs.Upstream(r.Name(), err)
	}
	if out.ID == "" {
		return nil, errs.Upstream(r.Name(), fmt.Errorf("réponse sans identifiant de commande"))
	}
	return &GatewayOrderResult{ID: out.ID, KeyID: r.keyID}, nil
}

func (r *Razorpay) VerifyPayment(_ context.Context, gatewayOrderID, paymentID, signature string) error {
	if !VerifySignature(r.secret, gatewayOrderID, paymentID, signature) {
		return errs.Validation("signature de paiement invalide")
	}
	return nil
}
