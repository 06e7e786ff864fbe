package payment

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/orders"
	"wearxture_back_end/internal/payment"
	"wearxture_back_end/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWebhook struct {
	evt payment.WebhookPayment
	ok  bool
	err error
	sig string
}

func (f *fakeWebhook) ParseWebhook(_ []byte, sig string) (payment.WebhookPayment, bool, error) {
	f.sig = sig
	return f.evt, f.ok, f.err
}

type noGateway struct{}

func (noGateway) Name() string { return "stripe" }
func (noGateway) CreateOrder(context.Context, payment.GatewayOrder) (*payment.GatewayOrderResult, error) {
	return nil, errors.New("inutilisé")
}
func (noGateway) VerifyPayment(context.Context, string, string, string) error { return nil }

func setup(t *testing.T, webhook WebhookParser) (*gin.Engine, *repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	require.NoError(t, store.Orders.Create(context.Background(), &models.Order{
		ID:             "WX1",
		UserEmail:      "asha@example.in",
		TotalAmount:    999,
		PaymentMethod:  models.PaymentOnline,
		PaymentStatus:  models.PaymentPending,
		OrderStatus:    models.OrderPending,
		GatewayOrderID: "pi_1",
		CreatedAt:      time.Now(),
	}))
	svc := orders.NewService(orders.Deps{Orders: store.Orders, Products: store.Products})
	bridge := payment.NewBridge(payment.BridgeDeps{Gateway: noGateway{}, Orders: store.Orders, Confirmer: svc})

	h := NewHandler(bridge, webhook)
	r := gin.New()
	r.POST("/verify", h.Verify)
	r.POST("/webhook", h.StripeWebhook)
	return r, store
}

func post(r *gin.Engine, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestWebhookNotConfigured(t *testing.T) {
	r, _ := setup(t, nil)
	rec := post(r, "/webhook", "{}", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookConfirmsOrderOnce(t *testing.T) {
	hook := &fakeWebhook{evt: payment.WebhookPayment{OrderID: "WX1", PaymentIntentID: "pi_1"}, ok: true}
	r, store := setup(t, hook)
	header := http.Header{"Stripe-Signature": {"t=1,v1=abc"}}

	rec := post(r, "/webhook", `{"type":"payment_intent.succeeded"}`, header)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"received":true,"replay":false}`, rec.Body.String())
	assert.Equal(t, "t=1,v1=abc", hook.sig)

	o, err := store.Orders.Get(context.Background(), "WX1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, o.OrderStatus)
	assert.Equal(t, "pi_1", o.GatewayPaymentID)

	rec = post(r, "/webhook", `{}`, header)
	assert.JSONEq(t, `{"received":true,"replay":true}`, rec.Body.String())
}

func TestWebhookIgnoredEventsAndBadSignatures(t *testing.T) {
	hook := &fakeWebhook{}
	r, _ := setup(t, hook)

	rec := post(r, "/webhook", `{"type":"charge.refunded"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())

	hook.err = errs.Validation("signature Stripe invalide")
	rec = post(r, "/webhook", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyRequiresPaymentID(t *testing.T) {
	r, _ := setup(t, nil)
	rec := post(r, "/verify", `{"order_id":"WX1"}`, http.Header{"Content-Type": {"application/json"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(r, "/verify", `{"order_id":"WX404","razorpay_payment_id":"pay_1"}`, http.Header{"Content-Type": {"application/json"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
