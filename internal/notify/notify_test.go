package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakePDF struct {
	html string
	err  error
}

func (f *fakePDF) Render(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4"), nil
}

var shop = config.ShopConfig{
	Name:         "WEARXTURE",
	SupportEmail: "support@wearxture.com",
	UPIID:        "wearxture@upi",
}

func sampleOrder(method models.PaymentMethod) models.Order {
	o := models.Order{
		ID:        "WX01",
		UserEmail: "asha@example.in",
		Phone:     "9876543210",
		DeliveryAddress: models.Address{
			Name: "Asha", Line1: "12 MG Road", City: "Bengaluru", State: "KA", PostalCode: "560002",
		},
		Items: []models.OrderItem{
			{ProductID: gocql.TimeUUID(), Name: "Kurta <Linen>", SKU: "KRT-1", Size: "M", Quantity: 2, Price: 500},
		},
		Subtotal:      1000,
		TotalAmount:   1000,
		PaymentMethod: method,
		PaymentStatus: models.PaymentCompleted,
		OrderStatus:   models.OrderConfirmed,
		CreatedAt:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	if method == models.PaymentCOD {
		o.CODFee = 80
		o.PaymentStatus = models.PaymentCODFeePaid
	}
	return o
}

func TestOrderConfirmedSendsConfirmationAndInvoice(t *testing.T) {
	mailer, pdf := &fakeMailer{}, &fakePDF{}
	svc := NewService(mailer, pdf, shop, "https://wearxture.com")

	svc.OrderConfirmed(context.Background(), sampleOrder(models.PaymentOnline))

	require.Len(t, mailer.sent, 2)
	confirmation := mailer.sent[0]
	assert.Equal(t, "asha@example.in", confirmation.To)
	assert.Equal(t, "Order Confirmation - #WX01", confirmation.Subject)
	assert.Contains(t, confirmation.HTML, "Kurta &lt;Linen&gt; (M)")
	assert.Contains(t, confirmation.HTML, "₹1000.00")
	assert.Contains(t, confirmation.HTML, "https://wearxture.com/orders")
	assert.NotContains(t, confirmation.HTML, "Cash on Delivery")

	invoice := mailer.sent[1]
	assert.Equal(t, "Invoice for Order #WX01", invoice.Subject)
	require.Len(t, invoice.Attachments, 1)
	assert.Equal(t, "WEARXTURE_Invoice_WX01.pdf", invoice.Attachments[0].Name)
	assert.Equal(t, []byte("%PDF-1.4"), invoice.Attachments[0].Data)
}

func TestConfirmationShowsAmountDueForCOD(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, nil, shop, "https://wearxture.com")

	require.NoError(t, svc.SendConfirmation(context.Background(), sampleOrder(models.PaymentCOD)))

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].HTML, "Cash on Delivery")
	assert.Contains(t, mailer.sent[0].HTML, "₹80.00")
	assert.Contains(t, mailer.sent[0].HTML, "₹920.00")
}

func TestStatusChangedSubject(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, nil, shop, "https://wearxture.com/")
	o := sampleOrder(models.PaymentOnline)
	o.OrderStatus = models.OrderDispatched
	o.Shipment = models.ShipmentInfo{AWBCode: "AWB123", TrackingURL: "https://shiprocket.co/tracking/AWB123"}

	svc.StatusChanged(context.Background(), o)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Order #WX01 Status Update: Dispatched", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].HTML, "dispatched and is on its way")
	assert.Contains(t, mailer.sent[0].HTML, "https://shiprocket.co/tracking/AWB123")
	assert.Contains(t, mailer.sent[0].HTML, "https://wearxture.com/order/WX01")
}

func TestStatusChangedSkipsPending(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, nil, shop, "")
	o := sampleOrder(models.PaymentOnline)
	o.OrderStatus = models.OrderPending

	svc.StatusChanged(context.Background(), o)
	assert.Empty(t, mailer.sent)
}

func TestSendFailuresAreNotSurfaced(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := NewService(mailer, &fakePDF{}, shop, "")

	assert.NotPanics(t, func() {
		svc.OrderConfirmed(context.Background(), sampleOrder(models.PaymentOnline))
		svc.StatusChanged(context.Background(), sampleOrder(models.PaymentOnline))
	})
}

func TestSendInvoiceReportsPDFFailure(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, &fakePDF{err: errors.New("chrome absent")}, shop, "")

	err := svc.SendInvoice(context.Background(), sampleOrder(models.PaymentOnline))
	assert.ErrorContains(t, err, "chrome absent")
	assert.Empty(t, mailer.sent)
}

func TestInvoiceHTMLCarriesUPIQRForCOD(t *testing.T) {
	svc := NewService(&fakeMailer{}, nil, shop, "")

	html, err := svc.InvoiceHTML(sampleOrder(models.PaymentCOD))
	require.NoError(t, err)
	assert.Contains(t, html, "INV-WX01")
	assert.Contains(t, html, `src="data:image/png;base64,`)
	assert.Contains(t, html, "Scan to pay ₹920.00")

	html, err = svc.InvoiceHTML(sampleOrder(models.PaymentOnline))
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "data:image/png"))
}

func TestInvoicePDFWithoutRenderer(t *testing.T) {
	svc := NewService(&fakeMailer{}, nil, shop, "")
	_, err := svc.InvoicePDF(context.Background(), sampleOrder(models.PaymentOnline))
	assert.Error(t, err)
}

func TestWelcomeEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, nil, shop, "https://wearxture.com")

	svc.Welcome(context.Background(), models.User{ID: gocql.TimeUUID(), Email: "asha@example.in", Name: "Asha"})

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Welcome to WEARXTURE!", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].HTML, "Welcome, Asha!")
	assert.Contains(t, mailer.sent[0].HTML, "https://wearxture.com/products")
	assert.Contains(t, mailer.sent[0].HTML, "Thanks for joining WEARXTURE.")
}

func TestTitleAndMoney(t *testing.T) {
	assert.Equal(t, "Cod Fee Paid", Title("cod_fee_paid"))
	assert.Equal(t, "₹460.50", Money(460.5))
}
