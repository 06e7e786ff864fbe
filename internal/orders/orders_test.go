package orders

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/repository"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type fakePayments struct {
	calls int
	err   error
}

func (f *fakePayments) StartPayment(_ context.Context, o *models.Order) (*models.PaymentSession, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.PaymentSession{Provider: "fake", GatewayOrderID: "gw_" + o.ID, Currency: "INR"}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	statuses []models.OrderStatus
}

func (f *fakeNotifier) StatusChanged(_ context.Context, o models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, o.OrderStatus)
}

type fakeEvents struct {
	mu    sync.Mutex
	types []string
}

func (f *fakeEvents) Publish(_ context.Context, evt models.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, evt.Type)
	return nil
}

type fakeCarts struct {
	carts   map[string]*models.Cart
	cleared []string
}

func (f *fakeCarts) Get(_ context.Context, userID string) (*models.Cart, error) {
	if c, ok := f.carts[userID]; ok {
		return c, nil
	}
	return &models.Cart{UserID: userID}, nil
}

func (f *fakeCarts) Clear(_ context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	delete(f.carts, userID)
	return nil
}

// failingProducts fait échouer la n-ième déduction.
type failingProducts struct {
	repository.ProductRepository
	failOn int32
	calls  int32
}

func (f *failingProducts) DeductInventory(ctx context.Context, id gocql.UUID, qty int) (*models.Product, error) {
	if atomic.AddInt32(&f.calls, 1) == f.failOn {
		return nil, errors.New("scylla timeout")
	}
	return f.ProductRepository.DeductInventory(ctx, id, qty)
}

// cancellingOrders annule la commande juste avant la confirmation,
// comme le ferait l'expiration planifiée.
type cancellingOrders struct {
	repository.OrderRepository
}

func (r cancellingOrders) TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error) {
	if to == models.OrderConfirmed {
		if _, err := r.OrderRepository.TransitionStatus(ctx, id, from, models.OrderCancelled); err != nil {
			return false, err
		}
	}
	return r.OrderRepository.TransitionStatus(ctx, id, from, to)
}

type OrdersSuite struct {
	suite.Suite
	ctx      context.Context
	store    *repository.MemoryStore
	payments *fakePayments
	notifier *fakeNotifier
	events   *fakeEvents
	carts    *fakeCarts
	svc      *Service
	customer Customer
}

func (s *OrdersSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.payments = &fakePayments{}
	s.notifier = &fakeNotifier{}
	s.events = &fakeEvents{}
	s.carts = &fakeCarts{carts: map[string]*models.Cart{}}
	s.customer = Customer{UserID: "u1", Email: "Asha@Example.in"}
	s.svc = s.newService(s.store.Products)
}

func (s *OrdersSuite) newService(products repository.ProductRepository) *Service {
	return NewService(Deps{
		Orders:        s.store.Orders,
		Products:      products,
		Payments:      s.payments,
		Notifier:      s.notifier,
		Events:        s.events,
		Carts:         s.carts,
		Pricing:       Pricing{CODFee: 80},
		OrderIDPrefix: "WX",
	})
}

func (s *OrdersSuite) product(name string, price float64, inventory int) models.Product {
	p := models.Product{
		ID:             gocql.TimeUUID(),
		Name:           name,
		Price:          price,
		InventoryCount: inventory,
		InStock:        inventory > 0,
		CreatedAt:      time.Now(),
	}
	s.Require().NoError(s.store.Products.Create(s.ctx, &p))
	return p
}

func (s *OrdersSuite) inventory(id gocql.UUID) int {
	p, err := s.store.Products.Get(s.ctx, id)
	s.Require().NoError(err)
	return p.InventoryCount
}

func (s *OrdersSuite) request(method models.PaymentMethod, items ...models.CartItem) models.CheckoutRequest {
	return models.CheckoutRequest{
		Items: items,
		Phone: "9876543210",
		DeliveryAddress: models.Address{
			Name: "Asha Rao", Line1: "12 MG Road", City: "Bengaluru", State: "KA", PostalCode: "560001",
		},
		PaymentMethod: method,
	}
}

func (s *OrdersSuite) allOrders() []models.Order {
	orders, err := s.store.Orders.List(s.ctx)
	s.Require().NoError(err)
	return orders
}

func (s *OrdersSuite) TestCheckoutDeductsInventory() {
	p := s.product("Kurta", 500, 3)

	res, err := s.svc.Checkout(s.ctx, s.customer, s.request(models.PaymentOnline, models.CartItem{ProductID: p.ID, Quantity: 2}))
	s.Require().NoError(err)

	o := res.Order
	s.True(strings.HasPrefix(o.ID, "WX"))
	s.Equal("asha@example.in", o.UserEmail)
	s.Equal(1000.0, o.Subtotal)
	s.Equal(1000.0, o.TotalAmount)
	s.Equal(models.OrderPending, o.OrderStatus)
	s.Equal(models.PaymentPending, o.PaymentStatus)
	s.Equal("gw_"+o.ID, o.GatewayOrderID)
	s.NotNil(res.Payment)
	s.Equal(1, s.inventory(p.ID))
	s.Equal([]string{"u1"}, s.carts.cleared)
	s.Equal([]string{models.EventOrderCreated}, s.events.types)

	stored, err := s.store.Orders.Get(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal("Kurta", stored.Items[0].Name)
	s.Equal(500.0, stored.Items[0].Price)
}

func (s *OrdersSuite) TestCheckoutInsufficientInventoryHasNoEffect() {
	p := s.product("Kurta", 500, 3)

	_, err := s.svc.Checkout(s.ctx, s.customer, s.request(models.PaymentOnline, models.CartItem{ProductID: p.ID, Quantity: 5}))

	var inv *errs.InsufficientInventoryError
	s.Require().True(errors.As(err, &inv))
	s.Require().Len(inv.Shortages, 1)
	s.Equal(p.ID.String(), inv.Shortages[0].ProductID)
	s.Equal(3, inv.Shortages[0].Available)
	s.Equal(5, inv.Shortages[0].Requested)
	s.ErrorIs(err, errs.ErrInsufficientInventory)

	s.Equal(3, s.inventory(p.ID))
	s.Empty(s.allOrders())
	s.Zero(s.payments.calls)
}

func (s *OrdersSuite) TestCheckoutReportsEveryShortage() {
	a := s.product("Kurta", 500, 1)
	b := s.product("Saree", 900, 0)
	missing := gocql.TimeUUID()

	_, err := s.svc.Checkout(s.ctx, s.customer, s.request(models.PaymentOnline,
		models.CartItem{ProductID: a.ID, Quantity: 1},
		models.CartItem{ProductID: b.ID, Quantity: 1},
		models.CartItem{ProductID: missing, Quantity: 2},
	))

	var inv *errs.InsufficientInventoryError
	s.Require().True(errors.As(err, &inv))
	s.Len(inv.Shortages, 2)
	s.Equal(0, inv.Shortages[1].Available)
	s.Equal(1, s.inventory(a.ID))
}

func (s *OrdersSuite) TestCheckoutAggregatesSizesOfSameProduct() {
	p := s.product("Kurta", 500, 3)

	_, err := s.svc.Checkout(s.ctx, s.customer, s.request(models.PaymentOnline,
		models.CartItem{ProductID: p.ID, Quantity: 2, Size: "M"},
		models.CartItem{ProductID: p.ID, Quantity: 2, Size: "L"},
	))
	s.ErrorIs(err, errs.ErrInsufficientInventory)
	s.Equal(3, s.inventory(p.ID))
}

func (s *OrdersSuite) TestMidLoopFailureRollsBack() {
	a := s.product("Kurta", 500, 3)
	b := s.product("Saree", 900, 3)
	svc := s.newService(&failingProducts{ProductRepository: s.store.Products, failOn: 2})

	_, err := svc.Checkout(s.ctx, s.customer, s.request(models.PaymentOnline,
		models.CartItem{ProductID: a.ID, Quantity: 2},
		models.CartItem{ProductID: b.ID, Quantity: 1},
	))
	s.Require().Error(err)

	s.Equal(3, s.inventory(a.ID))
	s.Equal(3, s.inventory(b.ID))
	s.Empty(s.allOrders())
	s.Empty(s.carts.cleared)
}

func (s *OrdersSuite) TestGatewayFailureAbortsBeforePersisting() {
	p := s.product("Kurta", 500, 3)
	s.payments.err = errs.Upstream("razorpay", errors.New("503"))

	_, err := s.svc.Checkout(s.ctx, s.customer, s.request(models.PaymentOnline, models.CartItem{ProductID: p.ID, Quantity: 1}))
	s.ErrorIs(err, errs.ErrUpstream)
	s.Empty(s.allOrders())
	s.Equal(3, s.inventory(p.ID))
}

func (s *OrdersSuite) TestCODChargesConfirmationFeeOnline() {
	p := s.product("Kurta", 500, 3)

	res, err := s.svc.Checkout(s.ctx, s.customer, s.request(models.PaymentCOD, models.CartItem{ProductID: p.ID, Quantity: 1}))
	s.Require().NoError(err)
	s.Equal(80.0, res.Order.CODFee)
	s.Equal(500.0, res.Order.TotalAmount)
	s.Equal(80.0, res.Order.AmountDueOnline())
	s.Equal(1, s.payments.calls)
}

func (s *OrdersSuite) TestCheckoutUsesStoredCart() {
	p := s.product("Kurta", 500, 3)
	s.carts.carts["u1"] = &models.Cart{UserID: "u1", Items: []models.CartItem{{ProductID: p.ID, Quantity: 1}}}

	res, err := s.svc.Checkout(s.ctx, s.customer, s.request(models.PaymentOnline))
	s.Require().NoError(err)
	s.Len(res.Order.Items, 1)
	s.NotContains(s.carts.carts, "u1")
}

func (s *OrdersSuite) TestCheckoutValidation() {
	p := s.product("Kurta", 500, 3)
	line := models.CartItem{ProductID: p.ID, Quantity: 1}

	req := s.request("card", line)
	_, err := s.svc.Checkout(s.ctx, s.customer, req)
	s.ErrorIs(err, errs.ErrValidation)

	req = s.request(models.PaymentOnline, line)
	req.DeliveryAddress.PostalCode = "12"
	_, err = s.svc.Checkout(s.ctx, s.customer, req)
	s.ErrorIs(err, errs.ErrValidation)

	_, err = s.svc.Checkout(s.ctx, s.customer, s.request(models.PaymentOnline))
	s.ErrorIs(err, errs.ErrValidation)
}

func (s *OrdersSuite) placeOrder(qty int) (*models.Order, models.Product) {
	p := s.product("Kurta", 500, 5)
	res, err := s.svc.Checkout(s.ctx, s.customer, s.request(models.PaymentOnline, models.CartItem{ProductID: p.ID, Quantity: qty}))
	s.Require().NoError(err)
	return res.Order, p
}

func (s *OrdersSuite) TestCancelTwiceRestoresOnce() {
	o, p := s.placeOrder(2)
	s.Equal(3, s.inventory(p.ID))

	_, err := s.svc.Cancel(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(5, s.inventory(p.ID))

	_, err = s.svc.Cancel(s.ctx, o.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	s.Equal(5, s.inventory(p.ID))
}

func (s *OrdersSuite) TestConcurrentCancelsRestoreOnce() {
	o, p := s.placeOrder(2)

	var wg sync.WaitGroup
	var ok int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.svc.Cancel(s.ctx, o.ID); err == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), ok)
	s.Equal(5, s.inventory(p.ID))
}

func (s *OrdersSuite) TestUpdateStatusForwardOnly() {
	o, _ := s.placeOrder(1)

	updated, err := s.svc.UpdateStatus(s.ctx, o.ID, models.OrderProcessing)
	s.Require().NoError(err)
	s.Equal(models.OrderProcessing, updated.OrderStatus)
	s.Equal([]models.OrderStatus{models.OrderProcessing}, s.notifier.statuses)

	_, err = s.svc.UpdateStatus(s.ctx, o.ID, models.OrderConfirmed)
	s.ErrorIs(err, errs.ErrInvalidTransition)

	_, err = s.svc.UpdateStatus(s.ctx, o.ID, "shipped")
	s.ErrorIs(err, errs.ErrValidation)
}

func (s *OrdersSuite) TestDeliveredCannotBeCancelled() {
	o, p := s.placeOrder(1)
	_, err := s.svc.UpdateStatus(s.ctx, o.ID, models.OrderDelivered)
	s.Require().NoError(err)

	_, err = s.svc.UpdateStatus(s.ctx, o.ID, models.OrderCancelled)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	s.Equal(4, s.inventory(p.ID))
}

func (s *OrdersSuite) TestCustomerCancelOwnOrderBeforeDispatch() {
	o, _ := s.placeOrder(1)

	_, err := s.svc.CancelForCustomer(s.ctx, "other@example.in", o.ID)
	s.ErrorIs(err, errs.ErrNotFound)

	_, err = s.svc.UpdateStatus(s.ctx, o.ID, models.OrderDispatched)
	s.Require().NoError(err)
	_, err = s.svc.CancelForCustomer(s.ctx, "asha@example.in", o.ID)
	s.ErrorIs(err, errs.ErrInvalidTransition)
}

func (s *OrdersSuite) TestMarkPaidIsIdempotent() {
	o, _ := s.placeOrder(1)

	paid, changed, err := s.svc.MarkPaid(s.ctx, o.ID, models.PaymentUpdate{Status: models.PaymentCompleted, GatewayPaymentID: "pay_1"})
	s.Require().NoError(err)
	s.True(changed)
	s.Equal(models.OrderConfirmed, paid.OrderStatus)
	s.Equal(models.PaymentCompleted, paid.PaymentStatus)

	_, changed, err = s.svc.MarkPaid(s.ctx, o.ID, models.PaymentUpdate{Status: models.PaymentCompleted, GatewayPaymentID: "pay_1"})
	s.Require().NoError(err)
	s.False(changed)
}

func (s *OrdersSuite) TestMarkPaidRefusesCancelledOrder() {
	o, _ := s.placeOrder(1)
	_, err := s.svc.Cancel(s.ctx, o.ID)
	s.Require().NoError(err)

	_, _, err = s.svc.MarkPaid(s.ctx, o.ID, models.PaymentUpdate{Status: models.PaymentCompleted})
	s.ErrorIs(err, errs.ErrInvalidTransition)
}

func (s *OrdersSuite) TestMarkPaidLosesRaceWithExpiry() {
	o, _ := s.placeOrder(1)
	svc := NewService(Deps{
		Orders:   cancellingOrders{s.store.Orders},
		Products: s.store.Products,
		Payments: s.payments,
		Pricing:  Pricing{CODFee: 80},
	})

	_, changed, err := svc.MarkPaid(s.ctx, o.ID, models.PaymentUpdate{Status: models.PaymentCompleted, GatewayPaymentID: "pay_1"})
	s.ErrorIs(err, errs.ErrInvalidTransition)
	s.False(changed)

	got, err := s.svc.Get(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderCancelled, got.OrderStatus)
	s.False(got.PaymentStatus.Paid())
	s.Empty(got.GatewayPaymentID)
}

func (s *OrdersSuite) TestExpireUnpaid() {
	o, p := s.placeOrder(2)
	paidOrder, _ := s.placeOrder(1)
	_, _, err := s.svc.MarkPaid(s.ctx, paidOrder.ID, models.PaymentUpdate{Status: models.PaymentCompleted})
	s.Require().NoError(err)

	n, err := s.svc.ExpireUnpaid(s.ctx, time.Hour)
	s.Require().NoError(err)
	s.Zero(n)

	n, err = s.svc.ExpireUnpaid(s.ctx, -time.Minute)
	s.Require().NoError(err)
	s.Equal(1, n)

	got, err := s.svc.Get(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderCancelled, got.OrderStatus)
	s.Equal(5, s.inventory(p.ID))
}

func (s *OrdersSuite) TestListForCustomerAndStatus() {
	s.placeOrder(1)
	s.placeOrder(1)

	mine, err := s.svc.ListForCustomer(s.ctx, "asha@example.in")
	s.Require().NoError(err)
	s.Len(mine, 2)

	none, err := s.svc.ListForCustomer(s.ctx, "nobody@example.in")
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)

	pending, err := s.svc.List(s.ctx, models.OrderPending)
	s.Require().NoError(err)
	s.Len(pending, 2)
}

func TestOrdersSuite(t *testing.T) {
	suite.Run(t, new(OrdersSuite))
}

func TestPricing(t *testing.T) {
	items := []models.OrderItem{{Price: 499.99, Quantity: 3}, {Price: 100, Quantity: 1}}
	p := Pricing{DeliveryCharge: 50, FreeDeliveryThreshold: 2000, TaxRate: 0.05, CODFee: 80}

	online := p.Compute(items, models.PaymentOnline)
	assert.InDelta(t, 1599.97, online.Subtotal, 0.001)
	assert.InDelta(t, 50, online.DeliveryCharge, 0.001)
	assert.InDelta(t, 80, online.Tax, 0.001)
	assert.InDelta(t, 1729.97, online.Total, 0.001)
	assert.Zero(t, online.CODFee)

	cod := p.Compute(items, models.PaymentCOD)
	assert.InDelta(t, 80, cod.CODFee, 0.001)
	assert.Equal(t, online.Total, cod.Total)

	free := p.Compute([]models.OrderItem{{Price: 2500, Quantity: 1}}, models.PaymentOnline)
	assert.Zero(t, free.DeliveryCharge)
}

func TestCODFeeCappedAtTotal(t *testing.T) {
	cod := Pricing{CODFee: 80}.Compute([]models.OrderItem{{Price: 50, Quantity: 1}}, models.PaymentCOD)
	assert.InDelta(t, 50, cod.CODFee, 0.001)
}
