package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/repository"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeShiprocket simule les routes Shiprocket utilisées par le client.
type fakeShiprocket struct {
	mu          sync.Mutex
	logins      int
	expireFirst bool
	created     []AdhocOrder
	awbBodies   []map[string]string
	pickups     int
	trackStatus string
	serviceCOD  []string
}

func (f *fakeShiprocket) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logins++
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
	})
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.expireFirst {
			f.expireFirst = false
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		return true
	}
	mux.HandleFunc("/settings/company/pickup", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		w.Write([]byte(`{"data":{"shipping_address":[
			{"pickup_location":"Primary","pin_code":110001},
			{"pickup_location":"Warehouse","pin_code":"560001"}]}}`))
	})
	mux.HandleFunc("/orders/create/adhoc", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var body AdhocOrder
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.created = append(f.created, body)
		f.mu.Unlock()
		w.Write([]byte(`{"order_id":9001,"shipment_id":7001,"status":"NEW","status_code":1}`))
	})
	mux.HandleFunc("/courier/serviceability/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.serviceCOD = append(f.serviceCOD, r.URL.Query().Get("cod"))
		f.mu.Unlock()
		w.Write([]byte(`{"data":{"available_courier_companies":[
			{"courier_company_id":1,"courier_name":"Slow Cheap","rate":40,"estimated_delivery_days":"7","cod":1},
			{"courier_company_id":2,"courier_name":"Fast","rate":120,"estimated_delivery_days":"2","cod":0},
			{"courier_company_id":3,"courier_name":"Cheap No COD","rate":30,"estimated_delivery_days":"5","cod":0}]}}`))
	})
	mux.HandleFunc("/courier/assign/awb", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.awbBodies = append(f.awbBodies, body)
		f.mu.Unlock()
		w.Write([]byte(`{"awb_assign_status":1,"response":{"data":{"awb_code":"AWB123"}}}`))
	})
	mux.HandleFunc("/courier/generate/pickup", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.pickups++
		f.mu.Unlock()
		w.Write([]byte(`{"pickup_status":1}`))
	})
	mux.HandleFunc("/courier/track/shipment/7001", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.trackStatus
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"7001": map[string]any{"tracking_data": map[string]any{
				"shipment_status": 7,
				"shipment_track":  []map[string]any{{"awb_code": "AWB123", "current_status": status}},
			}},
		})
	})
	return mux
}

type fakeStatus struct {
	store *repository.MemoryStore
	calls []models.OrderStatus
}

func (f *fakeStatus) UpdateStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	o, err := f.store.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := f.store.Orders.TransitionStatus(ctx, id, o.OrderStatus, to); err != nil {
		return nil, err
	}
	f.calls = append(f.calls, to)
	return f.store.Orders.Get(ctx, id)
}

type ShippingSuite struct {
	suite.Suite
	ctx     context.Context
	fake    *fakeShiprocket
	server  *httptest.Server
	store   *repository.MemoryStore
	status  *fakeStatus
	service *Service
}

func (s *ShippingSuite) SetupTest() {
	s.ctx = context.Background()
	s.fake = &fakeShiprocket{trackStatus: "DELIVERED"}
	s.server = httptest.NewServer(s.fake.handler(s.T()))
	s.store = repository.NewMemoryStore()
	s.status = &fakeStatus{store: s.store}
	client := NewClient(config.ShippingConfig{
		Email:          "ops@wearxture.com",
		Password:       "secret",
		BaseURL:        s.server.URL,
		PickupLocation: "Warehouse",
		TokenTTL:       time.Hour,
	}, nil, 5*time.Second)
	s.service = NewService(client, s.store.Orders, s.status)
	s.service.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
}

func (s *ShippingSuite) TearDownTest() {
	s.server.Close()
}

func (s *ShippingSuite) seedOrder(method models.PaymentMethod) models.Order {
	o := models.Order{
		ID:        "WX01",
		UserEmail: "asha@example.in",
		Phone:     "9876543210",
		DeliveryAddress: models.Address{
			Line1: "12 MG Road", City: "Bengaluru", State: "KA", PostalCode: "560002",
		},
		Items: []models.OrderItem{
			{ProductID: gocql.TimeUUID(), Name: "Kurta", SKU: "KRT-1", Size: "M", Quantity: 2, Price: 500},
		},
		Subtotal:      1000,
		TotalAmount:   1000,
		PaymentMethod: method,
		PaymentStatus: models.PaymentCompleted,
		OrderStatus:   models.OrderConfirmed,
		CreatedAt:     time.Now(),
	}
	if method == models.PaymentCOD {
		o.CODFee = 80
		o.PaymentStatus = models.PaymentCODFeePaid
	}
	s.Require().NoError(s.store.Orders.Create(s.ctx, &o))
	return o
}

func (s *ShippingSuite) TestShipPrepaidUsesFastestCourier() {
	o := s.seedOrder(models.PaymentOnline)

	info, err := s.service.Ship(s.ctx, o)
	s.Require().NoError(err)

	s.Equal(int64(7001), info.ShipmentID)
	s.Equal(int64(9001), info.ProviderOrderID)
	s.Equal("AWB123", info.AWBCode)
	s.Equal("Fast", info.CourierName)
	s.Equal("https://shiprocket.co/tracking/AWB123", info.TrackingURL)

	s.Require().Len(s.fake.created, 1)
	sent := s.fake.created[0]
	s.Equal("Warehouse", sent.PickupLocation)
	s.Equal("Prepaid", sent.PaymentMethod)
	s.Equal("2026-03-01 09:30", sent.OrderDate)
	s.Equal("Kurta (Size: M)", sent.OrderItems[0].Name)
	s.Equal(int64(500), sent.OrderItems[0].SellingPrice)
	s.Equal("0", s.fake.serviceCOD[0])
	s.Equal("2", s.fake.awbBodies[0]["courier_id"])
	s.Equal("7001", s.fake.awbBodies[0]["shipment_id"])
	s.Equal(1, s.fake.pickups)

	stored, err := s.store.Orders.Get(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(info, stored.Shipment)
	s.Equal(models.OrderProcessing, stored.OrderStatus)
}

func (s *ShippingSuite) TestShipCODUsesCheapestCODCourier() {
	o := s.seedOrder(models.PaymentCOD)

	info, err := s.service.Ship(s.ctx, o)
	s.Require().NoError(err)

	s.Equal("Slow Cheap", info.CourierName)
	s.Equal("1", s.fake.serviceCOD[0])
	s.Equal("COD", s.fake.created[0].PaymentMethod)
	// 500 - (80/1000)*500 = 460
	s.Equal(int64(460), s.fake.created[0].OrderItems[0].SellingPrice)
	s.Equal(int64(920), s.fake.created[0].SubTotal)
}

func (s *ShippingSuite) TestShipIsIdempotentOnceAWBAssigned() {
	o := s.seedOrder(models.PaymentOnline)
	info, err := s.service.Ship(s.ctx, o)
	s.Require().NoError(err)

	o.Shipment = info
	again, err := s.service.Ship(s.ctx, o)
	s.Require().NoError(err)
	s.Equal(info, again)
	s.Len(s.fake.created, 1)
}

func (s *ShippingSuite) TestShipRefusesPendingOrder() {
	o := s.seedOrder(models.PaymentOnline)
	o.OrderStatus = models.OrderPending

	_, err := s.service.Ship(s.ctx, o)
	s.ErrorIs(err, errs.ErrInvalidTransition)
	s.Empty(s.fake.created)
}

func (s *ShippingSuite) TestReauthenticatesOnExpiredToken() {
	o := s.seedOrder(models.PaymentOnline)
	s.fake.expireFirst = true

	_, err := s.service.Ship(s.ctx, o)
	s.Require().NoError(err)
	s.Equal(2, s.fake.logins)
}

func (s *ShippingSuite) TestSyncTrackingMarksDelivered() {
	o := s.seedOrder(models.PaymentOnline)
	info, err := s.service.Ship(s.ctx, o)
	s.Require().NoError(err)

	changed, err := s.service.SyncTracking(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, changed)

	stored, err := s.store.Orders.Get(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderDelivered, stored.OrderStatus)
	s.Equal(info.AWBCode, stored.Shipment.AWBCode)
}

func (s *ShippingSuite) TestTrackUnshippedOrderIsNotFound() {
	o := s.seedOrder(models.PaymentOnline)
	_, err := s.service.Track(s.ctx, o)
	s.ErrorIs(err, errs.ErrNotFound)
}

func TestShippingSuite(t *testing.T) {
	suite.Run(t, new(ShippingSuite))
}

func TestFormatOrderDefaults(t *testing.T) {
	o := models.Order{
		ID:        "WX02",
		UserEmail: "ravi.k@example.in",
		Items: []models.OrderItem{
			{ProductID: gocql.TimeUUID(), Name: "Stole", Size: "One Size", Quantity: 1, Price: 299.9},
		},
		DeliveryCharge: 49,
	}

	got := FormatOrder(o, "Primary", time.Now())

	assert.Equal(t, "ravi.k", got.BillingCustomerName)
	assert.Equal(t, "India", got.BillingCountry)
	assert.Equal(t, "Stole", got.OrderItems[0].Name)
	assert.Equal(t, "SKU-"+o.Items[0].ProductID.String(), got.OrderItems[0].SKU)
	assert.Equal(t, int64(299), got.OrderItems[0].SellingPrice)
	assert.Equal(t, 441122, got.OrderItems[0].HSN)
	assert.Equal(t, int64(49), got.ShippingCharges)
	assert.Equal(t, 0.5, got.Weight)
	assert.True(t, got.ShippingIsBilling)
}

func TestFormatOrderRoundsDeliveryCharge(t *testing.T) {
	o := models.Order{ID: "WX03", UserEmail: "asha@example.in", DeliveryCharge: 49.5}
	assert.Equal(t, int64(50), FormatOrder(o, "Primary", time.Now()).ShippingCharges)

	o.DeliveryCharge = 49.49
	assert.Equal(t, int64(49), FormatOrder(o, "Primary", time.Now()).ShippingCharges)
}

func TestPackageWeight(t *testing.T) {
	assert.Equal(t, 0.5, PackageWeight(1))
	assert.Equal(t, 0.6, PackageWeight(2))
	assert.Equal(t, 3.0, PackageWeight(10))
}

func TestChooseCourier(t *testing.T) {
	couriers := []Courier{
		{ID: "1", Name: "A", Rate: "80", EstimatedDays: "3", COD: "1"},
		{ID: "2", Name: "B", Rate: "60", EstimatedDays: "3", COD: "0"},
		{ID: "3", Name: "C", Rate: "90", EstimatedDays: "", COD: "1"},
	}

	got, ok := ChooseCourier(couriers, false)
	require.True(t, ok)
	assert.Equal(t, "B", got.Name)

	got, ok = ChooseCourier(couriers, true)
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)

	_, ok = ChooseCourier(couriers[1:2], true)
	assert.False(t, ok)
}
