package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"wearxture_back_end/internal/auth"
	"wearxture_back_end/internal/cache"
	"wearxture_back_end/internal/catalog"
	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/handlers/admin"
	paymenthandler "wearxture_back_end/internal/handlers/payment"
	"wearxture_back_end/internal/handlers/product"
	"wearxture_back_end/internal/handlers/user"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/orders"
	"wearxture_back_end/internal/payment"
	"wearxture_back_end/internal/repository"
	"wearxture_back_end/internal/support"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

const gatewaySecret = "rzp-test-secret"

// fakeGateway signe comme Razorpay sans appel réseau.
type fakeGateway struct {
	seq atomic.Int64
}

func (g *fakeGateway) Name() string { return "razorpay" }

func (g *fakeGateway) CreateOrder(_ context.Context, req payment.GatewayOrder) (*payment.GatewayOrderResult, error) {
	if req.Amount <= 0 {
		return nil, errors.New("montant nul")
	}
	return &payment.GatewayOrderResult{ID: fmt.Sprintf("order_gw_%d", g.seq.Add(1)), KeyID: "rzp_test"}, nil
}

func (g *fakeGateway) VerifyPayment(_ context.Context, gatewayOrderID, paymentID, signature string) error {
	if !payment.VerifySignature(gatewaySecret, gatewayOrderID, paymentID, signature) {
		return errs.Validation("signature de paiement invalide")
	}
	return nil
}

type RoutesSuite struct {
	suite.Suite
	redis  *miniredis.Miniredis
	store  *repository.MemoryStore
	router *gin.Engine
	admin  string
}

func (s *RoutesSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.redis = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	s.T().Cleanup(func() { client.Close() })
	kv := cache.NewStore(client)

	s.store = repository.NewMemoryStore()
	catalogSvc := catalog.NewService(catalog.Deps{
		Products:   s.store.Products,
		Categories: s.store.Categories,
		Reels:      s.store.Reels,
		Wishlist:   s.store.Wishlist,
	})
	orderSvc := orders.NewService(orders.Deps{
		Orders:        s.store.Orders,
		Products:      s.store.Products,
		Payments:      payment.NewStarter(&fakeGateway{}, "INR"),
		Carts:         cache.NewCartStore(kv),
		Pricing:       orders.Pricing{DeliveryCharge: 50, FreeDeliveryThreshold: 999, CODFee: 80},
		OrderIDPrefix: "WX",
	})
	bridge := payment.NewBridge(payment.BridgeDeps{
		Gateway:   &fakeGateway{},
		Orders:    s.store.Orders,
		Confirmer: orderSvc,
	})
	authSvc := auth.NewService(s.store.Users,
		auth.NewTokenIssuer("customer-secret", auth.CustomerAudience, time.Hour, 0),
		auth.NewTokenIssuer("admin-secret", auth.AdminAudience, time.Hour, 0))
	s.Require().NoError(authSvc.EnsureAdmin(context.Background(), "admin@wearxture.com", "admin-pass-1"))
	supportSvc := support.NewService(s.store.Support)

	s.router = New(Deps{
		Catalog: product.NewHandler(catalogSvc),
		User: user.NewHandler(user.Deps{
			Auth:    authSvc,
			Catalog: catalogSvc,
			Orders:  orderSvc,
			Support: supportSvc,
			Carts:   cache.NewCartStore(kv),
		}),
		Payment: paymenthandler.NewHandler(bridge, nil),
		Admin: admin.NewHandler(admin.Deps{
			Auth:    authSvc,
			Catalog: catalogSvc,
			Orders:  orderSvc,
			Support: supportSvc,
		}),
		CustomerTokens: authSvc.CustomerTokens(),
		AdminTokens:    authSvc.AdminTokens(),
		Cache:          kv,
		AllowedOrigins: []string{"http://localhost:3000"},
		Health: map[string]HealthCheck{
			"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
		},
	})

	var login struct {
		Token string `json:"token"`
	}
	s.do(http.MethodPost, "/admin/login", "", gin.H{"email": "admin@wearxture.com", "password": "admin-pass-1"}, http.StatusOK, &login)
	s.admin = login.Token
}

func (s *RoutesSuite) do(method, path, token string, body any, want int, out any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(want, rec.Code, "%s %s: %s", method, path, rec.Body.String())
	if out != nil {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func (s *RoutesSuite) register(email string) string {
	var session struct {
		Token string `json:"token"`
	}
	rec := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Asha", "email": email, "password": "password123"}, http.StatusCreated, &session)
	s.Contains(rec.Header().Get("Set-Cookie"), "access_token=")
	return session.Token
}

func (s *RoutesSuite) createProduct(name string, price float64, stock int) models.Product {
	var category models.Category
	s.do(http.MethodPost, "/admin/api/categories", s.admin, gin.H{"name": "Kurtas", "filter": "women"}, http.StatusCreated, &category)

	var p models.Product
	s.do(http.MethodPost, "/admin/api/products", s.admin, gin.H{
		"name": name, "price": price, "category_id": category.ID.String(), "inventory_count": stock,
	}, http.StatusCreated, &p)
	return p
}

func checkoutBody(p models.Product, qty int, method models.PaymentMethod) gin.H {
	return gin.H{
		"items":          []gin.H{{"product_id": p.ID.String(), "quantity": qty, "size": "M"}},
		"phone":          "9876543210",
		"payment_method": method,
		"delivery_address": gin.H{
			"name": "Asha", "address_line1": "12 MG Road", "city": "Bengaluru", "state": "KA", "pincode": "560002",
		},
	}
}

func (s *RoutesSuite) TestHealth() {
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	s.do(http.MethodGet, "/health", "", nil, http.StatusOK, &body)
	s.Equal("ok", body.Status)
	s.Equal("ok", body.Checks["redis"])

	s.redis.Close()
	s.do(http.MethodGet, "/health", "", nil, http.StatusServiceUnavailable, &body)
	s.Equal("degraded", body.Status)
}

func (s *RoutesSuite) TestPublicCatalog() {
	p := s.createProduct("Linen Kurta", 1299, 5)

	var list struct {
		Products []models.Product `json:"products"`
		Count    int              `json:"count"`
	}
	s.do(http.MethodGet, "/api/products", "", nil, http.StatusOK, &list)
	s.Equal(1, list.Count)
	s.Equal("women", list.Products[0].Filter)

	s.do(http.MethodGet, "/api/products/search?q=linen", "", nil, http.StatusOK, &list)
	s.Equal(1, list.Count)

	s.do(http.MethodGet, "/api/products/"+p.ID.String(), "", nil, http.StatusOK, nil)
	s.do(http.MethodGet, "/api/products/not-a-uuid", "", nil, http.StatusBadRequest, nil)
}

func (s *RoutesSuite) TestAdminAPIRejectsCustomerTokens() {
	token := s.register("asha@example.in")
	s.do(http.MethodGet, "/admin/api/dashboard", token, nil, http.StatusUnauthorized, nil)
	s.do(http.MethodGet, "/admin/api/dashboard", "", nil, http.StatusUnauthorized, nil)
	s.do(http.MethodGet, "/api/orders", "", nil, http.StatusUnauthorized, nil)
}

func (s *RoutesSuite) TestOnlineCheckoutAndPaymentVerification() {
	p := s.createProduct("Linen Kurta", 500, 5)
	token := s.register("asha@example.in")

	var created orders.CheckoutResult
	s.do(http.MethodPost, "/api/checkout", token, checkoutBody(p, 2, models.PaymentOnline), http.StatusCreated, &created)
	s.Require().NotNil(created.Payment)
	s.Equal(models.OrderPending, created.Order.OrderStatus)
	s.Equal(1000.0, created.Order.TotalAmount)
	s.Equal(0.0, created.Order.DeliveryCharge)
	s.Equal(int64(100000), created.Payment.Amount)

	stored, err := s.store.Products.Get(context.Background(), p.ID)
	s.Require().NoError(err)
	s.Equal(3, stored.InventoryCount)

	verify := gin.H{
		"order_id":            created.Order.ID,
		"razorpay_order_id":   created.Payment.GatewayOrderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payment.Sign(gatewaySecret, created.Payment.GatewayOrderID, "pay_1"),
	}
	var result struct {
		Verified bool         `json:"verified"`
		Replay   bool         `json:"replay"`
		Order    models.Order `json:"order"`
	}
	s.do(http.MethodPost, "/api/payments/verify", "", verify, http.StatusOK, &result)
	s.True(result.Verified)
	s.False(result.Replay)
	s.Equal(models.OrderConfirmed, result.Order.OrderStatus)
	s.Equal(models.PaymentCompleted, result.Order.PaymentStatus)

	s.do(http.MethodPost, "/api/payments/verify", "", verify, http.StatusOK, &result)
	s.True(result.Replay)

	var stats struct {
		Revenue float64 `json:"revenue"`
	}
	s.do(http.MethodGet, "/admin/api/dashboard", s.admin, nil, http.StatusOK, &stats)
	s.Equal(1000.0, stats.Revenue)
}

func (s *RoutesSuite) TestForgedSignatureIsRejected() {
	p := s.createProduct("Linen Kurta", 500, 5)
	token := s.register("asha@example.in")

	var created orders.CheckoutResult
	s.do(http.MethodPost, "/api/checkout", token, checkoutBody(p, 1, models.PaymentOnline), http.StatusCreated, &created)

	s.do(http.MethodPost, "/api/payments/verify", "", gin.H{
		"order_id":            created.Order.ID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "forged",
	}, http.StatusBadRequest, nil)

	o, err := s.store.Orders.Get(context.Background(), created.Order.ID)
	s.Require().NoError(err)
	s.Equal(models.PaymentPending, o.PaymentStatus)
}

func (s *RoutesSuite) TestCheckoutReportsShortages() {
	p := s.createProduct("Linen Kurta", 500, 1)
	token := s.register("asha@example.in")

	var body struct {
		Shortages []struct {
			Available int `json:"available"`
		} `json:"shortages"`
	}
	s.do(http.MethodPost, "/api/checkout", token, checkoutBody(p, 3, models.PaymentCOD), http.StatusConflict, &body)
	s.Require().Len(body.Shortages, 1)
	s.Equal(1, body.Shortages[0].Available)

	stored, err := s.store.Products.Get(context.Background(), p.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.InventoryCount)
}

func (s *RoutesSuite) TestCartCheckoutClearsCart() {
	p := s.createProduct("Linen Kurta", 500, 5)
	token := s.register("asha@example.in")

	s.do(http.MethodPut, "/api/cart", token, gin.H{"items": []gin.H{
		{"product_id": p.ID.String(), "quantity": 1},
		{"product_id": p.ID.String(), "quantity": 1},
	}}, http.StatusOK, nil)

	body := checkoutBody(p, 0, models.PaymentCOD)
	delete(body, "items")
	var created orders.CheckoutResult
	s.do(http.MethodPost, "/api/checkout", token, body, http.StatusCreated, &created)
	s.Equal(2, created.Order.TotalUnits())
	s.Equal(80.0, created.Order.CODFee)
	s.Equal(int64(8000), created.Payment.Amount)

	var cart models.Cart
	s.do(http.MethodGet, "/api/cart", token, nil, http.StatusOK, &cart)
	s.Empty(cart.Items)

	var list struct {
		Count int `json:"count"`
	}
	s.do(http.MethodGet, "/api/orders", token, nil, http.StatusOK, &list)
	s.Equal(1, list.Count)

	other := s.register("ravi@example.in")
	s.do(http.MethodGet, "/api/orders/"+created.Order.ID, other, nil, http.StatusNotFound, nil)
}

func (s *RoutesSuite) TestCustomerCancelRestoresStock() {
	p := s.createProduct("Linen Kurta", 500, 5)
	token := s.register("asha@example.in")

	var created orders.CheckoutResult
	s.do(http.MethodPost, "/api/checkout", token, checkoutBody(p, 2, models.PaymentCOD), http.StatusCreated, &created)

	var cancelled models.Order
	s.do(http.MethodPost, "/api/orders/"+created.Order.ID+"/cancel", token, nil, http.StatusOK, &cancelled)
	s.Equal(models.OrderCancelled, cancelled.OrderStatus)

	stored, err := s.store.Products.Get(context.Background(), p.ID)
	s.Require().NoError(err)
	s.Equal(5, stored.InventoryCount)

	s.do(http.MethodPut, "/admin/api/orders/"+created.Order.ID+"/status", s.admin, gin.H{"status": "confirmed"}, http.StatusConflict, nil)
}

func (s *RoutesSuite) TestSupportQueryRoundTrip() {
	token := s.register("asha@example.in")

	var q models.SupportQuery
	s.do(http.MethodPost, "/api/support", token, gin.H{"subject": "Size exchange", "message": "Need an L"}, http.StatusCreated, &q)
	s.Equal(models.SupportOpen, q.Status)

	var list struct {
		Count int `json:"count"`
	}
	s.do(http.MethodGet, "/admin/api/support?email=ASHA@example.in", s.admin, nil, http.StatusOK, &list)
	s.Equal(1, list.Count)

	var updated models.SupportQuery
	s.do(http.MethodPut, "/admin/api/support/"+q.ID.String(), s.admin, gin.H{"status": "resolved"}, http.StatusOK, &updated)
	s.NotNil(updated.ResolvedAt)
}

func (s *RoutesSuite) TestWishlist() {
	p := s.createProduct("Linen Kurta", 500, 5)
	token := s.register("asha@example.in")

	s.do(http.MethodPost, "/api/wishlist/"+p.ID.String(), token, nil, http.StatusOK, nil)
	var list struct {
		Products []models.Product `json:"products"`
	}
	s.do(http.MethodGet, "/api/wishlist", token, nil, http.StatusOK, &list)
	s.Require().Len(list.Products, 1)
	s.Equal(p.ID, list.Products[0].ID)

	s.do(http.MethodDelete, "/api/wishlist/"+p.ID.String(), token, nil, http.StatusOK, nil)
	s.do(http.MethodGet, "/api/wishlist", token, nil, http.StatusOK, &list)
	s.Empty(list.Products)
}

func (s *RoutesSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRoutesSuite(t *testing.T) {
	suite.Run(t, new(RoutesSuite))
}
