package routes

import (
	"context"
	"net/http"
	"time"

	"wearxture_back_end/internal/auth"
	"wearxture_back_end/internal/cache"
	"wearxture_back_end/internal/handlers/admin"
	paymenthandler "wearxture_back_end/internal/handlers/payment"
	"wearxture_back_end/internal/handlers/product"
	"wearxture_back_end/internal/handlers/user"
	"wearxture_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HealthCheck vérifie une dépendance pour GET /health.
type HealthCheck func(ctx context.Context) error

// Deps: Cache est optionnel; sans Redis les limites de débit sont désactivées.
type Deps struct {
	Catalog        *product.Handler
	User           *user.Handler
	Payment        *paymenthandler.Handler
	Admin          *admin.Handler
	CustomerTokens *auth.TokenIssuer
	AdminTokens    *auth.TokenIssuer
	Cache          *cache.Store
	AllowedOrigins []string
	APIRateLimit   int64
	Health         map[string]HealthCheck
}

// New construit le routeur complet.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), cors.New(corsConfig(d.AllowedOrigins)))
	r.MaxMultipartMemory = 32 << 20

	r.GET("/health", health(d.Health))

	api := r.Group("/api")
	if d.APIRateLimit > 0 {
		api.Use(middleware.APIRateLimit(d.Cache, d.APIRateLimit))
	}
	d.Catalog.Register(api)

	registerAuth(api, d)
	registerCustomer(api, d)

	payments := api.Group("/payments")
	payments.POST("/verify", d.Payment.Verify)
	payments.POST("/stripe/webhook", d.Payment.StripeWebhook)

	registerAdmin(r, d)
	return r
}

func registerAuth(api *gin.RouterGroup, d Deps) {
	u := d.User
	a := api.Group("/auth")
	a.POST("/register", u.Register)
	a.POST("/login", middleware.LoginRateLimit(d.Cache), u.Login)
	a.POST("/logout", u.Logout)
	a.GET("/oauth/:provider", u.BeginOAuth)
	a.GET("/oauth/:provider/callback", u.OAuthCallback)
	a.POST("/google/token", u.GoogleToken)

	me := a.Group("", middleware.CustomerAuth(d.CustomerTokens))
	me.GET("/me", u.Me)
	me.PUT("/profile", u.UpdateProfile)
}

func registerCustomer(api *gin.RouterGroup, d Deps) {
	u := d.User
	c := api.Group("", middleware.CustomerAuth(d.CustomerTokens))

	c.GET("/cart", u.GetCart)
	c.PUT("/cart", u.ReplaceCart)
	c.DELETE("/cart", u.ClearCart)

	c.POST("/checkout", u.Checkout)

	c.GET("/orders", u.ListOrders)
	c.GET("/orders/ws", u.OrderUpdates)
	c.GET("/orders/:id", u.GetOrder)
	c.POST("/orders/:id/cancel", u.CancelOrder)
	c.GET("/orders/:id/invoice", u.Invoice)
	c.GET("/orders/:id/tracking", u.Tracking)

	c.GET("/support", u.ListSupportQueries)
	c.POST("/support", u.CreateSupportQuery)

	c.GET("/wishlist", u.GetWishlist)
	c.POST("/wishlist", u.SyncWishlist)
	c.POST("/wishlist/:product_id", u.AddToWishlist)
	c.DELETE("/wishlist/:product_id", u.RemoveFromWishlist)
}

func registerAdmin(r *gin.Engine, d Deps) {
	h := d.Admin
	root := r.Group("/admin")
	root.POST("/login", middleware.LoginRateLimit(d.Cache), h.Login)
	root.POST("/logout", h.Logout)

	a := root.Group("/api", middleware.AdminAuth(d.AdminTokens))
	a.GET("/dashboard", h.Dashboard)

	products := a.Group("/products")
	products.GET("", h.ListProducts)
	products.POST("", middleware.AuditAction("product.create"), h.CreateProduct)
	products.GET("/:id", h.GetProduct)
	products.PUT("/:id", middleware.AuditPriceChanges(h.ProductPrice), h.UpdateProduct)
	products.DELETE("/:id", middleware.AuditAction("product.delete"), h.DeleteProduct)
	products.POST("/:id/images", h.UploadProductImages)
	products.PUT("/:id/inventory", middleware.AuditAction("product.inventory"), h.SetInventory)

	categories := a.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.POST("", h.CreateCategory)
	categories.GET("/:id", h.GetCategory)
	categories.PUT("/:id", h.UpdateCategory)
	categories.DELETE("/:id", middleware.AuditAction("category.delete"), h.DeleteCategory)
	categories.POST("/:id/image", h.UploadCategoryImage)
	categories.POST("/:id/cover", h.UploadCategoryCover)

	reels := a.Group("/reels")
	reels.GET("", h.ListReels)
	reels.POST("", h.CreateReel)
	reels.GET("/:id", h.GetReel)
	reels.PUT("/:id", h.UpdateReel)
	reels.DELETE("/:id", h.DeleteReel)
	reels.POST("/:id/video", h.UploadReelVideo)

	orders := a.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id/status", middleware.AuditAction("order.status"), h.UpdateOrderStatus)
	orders.POST("/:id/ship", middleware.AuditAction("order.ship"), h.ShipOrder)
	orders.POST("/:id/invoice", h.ResendInvoice)
	orders.GET("/:id/tracking", h.OrderTracking)

	support := a.Group("/support")
	support.GET("", h.ListSupportQueries)
	support.GET("/:id", h.GetSupportQuery)
	support.PUT("/:id", h.UpdateSupportQuery)

	users := a.Group("/users")
	users.GET("", h.ListUsers)
	users.PUT("/:id/active", middleware.AuditAction("user.active"), h.SetUserActive)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
