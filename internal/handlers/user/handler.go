package user

import (
	"context"

	"wearxture_back_end/internal/auth"
	"wearxture_back_end/internal/cache"
	"wearxture_back_end/internal/catalog"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/orders"
	"wearxture_back_end/internal/shipping"
	"wearxture_back_end/internal/support"

	"github.com/redis/go-redis/v9"
)

// Invoices produit la facture PDF d'une commande.
type Invoices interface {
	InvoicePDF(ctx context.Context, o models.Order) ([]byte, error)
}

// Welcomer accueille un nouveau compte.
type Welcomer interface {
	Welcome(ctx context.Context, u models.User)
}

// Tracker interroge le suivi du transporteur.
type Tracker interface {
	Track(ctx context.Context, o models.Order) (*shipping.Tracking, error)
}

// OrderFeed diffuse les événements de commande d'un client.
type OrderFeed interface {
	Subscribe(ctx context.Context, email string) *redis.PubSub
}

// Deps: Google, Carts, Invoices, Welcome, Tracker et Feed sont optionnels.
type Deps struct {
	Auth          *auth.Service
	Google        *auth.OAuthProvider
	OAuthWeb      bool
	Catalog       *catalog.Service
	Orders        *orders.Service
	Support       *support.Service
	Carts         *cache.CartStore
	Invoices      Invoices
	Welcome       Welcomer
	Tracker       Tracker
	Feed          OrderFeed
	SecureCookies bool
	// FrontendURL reçoit le client après le callback OAuth web.
	FrontendURL    string
	AllowedOrigins []string
}

type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	return &Handler{Deps: d}
}
