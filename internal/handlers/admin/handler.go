package admin

import (
	"context"

	"wearxture_back_end/internal/auth"
	"wearxture_back_end/internal/catalog"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/orders"
	"wearxture_back_end/internal/shipping"
	"wearxture_back_end/internal/support"
)

// Shipper soumet une commande au transporteur et interroge son suivi.
type Shipper interface {
	Ship(ctx context.Context, o models.Order) (models.ShipmentInfo, error)
	Track(ctx context.Context, o models.Order) (*shipping.Tracking, error)
}

// Invoicer renvoie la facture d'une commande par email.
type Invoicer interface {
	SendInvoice(ctx context.Context, o models.Order) error
}

// Deps: Shipper et Invoicer sont optionnels.
type Deps struct {
	Auth          *auth.Service
	Catalog       *catalog.Service
	Orders        *orders.Service
	Support       *support.Service
	Shipper       Shipper
	Invoicer      Invoicer
	SecureCookies bool
}

type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	return &Handler{Deps: d}
}
