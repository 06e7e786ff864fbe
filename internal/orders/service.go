package orders

import (
	"context"
	"strings"

	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/repository"
	"wearxture_back_end/internal/services"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// PaymentStarter crée la commande côté passerelle pour le montant dû en ligne.
type PaymentStarter interface {
	StartPayment(ctx context.Context, o *models.Order) (*models.PaymentSession, error)
}

// StatusNotifier prévient le client d'un changement de statut.
type StatusNotifier interface {
	StatusChanged(ctx context.Context, o models.Order)
}

// Carts donne accès au panier enregistré du client.
type Carts interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// Deps: Payments, Notifier, Events et Carts sont optionnels.
type Deps struct {
	Orders        repository.OrderRepository
	Products      repository.ProductRepository
	Payments      PaymentStarter
	Notifier      StatusNotifier
	Events        services.Publisher
	Carts         Carts
	Pricing       Pricing
	OrderIDPrefix string
}

type Service struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	payments PaymentStarter
	notifier StatusNotifier
	events   services.Publisher
	carts    Carts
	pricing  Pricing
	prefix   string
}

func NewService(d Deps) *Service {
	events := d.Events
	if events == nil {
		events = services.Noop{}
	}
	return &Service{
		orders:   d.Orders,
		products: d.Products,
		payments: d.Payments,
		notifier: d.Notifier,
		events:   events,
		carts:    d.Carts,
		pricing:  d.Pricing,
		prefix:   d.OrderIDPrefix,
	}
}

// Customer identifie le client authentifié.
type Customer struct {
	UserID string
	Email  string
}

// NewOrderID génère un identifiant triable par date.
func (s *Service) NewOrderID() string {
	return s.prefix + ulid.Make().String()
}

func (s *Service) publish(ctx context.Context, eventType string, o *models.Order) {
	err := s.events.Publish(ctx, models.OrderEvent{
		Type:      eventType,
		OrderID:   o.ID,
		UserEmail: o.UserEmail,
		Status:    o.OrderStatus,
		Payment:   o.PaymentStatus,
		At:        o.UpdatedAt,
	})
	if err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Str("type", eventType).Msg("⚠️ Événement non publié")
	}
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
