package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/repository"

	"github.com/rs/zerolog/log"
)

const trackingBaseURL = "https://shiprocket.co/tracking/"

// TrackingURL construit le lien public de suivi d'un AWB.
func TrackingURL(awb string) string {
	return trackingBaseURL + awb
}

// StatusUpdater fait avancer le statut d'une commande.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error)
}

type Service struct {
	client *Client
	orders repository.OrderRepository
	status StatusUpdater
	now    func() time.Time
}

// NewService: status peut être nil, les statuts ne sont alors pas modifiés.
func NewService(client *Client, orders repository.OrderRepository, status StatusUpdater) *Service {
	return &Service{client: client, orders: orders, status: status, now: time.Now}
}

// Ship transmet la commande à Shiprocket, choisit un transporteur, attribue
// l'AWB puis demande l'enlèvement. Une commande déjà expédiée est renvoyée telle quelle.
func (s *Service) Ship(ctx context.Context, o models.Order) (models.ShipmentInfo, error) {
	info := o.Shipment
	if info.AWBCode != "" {
		return info, nil
	}
	if o.OrderStatus == models.OrderCancelled || o.OrderStatus == models.OrderPending {
		return info, fmt.Errorf("commande %s au statut %s: %w", o.ID, o.OrderStatus, errs.ErrInvalidTransition)
	}

	pickup, err := s.client.Pickup(ctx)
	if err != nil {
		return info, err
	}

	if info.ShipmentID == 0 {
		created, err := s.client.CreateOrder(ctx, FormatOrder(o, pickup.Name, s.now()))
		if err != nil {
			return info, err
		}
		info.ProviderOrderID = created.OrderID.Int64()
		info.ShipmentID = created.ShipmentID.Int64()
		if err := s.orders.UpdateShipment(ctx, o.ID, info); err != nil {
			return info, err
		}
		log.Info().Str("order_id", o.ID).Int64("shipment_id", info.ShipmentID).
			Msg("✅ Commande transmise à Shiprocket")
		s.advance(ctx, o, models.OrderProcessing)
	}
	if info.ShipmentID == 0 {
		return info, errs.Upstream("shiprocket", errors.New("shipment_id absent"))
	}

	cod := o.PaymentMethod == models.PaymentCOD
	couriers, err := s.client.Couriers(ctx, string(pickup.PinCode), o.DeliveryAddress.PostalCode,
		PackageWeight(o.TotalUnits()), cod)
	if err != nil {
		return info, err
	}
	courier, ok := ChooseCourier(couriers, cod)
	if !ok {
		return info, errs.Upstream("shiprocket", fmt.Errorf("aucun transporteur pour %s", o.DeliveryAddress.PostalCode))
	}

	awb, err := s.client.AssignAWB(ctx, info.ShipmentID, string(courier.ID))
	if err != nil {
		return info, err
	}
	info.AWBCode = awb
	info.CourierName = courier.Name
	info.TrackingURL = TrackingURL(awb)
	if err := s.orders.UpdateShipment(ctx, o.ID, info); err != nil {
		return info, err
	}
	log.Info().Str("order_id", o.ID).Str("awb", awb).Str("courier", courier.Name).Msg("✅ AWB attribué")

	if err := s.client.GeneratePickup(ctx, info.ShipmentID); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("⚠️ Demande d'enlèvement échouée")
	}
	return info, nil
}

// ShipBestEffort journalise l'échec sans le propager.
func (s *Service) ShipBestEffort(ctx context.Context, o models.Order) {
	if _, err := s.Ship(ctx, o); err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("❌ Expédition automatique échouée")
	}
}

// Track renvoie le suivi transporteur d'une commande expédiée.
func (s *Service) Track(ctx context.Context, o models.Order) (*Tracking, error) {
	if o.Shipment.ShipmentID == 0 {
		return nil, fmt.Errorf("commande %s non expédiée: %w", o.ID, errs.ErrNotFound)
	}
	t, err := s.client.Track(ctx, o.Shipment.ShipmentID)
	if err != nil {
		return nil, err
	}
	if t.AWBCode == "" {
		t.AWBCode = o.Shipment.AWBCode
	}
	if t.TrackURL == "" && t.AWBCode != "" {
		t.TrackURL = TrackingURL(t.AWBCode)
	}
	return t, nil
}

// SyncTracking interroge le transporteur pour les commandes en cours
// d'acheminement et retourne le nombre de statuts modifiés.
func (s *Service) SyncTracking(ctx context.Context) (int, error) {
	changed := 0
	for _, status := range []models.OrderStatus{models.OrderProcessing, models.OrderDispatched} {
		orders, err := s.orders.ListByStatus(ctx, status)
		if err != nil {
			return changed, err
		}
		for _, o := range orders {
			if o.Shipment.ShipmentID == 0 || o.Shipment.AWBCode == "" {
				continue
			}
			t, err := s.Track(ctx, o)
			if err != nil {
				log.Warn().Err(err).Str("order_id", o.ID).Msg("⚠️ Suivi indisponible")
				continue
			}
			if next, ok := nextStatus(o.OrderStatus, *t); ok && s.advance(ctx, o, next) {
				changed++
			}
		}
	}
	return changed, nil
}

func nextStatus(current models.OrderStatus, t Tracking) (models.OrderStatus, bool) {
	if t.Delivered() {
		return models.OrderDelivered, current != models.OrderDelivered
	}
	if current == models.OrderProcessing && inTransit(t.CurrentStatus) {
		return models.OrderDispatched, true
	}
	return "", false
}

func inTransit(status string) bool {
	s := strings.ToLower(status)
	for _, marker := range []string{"picked", "transit", "shipped", "out for delivery", "reached"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func (s *Service) advance(ctx context.Context, o models.Order, to models.OrderStatus) bool {
	if s.status == nil || !o.OrderStatus.CanTransition(to) {
		return false
	}
	if _, err := s.status.UpdateStatus(ctx, o.ID, to); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Str("to", string(to)).Msg("⚠️ Statut non mis à jour")
		return false
	}
	return true
}

// ChooseCourier: le moins cher acceptant le COD pour une commande COD,
// le plus rapide (puis le moins cher) sinon.
func ChooseCourier(couriers []Courier, cod bool) (Courier, bool) {
	var (
		best  Courier
		found bool
	)
	for _, c := range couriers {
		if cod && c.COD.Int64() != 1 {
			continue
		}
		if !found || better(c, best, cod) {
			best, found = c, true
		}
	}
	return best, found
}

func better(c, best Courier, cod bool) bool {
	if cod {
		return c.Rate.Float64() < best.Rate.Float64()
	}
	cd, bd := days(c), days(best)
	if cd != bd {
		return cd < bd
	}
	return c.Rate.Float64() < best.Rate.Float64()
}

// days: un délai inconnu passe après tous les délais annoncés.
func days(c Courier) int64 {
	if d := c.EstimatedDays.Int64(); d > 0 {
		return d
	}
	return 1 << 30
}
