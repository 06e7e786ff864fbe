package orders

import (
	"context"
	"fmt"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/rs/zerolog/log"
)

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.Get(ctx, id)
}

// GetForCustomer masque les commandes des autres clients derrière un 404.
func (s *Service) GetForCustomer(ctx context.Context, email, id string) (*models.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sameEmail(o.UserEmail, email) {
		return nil, fmt.Errorf("commande %s: %w", id, errs.ErrNotFound)
	}
	return o, nil
}

func (s *Service) ListForCustomer(ctx context.Context, email string) ([]models.Order, error) {
	return nonNil(s.orders.ListByEmail(ctx, email))
}

// List retourne toutes les commandes, ou celles d'un statut si status est non vide.
func (s *Service) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status == "" {
		return nonNil(s.orders.List(ctx))
	}
	if !status.Valid() {
		return nil, errs.Validation("statut inconnu: %q", status)
	}
	return nonNil(s.orders.ListByStatus(ctx, status))
}

// UpdateStatus applique une transition admin. L'annulation passe par Cancel.
func (s *Service) UpdateStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, errs.Validation("statut inconnu: %q", to)
	}
	if to == models.OrderCancelled {
		return s.Cancel(ctx, id)
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OrderStatus == to {
		return o, nil
	}
	if err := s.transition(ctx, o, to); err != nil {
		return nil, err
	}
	s.afterStatusChange(ctx, o, models.EventOrderStatusChanged)
	return o, nil
}

// Cancel restaure le stock une seule fois: seule la transition gagnante du
// compare-and-set déclenche la restauration.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, o, models.OrderCancelled); err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		if _, err := s.products.RestoreInventory(ctx, it.ProductID, it.Quantity); err != nil {
			log.Error().Err(err).Str("order_id", o.ID).Str("product_id", it.ProductID.String()).
				Int("quantity", it.Quantity).Msg("❌ Restauration du stock échouée")
		}
	}
	log.Info().Str("order_id", o.ID).Msg("🚫 Commande annulée, stock restauré")
	s.afterStatusChange(ctx, o, models.EventOrderCancelled)
	return o, nil
}

// CancelForCustomer n'autorise l'annulation qu'avant l'expédition.
func (s *Service) CancelForCustomer(ctx context.Context, email, id string) (*models.Order, error) {
	o, err := s.GetForCustomer(ctx, email, id)
	if err != nil {
		return nil, err
	}
	switch o.OrderStatus {
	case models.OrderPending, models.OrderConfirmed, models.OrderProcessing:
	default:
		return nil, fmt.Errorf("commande %s au statut %s: %w", id, o.OrderStatus, errs.ErrInvalidTransition)
	}
	return s.Cancel(ctx, id)
}

// MarkPaid enregistre un paiement vérifié et confirme la commande.
// changed vaut false si le paiement était déjà enregistré.
func (s *Service) MarkPaid(ctx context.Context, id string, p models.PaymentUpdate) (*models.Order, bool, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if o.PaymentStatus.Paid() {
		return o, false, nil
	}
	if o.OrderStatus == models.OrderCancelled {
		return nil, false, fmt.Errorf("commande %s annulée: %w", id, errs.ErrInvalidTransition)
	}

	// Confirmer avant d'écrire le paiement: une commande annulée reste impayée.
	if o.OrderStatus == models.OrderPending {
		applied, err := s.orders.TransitionStatus(ctx, id, models.OrderPending, models.OrderConfirmed)
		if err != nil {
			return nil, false, err
		}
		if !applied {
			current, err := s.orders.Get(ctx, id)
			if err != nil {
				return nil, false, err
			}
			if current.OrderStatus == models.OrderCancelled {
				log.Warn().Str("order_id", id).Str("payment_id", p.GatewayPaymentID).Msg("⚠️ Paiement reçu pour une commande annulée")
				return nil, false, fmt.Errorf("commande %s annulée: %w", id, errs.ErrInvalidTransition)
			}
			return current, false, nil
		}
		o.OrderStatus = models.OrderConfirmed
	}

	if err := s.orders.UpdatePayment(ctx, id, p); err != nil {
		return nil, false, fmt.Errorf("mise à jour du paiement %s: %w", id, err)
	}
	o.PaymentStatus = p.Status
	if p.GatewayPaymentID != "" {
		o.GatewayPaymentID = p.GatewayPaymentID
	}
	o.UpdatedAt = time.Now()
	log.Info().Str("order_id", o.ID).Str("payment_status", string(o.PaymentStatus)).Msg("✅ Paiement enregistré")
	s.publish(ctx, models.EventPaymentVerified, o)
	return o, true, nil
}

// ExpireUnpaid annule les commandes dont le paiement en ligne n'est jamais arrivé.
func (s *Service) ExpireUnpaid(ctx context.Context, ttl time.Duration) (int, error) {
	pending, err := s.orders.ListByStatus(ctx, models.OrderPending)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-ttl)
	expired := 0
	for _, o := range pending {
		if o.AmountDueOnline() <= 0 || o.PaymentStatus.Paid() || o.CreatedAt.After(cutoff) {
			continue
		}
		if _, err := s.Cancel(ctx, o.ID); err != nil {
			log.Warn().Err(err).Str("order_id", o.ID).Msg("⚠️ Expiration de la commande impossible")
			continue
		}
		expired++
	}
	if expired > 0 {
		log.Info().Int("count", expired).Msg("⏱️ Commandes impayées expirées")
	}
	return expired, nil
}

func (s *Service) transition(ctx context.Context, o *models.Order, to models.OrderStatus) error {
	if !o.OrderStatus.CanTransition(to) {
		return fmt.Errorf("commande %s: %s → %s: %w", o.ID, o.OrderStatus, to, errs.ErrInvalidTransition)
	}
	applied, err := s.orders.TransitionStatus(ctx, o.ID, o.OrderStatus, to)
	if err != nil {
		return fmt.Errorf("transition de la commande %s: %w", o.ID, err)
	}
	if !applied {
		return fmt.Errorf("commande %s modifiée en parallèle: %w", o.ID, errs.ErrInvalidTransition)
	}
	o.OrderStatus = to
	o.UpdatedAt = time.Now()
	return nil
}

func (s *Service) afterStatusChange(ctx context.Context, o *models.Order, eventType string) {
	if s.notifier != nil {
		s.notifier.StatusChanged(ctx, *o)
	}
	s.publish(ctx, eventType, o)
}

func nonNil(orders []models.Order, err error) ([]models.Order, error) {
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}
