package orders

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"wearxture_back_end/internal/cache"
	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
)

var pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// CheckoutResult contient la commande créée et, si un paiement en ligne est
// attendu, la session de paiement.
type CheckoutResult struct {
	Order   *models.Order          `json:"order"`
	Payment *models.PaymentSession `json:"payment,omitempty"`
}

// Checkout vérifie tout le stock, ouvre le paiement, enregistre la commande
// puis déduit le stock ligne par ligne. Un échec de déduction restaure les
// lignes déjà déduites et supprime la commande.
func (s *Service) Checkout(ctx context.Context, c Customer, req models.CheckoutRequest) (*CheckoutResult, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	lines := req.Items
	if len(lines) == 0 && s.carts != nil && c.UserID != "" {
		cart, err := s.carts.Get(ctx, c.UserID)
		if err != nil {
			return nil, fmt.Errorf("lecture du panier: %w", err)
		}
		lines = cart.Items
	}
	lines = cache.MergeItems(lines)
	if len(lines) == 0 {
		return nil, errs.Validation("le panier est vide")
	}

	items, err := s.snapshot(ctx, lines)
	if err != nil {
		return nil, err
	}

	totals := s.pricing.Compute(items, req.PaymentMethod)
	now := time.Now()
	order := &models.Order{
		ID:              s.NewOrderID(),
		UserEmail:       strings.ToLower(strings.TrimSpace(c.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		DeliveryAddress: req.DeliveryAddress,
		Items:           items,
		Subtotal:        totals.Subtotal,
		DeliveryCharge:  totals.DeliveryCharge,
		CODFee:          totals.CODFee,
		Tax:             totals.Tax,
		TotalAmount:     totals.Total,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var session *models.PaymentSession
	if order.AmountDueOnline() > 0 && s.payments != nil {
		session, err = s.payments.StartPayment(ctx, order)
		if err != nil {
			return nil, fmt.Errorf("ouverture du paiement: %w", err)
		}
		order.GatewayOrderID = session.GatewayOrderID
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("enregistrement de la commande: %w", err)
	}
	if err := s.deduct(ctx, order); err != nil {
		return nil, err
	}

	s.clearCart(ctx, c.UserID)

	log.Info().Str("order_id", order.ID).Str("email", order.UserEmail).
		Float64("total", order.TotalAmount).Str("payment_method", string(order.PaymentMethod)).
		Msg("✅ Commande créée")
	s.publish(ctx, models.EventOrderCreated, order)
	return &CheckoutResult{Order: order, Payment: session}, nil
}

// snapshot relit chaque produit et collecte toutes les ruptures avant d'échouer.
func (s *Service) snapshot(ctx context.Context, lines []models.CartItem) ([]models.OrderItem, error) {
	requested := make(map[gocql.UUID]int, len(lines))
	for _, l := range lines {
		requested[l.ProductID] += l.Quantity
	}

	products := make(map[gocql.UUID]*models.Product, len(requested))
	var shortages []errs.Shortage
	checked := make(map[gocql.UUID]bool, len(requested))
	for _, l := range lines {
		if checked[l.ProductID] {
			continue
		}
		checked[l.ProductID] = true

		p, err := s.products.Get(ctx, l.ProductID)
		if errors.Is(err, errs.ErrNotFound) {
			shortages = append(shortages, errs.Shortage{
				ProductID: l.ProductID.String(), Available: 0, Requested: requested[l.ProductID],
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lecture du produit %s: %w", l.ProductID, err)
		}
		if requested[l.ProductID] > p.InventoryCount {
			shortages = append(shortages, errs.Shortage{
				ProductID: p.ID.String(), Name: p.Name, Available: p.InventoryCount, Requested: requested[l.ProductID],
			})
			continue
		}
		products[p.ID] = p
	}
	if len(shortages) > 0 {
		return nil, &errs.InsufficientInventoryError{Shortages: shortages}
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		p := products[l.ProductID]
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKUOrDefault(),
			Size:      strings.TrimSpace(l.Size),
			ImageURL:  p.ImageURL,
			Quantity:  l.Quantity,
			Price:     p.EffectivePrice(),
		})
	}
	return items, nil
}

// deduct applique la décrémentation conditionnelle de chaque ligne.
func (s *Service) deduct(ctx context.Context, order *models.Order) error {
	applied := make([]models.OrderItem, 0, len(order.Items))
	for _, it := range order.Items {
		if _, err := s.products.DeductInventory(ctx, it.ProductID, it.Quantity); err != nil {
			log.Error().Err(err).Str("order_id", order.ID).Str("product_id", it.ProductID.String()).
				Msg("❌ Déduction du stock échouée, annulation de la commande")
			s.rollback(ctx, order.ID, applied)
			return err
		}
		applied = append(applied, it)
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, orderID string, applied []models.OrderItem) {
	for i := len(applied) - 1; i >= 0; i-- {
		it := applied[i]
		if _, err := s.products.RestoreInventory(ctx, it.ProductID, it.Quantity); err != nil {
			log.Error().Err(err).Str("order_id", orderID).Str("product_id", it.ProductID.String()).
				Int("quantity", it.Quantity).Msg("❌ Restauration du stock échouée")
		}
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("❌ Suppression de la commande échouée")
	}
}

func (s *Service) clearCart(ctx context.Context, userID string) {
	if s.carts == nil || userID == "" {
		return
	}
	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("⚠️ Panier non vidé")
	}
}

func validateCheckout(req models.CheckoutRequest) error {
	switch req.PaymentMethod {
	case models.PaymentOnline, models.PaymentCOD:
	default:
		return errs.Validation("mode de paiement inconnu: %q", req.PaymentMethod)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return errs.Validation("le téléphone est obligatoire")
	}
	a := req.DeliveryAddress
	if strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.State) == "" {
		return errs.Validation("adresse de livraison incomplète")
	}
	if !pincodeRe.MatchString(strings.TrimSpace(a.PostalCode)) {
		return errs.Validation("code postal invalide: %q", a.PostalCode)
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return errs.Validation("quantité invalide pour le produit %s", it.ProductID)
		}
	}
	return nil
}
