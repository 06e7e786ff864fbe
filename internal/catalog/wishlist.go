package catalog

import (
	"context"
	"errors"
	"sort"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
)

// Wishlist retourne les produits encore au catalogue, du plus récent ajout au plus ancien.
func (s *Service) Wishlist(ctx context.Context, userID gocql.UUID) ([]models.Product, error) {
	items, err := s.wishlist.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortWishlist(items)

	products := make([]models.Product, 0, len(items))
	for _, it := range items {
		p, err := s.products.Get(ctx, it.ProductID)
		if errors.Is(err, errs.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

// AddToWishlist est idempotent; le produit doit exister.
func (s *Service) AddToWishlist(ctx context.Context, userID, productID gocql.UUID) error {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return err
	}
	return s.wishlist.Add(ctx, models.WishlistItem{UserID: userID, ProductID: productID, AddedAt: time.Now()})
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID gocql.UUID) error {
	return s.wishlist.Remove(ctx, userID, productID)
}

// SyncWishlist fusionne la liste d'un visiteur après connexion. Les produits
// inconnus sont ignorés.
func (s *Service) SyncWishlist(ctx context.Context, userID gocql.UUID, productIDs []gocql.UUID) ([]models.Product, error) {
	for _, id := range productIDs {
		err := s.AddToWishlist(ctx, userID, id)
		if errors.Is(err, errs.ErrNotFound) {
			log.Debug().Str("product_id", id.String()).Msg("produit de wishlist ignoré")
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return s.Wishlist(ctx, userID)
}

func sortWishlist(items []models.WishlistItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].AddedAt.After(items[j].AddedAt) })
}
