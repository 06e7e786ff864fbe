package cache

import (
	"context"
	"time"

	"wearxture_back_end/internal/models"

	"github.com/rs/zerolog/log"
)

const ProductCacheTTL = 10 * time.Minute

// ProductCache met en cache les listes de produits (cache-aside).
type ProductCache struct {
	store *Store
}

func NewProductCache(store *Store) *ProductCache {
	return &ProductCache{store: store}
}

func productListKey(scope string) string {
	return "products:list:" + scope
}

// GetList retourne (nil, false) en cas d'absence ou d'erreur Redis.
func (p *ProductCache) GetList(ctx context.Context, scope string) ([]models.Product, bool) {
	var products []models.Product
	if err := p.store.GetJSON(ctx, productListKey(scope), &products); err != nil {
		return nil, false
	}
	return products, true
}

func (p *ProductCache) SetList(ctx context.Context, scope string, products []models.Product) {
	if err := p.store.SetJSON(ctx, productListKey(scope), products, ProductCacheTTL); err != nil {
		log.Warn().Err(err).Msg("⚠️ Mise en cache des produits échouée")
	}
}

// Invalidate vide toutes les listes après une écriture du catalogue.
func (p *ProductCache) Invalidate(ctx context.Context) {
	if err := p.store.DeletePattern(ctx, productListKey("*")); err != nil {
		log.Warn().Err(err).Msg("⚠️ Invalidation du cache produits échouée")
	}
}
