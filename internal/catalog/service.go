package catalog

import (
	"context"
	"io"

	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/repository"
	"wearxture_back_end/internal/services"
)

// ListCache met en cache les listes de produits.
type ListCache interface {
	GetList(ctx context.Context, scope string) ([]models.Product, bool)
	SetList(ctx context.Context, scope string, products []models.Product)
	Invalidate(ctx context.Context)
}

// Upload est un fichier reçu par un endpoint d'administration.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Deps regroupe les dépendances du catalogue; Storage, Index et Cache sont optionnels.
type Deps struct {
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Reels      repository.ReelRepository
	Wishlist   repository.WishlistRepository
	Storage    services.Storage
	Index      services.ProductIndex
	Cache      ListCache
}

type Service struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	reels      repository.ReelRepository
	wishlist   repository.WishlistRepository
	storage    services.Storage
	index      services.ProductIndex
	cache      ListCache
}

func NewService(d Deps) *Service {
	return &Service{
		products:   d.Products,
		categories: d.Categories,
		reels:      d.Reels,
		wishlist:   d.Wishlist,
		storage:    d.Storage,
		index:      d.Index,
		cache:      d.Cache,
	}
}
