package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
)

const DefaultRelatedLimit = 4

// ParseID convertit un identifiant de chemin en UUID.
func ParseID(raw string) (gocql.UUID, error) {
	id, err := gocql.ParseUUID(strings.TrimSpace(raw))
	if err != nil {
		return gocql.UUID{}, errs.Validation("identifiant invalide: %q", raw)
	}
	return id, nil
}

// ListProducts retourne les produits, filtrés par catégorie si categoryID est non nil.
func (s *Service) ListProducts(ctx context.Context, categoryID *gocql.UUID) ([]models.Product, error) {
	scope := "all"
	if categoryID != nil {
		scope = categoryID.String()
	}
	if s.cache != nil {
		if products, ok := s.cache.GetList(ctx, scope); ok {
			return products, nil
		}
	}

	var (
		products []models.Product
		err      error
	)
	if categoryID != nil {
		products, err = s.products.ListByCategory(ctx, *categoryID)
	} else {
		products, err = s.products.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("liste des produits: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	if s.cache != nil {
		s.cache.SetList(ctx, scope, products)
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	return s.products.Get(ctx, id)
}

// CreateProduct hérite le filtre de la catégorie; le stock vaut 0 par défaut.
func (s *Service) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	categoryID, err := ParseID(in.CategoryID)
	if err != nil {
		return nil, err
	}
	filter := models.DefaultFilter
	if cat, err := s.categories.Get(ctx, categoryID); err == nil && cat.Filter != "" {
		filter = cat.Filter
	}

	now := time.Now()
	p := &models.Product{
		ID:          gocql.TimeUUID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		SalePrice:   in.SalePrice,
		CategoryID:  categoryID,
		Filter:      filter,
		SKU:         in.SKU,
		ImageURL:    in.ImageURL,
		Tags:        in.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.InventoryCount != nil {
		p.InventoryCount = *in.InventoryCount
	}
	p.InStock = p.InventoryCount > 0
	if in.Attributes != nil {
		p.Attributes = *in.Attributes
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("création du produit: %w", err)
	}
	s.afterProductWrite(ctx, p)
	log.Info().Str("product_id", p.ID.String()).Msg("✅ Produit créé")
	return p, nil
}

// UpdateProduct conserve les images additionnelles si la mise à jour les omet.
// Le stock n'est modifié que par SetInventory.
func (s *Service) UpdateProduct(ctx context.Context, id gocql.UUID, in models.ProductInput) (*models.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	categoryID, err := ParseID(in.CategoryID)
	if err != nil {
		return nil, err
	}
	if categoryID != p.CategoryID {
		p.CategoryID = categoryID
		if cat, err := s.categories.Get(ctx, categoryID); err == nil && cat.Filter != "" {
			p.Filter = cat.Filter
		}
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.SalePrice = in.SalePrice
	p.SKU = in.SKU
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.Attributes != nil {
		images := p.Attributes.AdditionalImages
		p.Attributes = *in.Attributes
		if p.Attributes.AdditionalImages == nil {
			p.Attributes.AdditionalImages = images
		}
	}
	p.UpdatedAt = time.Now()

	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("mise à jour du produit %s: %w", id, err)
	}
	s.afterProductWrite(ctx, p)
	return p, nil
}

// DeleteProduct supprime aussi les images stockées et le document de recherche.
func (s *Service) DeleteProduct(ctx context.Context, id gocql.UUID) error {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("suppression du produit %s: %w", id, err)
	}
	if s.storage != nil {
		for _, url := range append([]string{p.ImageURL}, p.Attributes.AdditionalImages...) {
			if url == "" {
				continue
			}
			if err := s.storage.Remove(ctx, url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("⚠️ Image non supprimée")
			}
		}
	}
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("product_id", id.String()).Msg("⚠️ Document de recherche non supprimé")
		}
	}
	s.invalidate(ctx)
	log.Info().Str("product_id", id.String()).Msg("🗑️ Produit supprimé")
	return nil
}

// UploadProductImages: la première image devient l'image principale,
// les suivantes s'ajoutent aux images additionnelles.
func (s *Service) UploadProductImages(ctx context.Context, id gocql.UUID, files []Upload) (*models.Product, error) {
	if len(files) == 0 {
		return nil, errs.Validation("aucune image reçue")
	}
	if s.storage == nil {
		return nil, errs.Upstream("stockage", fmt.Errorf("stockage objet non configuré"))
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return nil, errs.Validation("fichier %s: type %q non supporté", f.Filename, f.ContentType)
		}
		url, err := s.storage.Upload(ctx, "products/"+id.String(), f.Filename, f.Body, f.Size, f.ContentType)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	p.ImageURL = urls[0]
	p.Attributes.AdditionalImages = append(p.Attributes.AdditionalImages, urls[1:]...)
	p.UpdatedAt = time.Now()
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("enregistrement des images: %w", err)
	}
	s.afterProductWrite(ctx, p)
	return p, nil
}

// SetInventory fixe un stock absolu (ajustement admin).
func (s *Service) SetInventory(ctx context.Context, id gocql.UUID, count int) (*models.Product, error) {
	p, err := s.products.SetInventory(ctx, id, count)
	if err != nil {
		return nil, err
	}
	s.afterProductWrite(ctx, p)
	return p, nil
}

// DeductInventory échoue sans effet si le stock est insuffisant.
func (s *Service) DeductInventory(ctx context.Context, id gocql.UUID, qty int) (*models.Product, error) {
	p, err := s.products.DeductInventory(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// RestoreInventory remet qty unités en stock.
func (s *Service) RestoreInventory(ctx context.Context, id gocql.UUID, qty int) (*models.Product, error) {
	p, err := s.products.RestoreInventory(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// RelatedProducts complète les produits de la même catégorie avec d'autres produits.
func (s *Service) RelatedProducts(ctx context.Context, id gocql.UUID, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sameCategory, err := s.products.ListByCategory(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, limit)
	seen := map[gocql.UUID]bool{id: true}
	add := func(list []models.Product) {
		for _, candidate := range list {
			if len(out) == limit {
				return
			}
			if seen[candidate.ID] {
				continue
			}
			seen[candidate.ID] = true
			out = append(out, candidate)
		}
	}
	add(sameCategory)
	if len(out) < limit {
		all, err := s.products.List(ctx)
		if err != nil {
			return nil, err
		}
		add(all)
	}
	return out, nil
}

func (s *Service) afterProductWrite(ctx context.Context, p *models.Product) {
	s.invalidate(ctx)
	if s.index != nil {
		if err := s.index.Index(ctx, *p); err != nil {
			log.Warn().Err(err).Str("product_id", p.ID.String()).Msg("⚠️ Indexation échouée")
		}
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func validateProductInput(in models.ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errs.Validation("le nom est obligatoire")
	}
	if in.Price <= 0 {
		return errs.Validation("le prix doit être positif")
	}
	if in.SalePrice != nil && *in.SalePrice < 0 {
		return errs.Validation("le prix soldé ne peut pas être négatif")
	}
	if in.InventoryCount != nil && *in.InventoryCount < 0 {
		return errs.Validation("le stock ne peut pas être négatif")
	}
	return nil
}
