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

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

func (s *Service) GetCategory(ctx context.Context, id gocql.UUID) (*models.Category, error) {
	return s.categories.Get(ctx, id)
}

func (s *Service) Subcategories(ctx context.Context, parentID gocql.UUID) ([]models.Category, error) {
	if _, err := s.categories.Get(ctx, parentID); err != nil {
		return nil, err
	}
	children, err := s.categories.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if children == nil {
		children = []models.Category{}
	}
	return children, nil
}

func (s *Service) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Validation("le nom est obligatoire")
	}
	parentID, err := s.parentID(ctx, in.ParentID, nil)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	c := &models.Category{
		ID:          gocql.TimeUUID(),
		Name:        name,
		Description: in.Description,
		ParentID:    parentID,
		Filter:      filterOrDefault(in.Filter),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("création de la catégorie: %w", err)
	}
	log.Info().Str("category_id", c.ID.String()).Msg("✅ Catégorie créée")
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id gocql.UUID, in models.CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Validation("le nom est obligatoire")
	}
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	parentID, err := s.parentID(ctx, in.ParentID, &id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Description = in.Description
	c.ParentID = parentID
	if in.Filter != "" {
		c.Filter = in.Filter
	}
	c.UpdatedAt = time.Now()
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("mise à jour de la catégorie %s: %w", id, err)
	}
	s.invalidate(ctx)
	return c, nil
}

// DeleteCategory est refusée tant que des sous-catégories existent.
func (s *Service) DeleteCategory(ctx context.Context, id gocql.UUID) error {
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return err
	}
	children, err := s.categories.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("la catégorie %s a %d sous-catégorie(s): %w", c.Name, len(children), errs.ErrConflict)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	if s.storage != nil {
		for _, url := range []string{c.ImageURL, c.CoverImageURL} {
			if url != "" {
				if err := s.storage.Remove(ctx, url); err != nil {
					log.Warn().Err(err).Str("url", url).Msg("⚠️ Image non supprimée")
				}
			}
		}
	}
	s.invalidate(ctx)
	return nil
}

// UploadCategoryImage remplace l'image (cover=false) ou l'image de couverture.
func (s *Service) UploadCategoryImage(ctx context.Context, id gocql.UUID, f Upload, cover bool) (*models.Category, error) {
	if s.storage == nil {
		return nil, errs.Upstream("stockage", fmt.Errorf("stockage objet non configuré"))
	}
	if !strings.HasPrefix(f.ContentType, "image/") {
		return nil, errs.Validation("type %q non supporté", f.ContentType)
	}
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.storage.Upload(ctx, "categories/"+id.String(), f.Filename, f.Body, f.Size, f.ContentType)
	if err != nil {
		return nil, err
	}
	previous := &c.ImageURL
	if cover {
		previous = &c.CoverImageURL
	}
	if *previous != "" {
		if err := s.storage.Remove(ctx, *previous); err != nil {
			log.Warn().Err(err).Str("url", *previous).Msg("⚠️ Ancienne image non supprimée")
		}
	}
	*previous = url
	c.UpdatedAt = time.Now()
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) parentID(ctx context.Context, raw string, self *gocql.UUID) (*gocql.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := ParseID(raw)
	if err != nil {
		return nil, err
	}
	if self != nil && id == *self {
		return nil, errs.Validation("une catégorie ne peut pas être son propre parent")
	}
	if _, err := s.categories.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("catégorie parente: %w", err)
	}
	return &id, nil
}

func filterOrDefault(f string) string {
	if f = strings.TrimSpace(f); f != "" {
		return f
	}
	return models.DefaultFilter
}
