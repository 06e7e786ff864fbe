package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ListReels trie par ordre d'affichage; activeOnly masque les reels désactivés.
func (s *Service) ListReels(ctx context.Context, activeOnly bool) ([]models.Reel, error) {
	reels, err := s.reels.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if reels == nil {
		reels = []models.Reel{}
	}
	return reels, nil
}

func (s *Service) GetReel(ctx context.Context, id gocql.UUID) (*models.Reel, error) {
	return s.reels.Get(ctx, id)
}

func (s *Service) CreateReel(ctx context.Context, in models.ReelInput) (*models.Reel, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errs.Validation("le titre est obligatoire")
	}
	categoryID, err := s.reelCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	r := &models.Reel{
		ID:           gocql.TimeUUID(),
		Title:        strings.TrimSpace(in.Title),
		CategoryID:   categoryID,
		VideoURL:     in.VideoURL,
		DisplayOrder: in.DisplayOrder,
		IsActive:     in.IsActive == nil || *in.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.reels.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("création du reel: %w", err)
	}
	return r, nil
}

func (s *Service) UpdateReel(ctx context.Context, id gocql.UUID, in models.ReelInput) (*models.Reel, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errs.Validation("le titre est obligatoire")
	}
	r, err := s.reels.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.reelCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	r.Title = strings.TrimSpace(in.Title)
	r.CategoryID = categoryID
	if in.VideoURL != "" {
		r.VideoURL = in.VideoURL
	}
	r.DisplayOrder = in.DisplayOrder
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	r.UpdatedAt = time.Now()
	if err := s.reels.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) DeleteReel(ctx context.Context, id gocql.UUID) error {
	r, err := s.reels.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reels.Delete(ctx, id); err != nil {
		return err
	}
	if s.storage != nil && r.VideoURL != "" {
		_ = s.storage.Remove(ctx, r.VideoURL)
	}
	return nil
}

func (s *Service) UploadReelVideo(ctx context.Context, id gocql.UUID, f Upload) (*models.Reel, error) {
	if s.storage == nil {
		return nil, errs.Upstream("stockage", fmt.Errorf("stockage objet non configuré"))
	}
	if !strings.HasPrefix(f.ContentType, "video/") {
		return nil, errs.Validation("type %q non supporté", f.ContentType)
	}
	r, err := s.reels.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.storage.Upload(ctx, "reels", f.Filename, f.Body, f.Size, f.ContentType)
	if err != nil {
		return nil, err
	}
	r.VideoURL = url
	r.UpdatedAt = time.Now()
	if err := s.reels.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) reelCategory(ctx context.Context, raw string) (*gocql.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := ParseID(raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.categories.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("catégorie du reel: %w", err)
	}
	return &id, nil
}
