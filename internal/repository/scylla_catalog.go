package repository

import (
	"context"

	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
)

// =============================================
// CATÉGORIES
// =============================================

const categoryColumns = `category_id, name, description, parent_id, image_url, cover_image_url, filter, created_at, updated_at`

type ScyllaCategoryRepository struct {
	session *gocql.Session
}

func NewScyllaCategoryRepository(session *gocql.Session) *ScyllaCategoryRepository {
	return &ScyllaCategoryRepository{session: session}
}

func scanCategories(iter *gocql.Iter) ([]models.Category, error) {
	var out []models.Category
	for {
		var (
			c        models.Category
			parentID *gocql.UUID
		)
		if !iter.Scan(&c.ID, &c.Name, &c.Description, &parentID, &c.ImageURL, &c.CoverImageURL,
			&c.Filter, &c.CreatedAt, &c.UpdatedAt) {
			break
		}
		c.ParentID = parentID
		out = append(out, c)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sortCategories(out)
	return out, nil
}

func (r *ScyllaCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	return scanCategories(r.session.Query(`SELECT ` + categoryColumns + ` FROM categories`).WithContext(ctx).Iter())
}

func (r *ScyllaCategoryRepository) ListChildren(ctx context.Context, parentID gocql.UUID) ([]models.Category, error) {
	return scanCategories(r.session.Query(`SELECT `+categoryColumns+` FROM categories WHERE parent_id = ?`, parentID).
		WithContext(ctx).Iter())
}

func (r *ScyllaCategoryRepository) Get(ctx context.Context, id gocql.UUID) (*models.Category, error) {
	cs, err := scanCategories(r.session.Query(`SELECT `+categoryColumns+` FROM categories WHERE category_id = ?`, id).
		WithContext(ctx).Iter())
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, notFound("catégorie", id)
	}
	return &cs[0], nil
}

func (r *ScyllaCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return r.session.Query(`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.ParentID, c.ImageURL, c.CoverImageURL, c.Filter, c.CreatedAt, c.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	if _, err := r.Get(ctx, c.ID); err != nil {
		return err
	}
	return r.Create(ctx, c)
}

func (r *ScyllaCategoryRepository) Delete(ctx context.Context, id gocql.UUID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.session.Query(`DELETE FROM categories WHERE category_id = ?`, id).WithContext(ctx).Exec()
}

// =============================================
// REELS
// =============================================

const reelColumns = `reel_id, title, category_id, video_url, display_order, is_active, created_at, updated_at`

type ScyllaReelRepository struct {
	session *gocql.Session
}

func NewScyllaReelRepository(session *gocql.Session) *ScyllaReelRepository {
	return &ScyllaReelRepository{session: session}
}

func scanReels(iter *gocql.Iter, activeOnly bool) ([]models.Reel, error) {
	var out []models.Reel
	for {
		var (
			reel       models.Reel
			categoryID *gocql.UUID
		)
		if !iter.Scan(&reel.ID, &reel.Title, &categoryID, &reel.VideoURL, &reel.DisplayOrder,
			&reel.IsActive, &reel.CreatedAt, &reel.UpdatedAt) {
			break
		}
		reel.CategoryID = categoryID
		if activeOnly && !reel.IsActive {
			continue
		}
		out = append(out, reel)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sortReels(out)
	return out, nil
}

func (r *ScyllaReelRepository) List(ctx context.Context, activeOnly bool) ([]models.Reel, error) {
	return scanReels(r.session.Query(`SELECT `+reelColumns+` FROM reels`).WithContext(ctx).Iter(), activeOnly)
}

func (r *ScyllaReelRepository) Get(ctx context.Context, id gocql.UUID) (*models.Reel, error) {
	rs, err := scanReels(r.session.Query(`SELECT `+reelColumns+` FROM reels WHERE reel_id = ?`, id).
		WithContext(ctx).Iter(), false)
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, notFound("reel", id)
	}
	return &rs[0], nil
}

func (r *ScyllaReelRepository) Create(ctx context.Context, reel *models.Reel) error {
	return r.session.Query(`INSERT INTO reels (`+reelColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reel.ID, reel.Title, reel.CategoryID, reel.VideoURL, reel.DisplayOrder, reel.IsActive,
		reel.CreatedAt, reel.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaReelRepository) Update(ctx context.Context, reel *models.Reel) error {
	if _, err := r.Get(ctx, reel.ID); err != nil {
		return err
	}
	return r.Create(ctx, reel)
}

func (r *ScyllaReelRepository) Delete(ctx context.Context, id gocql.UUID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.session.Query(`DELETE FROM reels WHERE reel_id = ?`, id).WithContext(ctx).Exec()
}

var (
	_ CategoryRepository = (*ScyllaCategoryRepository)(nil)
	_ ReelRepository     = (*ScyllaReelRepository)(nil)
)
