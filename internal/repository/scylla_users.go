package repository

import (
	"context"
	"errors"
	"strings"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
)

// =============================================
// UTILISATEURS
// =============================================

const userColumns = `user_id, email, password, name, phone, role, is_active, provider, created_at, updated_at`

type ScyllaUserRepository struct {
	session *gocql.Session
}

func NewScyllaUserRepository(session *gocql.Session) *ScyllaUserRepository {
	return &ScyllaUserRepository{session: session}
}

func scanUsers(iter *gocql.Iter) ([]models.User, error) {
	var out []models.User
	for {
		var u models.User
		if !iter.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Phone, &u.Role, &u.IsActive, &u.Provider,
			&u.CreatedAt, &u.UpdatedAt) {
			break
		}
		out = append(out, u)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sortUsers(out)
	return out, nil
}

// Create réserve d'abord l'email dans users_by_email (IF NOT EXISTS) pour garantir l'unicité.
func (r *ScyllaUserRepository) Create(ctx context.Context, u *models.User) error {
	email := strings.ToLower(u.Email)
	applied, err := r.session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
		email, u.ID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return errs.ErrEmailTaken
	}
	err = r.session.Query(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, email, u.Password, u.Name, u.Phone, u.Role, u.IsActive, u.Provider, u.CreatedAt, u.UpdatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		r.session.Query(`DELETE FROM users_by_email WHERE email = ?`, email).WithContext(ctx).Exec()
		return err
	}
	return nil
}

func (r *ScyllaUserRepository) Get(ctx context.Context, id gocql.UUID) (*models.User, error) {
	users, err := scanUsers(r.session.Query(`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id).
		WithContext(ctx).Iter())
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, notFound("utilisateur", id)
	}
	return &users[0], nil
}

func (r *ScyllaUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var id gocql.UUID
	err := r.session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, strings.ToLower(email)).
		WithContext(ctx).Scan(&id)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, notFound("utilisateur", email)
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Update ne modifie pas l'email.
func (r *ScyllaUserRepository) Update(ctx context.Context, u *models.User) error {
	if _, err := r.Get(ctx, u.ID); err != nil {
		return err
	}
	return r.session.Query(`UPDATE users SET password = ?, name = ?, phone = ?, role = ?, is_active = ?,
		provider = ?, updated_at = ? WHERE user_id = ?`,
		u.Password, u.Name, u.Phone, u.Role, u.IsActive, u.Provider, u.UpdatedAt, u.ID,
	).WithContext(ctx).Exec()
}

func (r *ScyllaUserRepository) List(ctx context.Context) ([]models.User, error) {
	return scanUsers(r.session.Query(`SELECT ` + userColumns + ` FROM users`).WithContext(ctx).Iter())
}

// =============================================
// SUPPORT
// =============================================

const supportColumns = `query_id, customer_name, customer_email, subject, message, status, priority,
	admin_notes, resolved_at, created_at, updated_at`

type ScyllaSupportRepository struct {
	session *gocql.Session
}

func NewScyllaSupportRepository(session *gocql.Session) *ScyllaSupportRepository {
	return &ScyllaSupportRepository{session: session}
}

func scanSupport(iter *gocql.Iter) ([]models.SupportQuery, error) {
	var out []models.SupportQuery
	for {
		var q models.SupportQuery
		if !iter.Scan(&q.ID, &q.CustomerName, &q.CustomerEmail, &q.Subject, &q.Message, &q.Status,
			&q.Priority, &q.AdminNotes, &q.ResolvedAt, &q.CreatedAt, &q.UpdatedAt) {
			break
		}
		out = append(out, q)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sortSupport(out)
	return out, nil
}

func (r *ScyllaSupportRepository) Create(ctx context.Context, q *models.SupportQuery) error {
	return r.session.Query(`INSERT INTO support_queries (`+supportColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.CustomerName, strings.ToLower(q.CustomerEmail), q.Subject, q.Message, q.Status, q.Priority,
		q.AdminNotes, q.ResolvedAt, q.CreatedAt, q.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaSupportRepository) Get(ctx context.Context, id gocql.UUID) (*models.SupportQuery, error) {
	qs, err := scanSupport(r.session.Query(`SELECT `+supportColumns+` FROM support_queries WHERE query_id = ?`, id).
		WithContext(ctx).Iter())
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, notFound("demande support", id)
	}
	return &qs[0], nil
}

func (r *ScyllaSupportRepository) List(ctx context.Context) ([]models.SupportQuery, error) {
	return scanSupport(r.session.Query(`SELECT ` + supportColumns + ` FROM support_queries`).WithContext(ctx).Iter())
}

func (r *ScyllaSupportRepository) ListByStatus(ctx context.Context, status string) ([]models.SupportQuery, error) {
	return scanSupport(r.session.Query(`SELECT `+supportColumns+` FROM support_queries WHERE status = ?`, status).
		WithContext(ctx).Iter())
}

func (r *ScyllaSupportRepository) ListByEmail(ctx context.Context, email string) ([]models.SupportQuery, error) {
	return scanSupport(r.session.Query(`SELECT `+supportColumns+` FROM support_queries WHERE customer_email = ?`,
		strings.ToLower(email)).WithContext(ctx).Iter())
}

func (r *ScyllaSupportRepository) Update(ctx context.Context, q *models.SupportQuery) error {
	if _, err := r.Get(ctx, q.ID); err != nil {
		return err
	}
	return r.Create(ctx, q)
}

// =============================================
// WISHLIST
// =============================================

type ScyllaWishlistRepository struct {
	session *gocql.Session
}

func NewScyllaWishlistRepository(session *gocql.Session) *ScyllaWishlistRepository {
	return &ScyllaWishlistRepository{session: session}
}

func (r *ScyllaWishlistRepository) List(ctx context.Context, userID gocql.UUID) ([]models.WishlistItem, error) {
	iter := r.session.Query(`SELECT user_id, product_id, added_at FROM wishlist WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()
	var out []models.WishlistItem
	var it models.WishlistItem
	for iter.Scan(&it.UserID, &it.ProductID, &it.AddedAt) {
		out = append(out, it)
	}
	return out, iter.Close()
}

// Add est idempotent: un produit déjà présent garde sa date d'ajout.
func (r *ScyllaWishlistRepository) Add(ctx context.Context, item models.WishlistItem) error {
	_, err := r.session.Query(`INSERT INTO wishlist (user_id, product_id, added_at) VALUES (?, ?, ?) IF NOT EXISTS`,
		item.UserID, item.ProductID, item.AddedAt).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	return err
}

func (r *ScyllaWishlistRepository) Remove(ctx context.Context, userID, productID gocql.UUID) error {
	return r.session.Query(`DELETE FROM wishlist WHERE user_id = ? AND product_id = ?`, userID, productID).
		WithContext(ctx).Exec()
}

var (
	_ UserRepository     = (*ScyllaUserRepository)(nil)
	_ SupportRepository  = (*ScyllaSupportRepository)(nil)
	_ WishlistRepository = (*ScyllaWishlistRepository)(nil)
)
