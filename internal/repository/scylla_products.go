package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Nombre d'essais du compare-and-set avant d'abandonner sous contention.
const maxCASAttempts = 8

const productColumns = `product_id, name, description, price, sale_price, category_id, filter,
	in_stock, inventory_count, sku, image_url, tags, attributes, created_at, updated_at`

type ScyllaProductRepository struct {
	session *gocql.Session
}

func NewScyllaProductRepository(session *gocql.Session) *ScyllaProductRepository {
	return &ScyllaProductRepository{session: session}
}

type scanner interface {
	Scan(dest ...interface{}) bool
}

func scanProduct(s scanner) (*models.Product, bool, error) {
	var (
		p          models.Product
		salePrice  *float64
		attributes string
	)
	if !s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &salePrice, &p.CategoryID, &p.Filter,
		&p.InStock, &p.InventoryCount, &p.SKU, &p.ImageURL, &p.Tags, &attributes, &p.CreatedAt, &p.UpdatedAt) {
		return nil, false, nil
	}
	p.SalePrice = salePrice
	if attributes != "" {
		if err := json.Unmarshal([]byte(attributes), &p.Attributes); err != nil {
			return nil, false, fmt.Errorf("attributs du produit %s illisibles: %w", p.ID, err)
		}
	}
	return &p, true, nil
}

func (r *ScyllaProductRepository) iterProducts(iter *gocql.Iter) ([]models.Product, error) {
	var out []models.Product
	for {
		p, ok, err := scanProduct(iter)
		if err != nil {
			iter.Close()
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, *p)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	sortProducts(out)
	return out, nil
}

func (r *ScyllaProductRepository) List(ctx context.Context) ([]models.Product, error) {
	iter := r.session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()
	return r.iterProducts(iter)
}

func (r *ScyllaProductRepository) ListByCategory(ctx context.Context, categoryID gocql.UUID) ([]models.Product, error) {
	iter := r.session.Query(`SELECT `+productColumns+` FROM products WHERE category_id = ?`, categoryID).
		WithContext(ctx).Iter()
	return r.iterProducts(iter)
}

func (r *ScyllaProductRepository) Get(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	iter := r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).
		WithContext(ctx).Iter()
	p, ok, err := scanProduct(iter)
	if cerr := iter.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("produit", id)
	}
	return p, nil
}

func (r *ScyllaProductRepository) write(ctx context.Context, p *models.Product) error {
	attributes, err := json.Marshal(p.Attributes)
	if err != nil {
		return err
	}
	return r.session.Query(`INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.SalePrice, p.CategoryID, p.Filter,
		p.InStock, p.InventoryCount, p.SKU, p.ImageURL, p.Tags, string(attributes), p.CreatedAt, p.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.write(ctx, p)
}

// Update ne réécrit pas le stock: il est modifié uniquement par compare-and-set.
func (r *ScyllaProductRepository) Update(ctx context.Context, p *models.Product) error {
	if _, err := r.Get(ctx, p.ID); err != nil {
		return err
	}
	attributes, err := json.Marshal(p.Attributes)
	if err != nil {
		return err
	}
	return r.session.Query(`UPDATE products SET name = ?, description = ?, price = ?, sale_price = ?,
		category_id = ?, filter = ?, sku = ?, image_url = ?, tags = ?, attributes = ?, updated_at = ?
		WHERE product_id = ?`,
		p.Name, p.Description, p.Price, p.SalePrice, p.CategoryID, p.Filter, p.SKU, p.ImageURL,
		p.Tags, string(attributes), p.UpdatedAt, p.ID,
	).WithContext(ctx).Exec()
}

func (r *ScyllaProductRepository) Delete(ctx context.Context, id gocql.UUID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.session.Query(`DELETE FROM products WHERE product_id = ?`, id).WithContext(ctx).Exec()
}

func (r *ScyllaProductRepository) currentInventory(ctx context.Context, id gocql.UUID) (int, string, error) {
	var (
		count int
		name  string
	)
	err := r.session.Query(`SELECT inventory_count, name FROM products WHERE product_id = ?`, id).
		WithContext(ctx).Scan(&count, &name)
	if errors.Is(err, gocql.ErrNotFound) {
		return 0, "", notFound("produit", id)
	}
	return count, name, err
}

// casInventory applique next(count) via une transaction légère (LWT) et
// recommence si une autre écriture a modifié le stock entre-temps.
func (r *ScyllaProductRepository) casInventory(ctx context.Context, id gocql.UUID, next func(count int, name string) (int, bool, error)) (*models.Product, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		count, name, err := r.currentInventory(ctx, id)
		if err != nil {
			return nil, err
		}
		updated, inStock, err := next(count, name)
		if err != nil {
			return nil, err
		}

		var seen int
		applied, err := r.session.Query(`UPDATE products SET inventory_count = ?, in_stock = ?, updated_at = ?
			WHERE product_id = ? IF inventory_count = ?`,
			updated, inStock, time.Now(), id, count,
		).WithContext(ctx).ScanCAS(&seen)
		if err != nil {
			return nil, err
		}
		if applied {
			return r.Get(ctx, id)
		}
	}
	return nil, fmt.Errorf("stock du produit %s modifié en parallèle: %w", id, errs.ErrConflict)
}

func (r *ScyllaProductRepository) DeductInventory(ctx context.Context, id gocql.UUID, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, errs.Validation("quantité invalide: %d", qty)
	}
	return r.casInventory(ctx, id, func(count int, name string) (int, bool, error) {
		if count < qty {
			return 0, false, &errs.InsufficientInventoryError{Shortages: []errs.Shortage{{
				ProductID: id.String(), Name: name, Available: count, Requested: qty,
			}}}
		}
		return count - qty, count-qty > 0, nil
	})
}

func (r *ScyllaProductRepository) RestoreInventory(ctx context.Context, id gocql.UUID, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, errs.Validation("quantité invalide: %d", qty)
	}
	return r.casInventory(ctx, id, func(count int, _ string) (int, bool, error) {
		return count + qty, true, nil
	})
}

func (r *ScyllaProductRepository) SetInventory(ctx context.Context, id gocql.UUID, count int) (*models.Product, error) {
	if count < 0 {
		return nil, errs.Validation("stock négatif: %d", count)
	}
	return r.casInventory(ctx, id, func(int, string) (int, bool, error) {
		return count, count > 0, nil
	})
}

var _ ProductRepository = (*ScyllaProductRepository)(nil)
