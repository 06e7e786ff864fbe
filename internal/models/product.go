package models

import (
	"time"

	"github.com/gocql/gocql"
)

const DefaultFilter = "all"

// ProductAttributes est stocké en JSON dans la colonne attributes.
type ProductAttributes struct {
	AdditionalImages []string          `json:"additional_images,omitempty"`
	Sizes            []string          `json:"sizes,omitempty"`
	Colors           []string          `json:"colors,omitempty"`
	Material         string            `json:"material,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

type Product struct {
	ID             gocql.UUID        `json:"id" db:"product_id"`
	Name           string            `json:"name" db:"name"`
	Description    string            `json:"description" db:"description"`
	Price          float64           `json:"price" db:"price"`
	SalePrice      *float64          `json:"sale_price,omitempty" db:"sale_price"`
	CategoryID     gocql.UUID        `json:"category_id" db:"category_id"`
	Filter         string            `json:"filter" db:"filter"`
	InStock        bool              `json:"in_stock" db:"in_stock"`
	InventoryCount int               `json:"inventory_count" db:"inventory_count"`
	SKU            string            `json:"sku,omitempty" db:"sku"`
	ImageURL       string            `json:"image_url,omitempty" db:"image_url"`
	Tags           []string          `json:"tags" db:"tags"`
	Attributes     ProductAttributes `json:"attributes" db:"attributes"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// EffectivePrice retourne le prix soldé s'il est valide, sinon le prix catalogue.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice != nil && *p.SalePrice > 0 && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// SKUOrDefault retourne le SKU du produit ou un SKU dérivé de son id.
func (p Product) SKUOrDefault() string {
	if p.SKU != "" {
		return p.SKU
	}
	return "SKU-" + p.ID.String()
}

// ProductInput est le corps accepté par la création et la mise à jour admin.
type ProductInput struct {
	Name           string             `json:"name" binding:"required"`
	Description    string             `json:"description"`
	Price          float64            `json:"price" binding:"required,gt=0"`
	SalePrice      *float64           `json:"sale_price"`
	CategoryID     string             `json:"category_id" binding:"required"`
	InventoryCount *int               `json:"inventory_count"`
	SKU            string             `json:"sku"`
	ImageURL       string             `json:"image_url"`
	Tags           []string           `json:"tags"`
	Attributes     *ProductAttributes `json:"attributes"`
}
