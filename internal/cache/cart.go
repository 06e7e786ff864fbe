package cache

import (
	"context"
	"errors"
	"time"

	"wearxture_back_end/internal/models"
)

const CartTTL = 30 * 24 * time.Hour

func cartKey(userID string) string {
	return "cart:" + userID
}

// CartStore conserve le panier de chaque client dans Redis.
type CartStore struct {
	store *Store
}

func NewCartStore(store *Store) *CartStore {
	return &CartStore{store: store}
}

// Get retourne un panier vide si le client n'en a pas.
func (c *CartStore) Get(ctx context.Context, userID string) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID}
	err := c.store.GetJSON(ctx, cartKey(userID), cart)
	if errors.Is(err, ErrMiss) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// Save remplace le panier; les lignes identiques (produit + taille) sont fusionnées.
func (c *CartStore) Save(ctx context.Context, cart *models.Cart) error {
	cart.Items = MergeItems(cart.Items)
	return c.store.SetJSON(ctx, cartKey(cart.UserID), cart, CartTTL)
}

func (c *CartStore) Clear(ctx context.Context, userID string) error {
	return c.store.Delete(ctx, cartKey(userID))
}

// MergeItems additionne les quantités des lignes de même produit et taille.
func MergeItems(items []models.CartItem) []models.CartItem {
	type key struct {
		product string
		size    string
	}
	index := make(map[key]int, len(items))
	out := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		k := key{it.ProductID.String(), it.Size}
		if i, ok := index[k]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[k] = len(out)
		out = append(out, it)
	}
	return out
}
