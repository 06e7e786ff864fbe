package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
)

// MemoryStore regroupe des dépôts en mémoire, utilisés en développement
// quand ScyllaDB n'est pas configuré et dans les tests.
type MemoryStore struct {
	Products   *MemoryProducts
	Categories *MemoryCategories
	Reels      *MemoryReels
	Orders     *MemoryOrders
	Users      *MemoryUsers
	Support    *MemorySupport
	Wishlist   *MemoryWishlist
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Products:   &MemoryProducts{items: map[gocql.UUID]models.Product{}},
		Categories: &MemoryCategories{items: map[gocql.UUID]models.Category{}},
		Reels:      &MemoryReels{items: map[gocql.UUID]models.Reel{}},
		Orders:     &MemoryOrders{items: map[string]models.Order{}},
		Users:      &MemoryUsers{items: map[gocql.UUID]models.User{}},
		Support:    &MemorySupport{items: map[gocql.UUID]models.SupportQuery{}},
		Wishlist:   &MemoryWishlist{items: map[gocql.UUID]map[gocql.UUID]models.WishlistItem{}},
	}
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, errs.ErrNotFound)
}

// =============================================
// PRODUITS
// =============================================

type MemoryProducts struct {
	mu    sync.RWMutex
	items map[gocql.UUID]models.Product
}

func cloneProduct(p models.Product) models.Product {
	p.Tags = append([]string(nil), p.Tags...)
	p.Attributes.AdditionalImages = append([]string(nil), p.Attributes.AdditionalImages...)
	p.Attributes.Sizes = append([]string(nil), p.Attributes.Sizes...)
	p.Attributes.Colors = append([]string(nil), p.Attributes.Colors...)
	if p.Attributes.Extra != nil {
		extra := make(map[string]string, len(p.Attributes.Extra))
		for k, v := range p.Attributes.Extra {
			extra[k] = v
		}
		p.Attributes.Extra = extra
	}
	if p.SalePrice != nil {
		sp := *p.SalePrice
		p.SalePrice = &sp
	}
	return p
}

func (r *MemoryProducts) List(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Product, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, cloneProduct(p))
	}
	sortProducts(out)
	return out, nil
}

func (r *MemoryProducts) ListByCategory(_ context.Context, categoryID gocql.UUID) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Product
	for _, p := range r.items {
		if p.CategoryID == categoryID {
			out = append(out, cloneProduct(p))
		}
	}
	sortProducts(out)
	return out, nil
}

func (r *MemoryProducts) Get(_ context.Context, id gocql.UUID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, notFound("produit", id)
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *MemoryProducts) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; ok {
		return fmt.Errorf("produit %s: %w", p.ID, errs.ErrConflict)
	}
	r.items[p.ID] = cloneProduct(*p)
	return nil
}

func (r *MemoryProducts) Update(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return notFound("produit", p.ID)
	}
	r.items[p.ID] = cloneProduct(*p)
	return nil
}

func (r *MemoryProducts) Delete(_ context.Context, id gocql.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound("produit", id)
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryProducts) DeductInventory(_ context.Context, id gocql.UUID, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, errs.Validation("quantité invalide: %d", qty)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, notFound("produit", id)
	}
	if p.InventoryCount < qty {
		return nil, &errs.InsufficientInventoryError{Shortages: []errs.Shortage{{
			ProductID: id.String(), Name: p.Name, Available: p.InventoryCount, Requested: qty,
		}}}
	}
	p.InventoryCount -= qty
	p.InStock = p.InventoryCount > 0
	p.UpdatedAt = time.Now()
	r.items[id] = p
	p = cloneProduct(p)
	return &p, nil
}

func (r *MemoryProducts) RestoreInventory(_ context.Context, id gocql.UUID, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, errs.Validation("quantité invalide: %d", qty)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, notFound("produit", id)
	}
	p.InventoryCount += qty
	p.InStock = true
	p.UpdatedAt = time.Now()
	r.items[id] = p
	p = cloneProduct(p)
	return &p, nil
}

func (r *MemoryProducts) SetInventory(_ context.Context, id gocql.UUID, count int) (*models.Product, error) {
	if count < 0 {
		return nil, errs.Validation("stock négatif: %d", count)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, notFound("produit", id)
	}
	p.InventoryCount = count
	p.InStock = count > 0
	p.UpdatedAt = time.Now()
	r.items[id] = p
	p = cloneProduct(p)
	return &p, nil
}

// =============================================
// CATÉGORIES
// =============================================

type MemoryCategories struct {
	mu    sync.RWMutex
	items map[gocql.UUID]models.Category
}

func (r *MemoryCategories) List(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	sortCategories(out)
	return out, nil
}

func (r *MemoryCategories) ListChildren(_ context.Context, parentID gocql.UUID) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Category
	for _, c := range r.items {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out, nil
}

func (r *MemoryCategories) Get(_ context.Context, id gocql.UUID) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, notFound("catégorie", id)
	}
	return &c, nil
}

func (r *MemoryCategories) Create(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = *c
	return nil
}

func (r *MemoryCategories) Update(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return notFound("catégorie", c.ID)
	}
	r.items[c.ID] = *c
	return nil
}

func (r *MemoryCategories) Delete(_ context.Context, id gocql.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound("catégorie", id)
	}
	delete(r.items, id)
	return nil
}

// =============================================
// REELS
// =============================================

type MemoryReels struct {
	mu    sync.RWMutex
	items map[gocql.UUID]models.Reel
}

func (r *MemoryReels) List(_ context.Context, activeOnly bool) ([]models.Reel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Reel, 0, len(r.items))
	for _, reel := range r.items {
		if activeOnly && !reel.IsActive {
			continue
		}
		out = append(out, reel)
	}
	sortReels(out)
	return out, nil
}

func (r *MemoryReels) Get(_ context.Context, id gocql.UUID) (*models.Reel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reel, ok := r.items[id]
	if !ok {
		return nil, notFound("reel", id)
	}
	return &reel, nil
}

func (r *MemoryReels) Create(_ context.Context, reel *models.Reel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[reel.ID] = *reel
	return nil
}

func (r *MemoryReels) Update(_ context.Context, reel *models.Reel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[reel.ID]; !ok {
		return notFound("reel", reel.ID)
	}
	r.items[reel.ID] = *reel
	return nil
}

func (r *MemoryReels) Delete(_ context.Context, id gocql.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notFound("reel", id)
	}
	delete(r.items, id)
	return nil
}

// =============================================
// COMMANDES
// =============================================

type MemoryOrders struct {
	mu    sync.RWMutex
	items map[string]models.Order
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func (r *MemoryOrders) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[o.ID]; ok {
		return fmt.Errorf("commande %s: %w", o.ID, errs.ErrConflict)
	}
	r.items[o.ID] = cloneOrder(*o)
	return nil
}

func (r *MemoryOrders) Get(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return nil, notFound("commande", id)
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *MemoryOrders) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.items {
		if gatewayOrderID != "" && o.GatewayOrderID == gatewayOrderID {
			o = cloneOrder(o)
			return &o, nil
		}
	}
	return nil, notFound("commande passerelle", gatewayOrderID)
}

func (r *MemoryOrders) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *MemoryOrders) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Order
	for _, o := range r.items {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sortOrders(out)
	return out
}

func (r *MemoryOrders) List(_ context.Context) ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }), nil
}

func (r *MemoryOrders) ListByEmail(_ context.Context, email string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return strings.EqualFold(o.UserEmail, email) }), nil
}

func (r *MemoryOrders) ListByStatus(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.OrderStatus == status }), nil
}

func (r *MemoryOrders) TransitionStatus(_ context.Context, id string, from, to models.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return false, notFound("commande", id)
	}
	if o.OrderStatus != from {
		return false, nil
	}
	o.OrderStatus = to
	o.UpdatedAt = time.Now()
	r.items[id] = o
	return true, nil
}

func (r *MemoryOrders) UpdatePayment(_ context.Context, id string, p models.PaymentUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return notFound("commande", id)
	}
	o.PaymentStatus = p.Status
	if p.GatewayPaymentID != "" {
		o.GatewayPaymentID = p.GatewayPaymentID
	}
	if p.GatewaySignature != "" {
		o.GatewaySignature = p.GatewaySignature
	}
	o.UpdatedAt = time.Now()
	r.items[id] = o
	return nil
}

func (r *MemoryOrders) UpdateShipment(_ context.Context, id string, s models.ShipmentInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return notFound("commande", id)
	}
	o.Shipment = s
	o.UpdatedAt = time.Now()
	r.items[id] = o
	return nil
}

// =============================================
// UTILISATEURS
// =============================================

type MemoryUsers struct {
	mu    sync.RWMutex
	items map[gocql.UUID]models.User
}

func (r *MemoryUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, u.Email) {
			return errs.ErrEmailTaken
		}
	}
	r.items[u.ID] = *u
	return nil
}

func (r *MemoryUsers) Get(_ context.Context, id gocql.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, notFound("utilisateur", id)
	}
	return &u, nil
}

func (r *MemoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, notFound("utilisateur", email)
}

func (r *MemoryUsers) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[u.ID]; !ok {
		return notFound("utilisateur", u.ID)
	}
	r.items[u.ID] = *u
	return nil
}

func (r *MemoryUsers) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	sortUsers(out)
	return out, nil
}

// =============================================
// SUPPORT
// =============================================

type MemorySupport struct {
	mu    sync.RWMutex
	items map[gocql.UUID]models.SupportQuery
}

func (r *MemorySupport) Create(_ context.Context, q *models.SupportQuery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[q.ID] = *q
	return nil
}

func (r *MemorySupport) Get(_ context.Context, id gocql.UUID) (*models.SupportQuery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.items[id]
	if !ok {
		return nil, notFound("demande support", id)
	}
	return &q, nil
}

func (r *MemorySupport) filter(keep func(models.SupportQuery) bool) []models.SupportQuery {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.SupportQuery
	for _, q := range r.items {
		if keep(q) {
			out = append(out, q)
		}
	}
	sortSupport(out)
	return out
}

func (r *MemorySupport) List(_ context.Context) ([]models.SupportQuery, error) {
	return r.filter(func(models.SupportQuery) bool { return true }), nil
}

func (r *MemorySupport) ListByStatus(_ context.Context, status string) ([]models.SupportQuery, error) {
	return r.filter(func(q models.SupportQuery) bool { return q.Status == status }), nil
}

func (r *MemorySupport) ListByEmail(_ context.Context, email string) ([]models.SupportQuery, error) {
	return r.filter(func(q models.SupportQuery) bool { return strings.EqualFold(q.CustomerEmail, email) }), nil
}

func (r *MemorySupport) Update(_ context.Context, q *models.SupportQuery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[q.ID]; !ok {
		return notFound("demande support", q.ID)
	}
	r.items[q.ID] = *q
	return nil
}

// =============================================
// WISHLIST
// =============================================

type MemoryWishlist struct {
	mu    sync.RWMutex
	items map[gocql.UUID]map[gocql.UUID]models.WishlistItem
}

func (r *MemoryWishlist) List(_ context.Context, userID gocql.UUID) ([]models.WishlistItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.WishlistItem, 0, len(r.items[userID]))
	for _, it := range r.items[userID] {
		out = append(out, it)
	}
	return out, nil
}

func (r *MemoryWishlist) Add(_ context.Context, item models.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[item.UserID] == nil {
		r.items[item.UserID] = map[gocql.UUID]models.WishlistItem{}
	}
	if _, ok := r.items[item.UserID][item.ProductID]; !ok {
		r.items[item.UserID][item.ProductID] = item
	}
	return nil
}

func (r *MemoryWishlist) Remove(_ context.Context, userID, productID gocql.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items[userID], productID)
	return nil
}

var (
	_ ProductRepository  = (*MemoryProducts)(nil)
	_ CategoryRepository = (*MemoryCategories)(nil)
	_ ReelRepository     = (*MemoryReels)(nil)
	_ OrderRepository    = (*MemoryOrders)(nil)
	_ UserRepository     = (*MemoryUsers)(nil)
	_ SupportRepository  = (*MemorySupport)(nil)
	_ WishlistRepository = (*MemoryWishlist)(nil)
)
