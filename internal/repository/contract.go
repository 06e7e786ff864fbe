package repository

import (
	"context"

	"wearxture_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Les implémentations retournent errs.ErrNotFound pour un id inconnu.

type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, categoryID gocql.UUID) ([]models.Product, error)
	Get(ctx context.Context, id gocql.UUID) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id gocql.UUID) error
	// DeductInventory décrémente le stock de façon atomique ou échoue
	// avec *errs.InsufficientInventoryError sans rien modifier.
	DeductInventory(ctx context.Context, id gocql.UUID, qty int) (*models.Product, error)
	RestoreInventory(ctx context.Context, id gocql.UUID, qty int) (*models.Product, error)
	SetInventory(ctx context.Context, id gocql.UUID, count int) (*models.Product, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	ListChildren(ctx context.Context, parentID gocql.UUID) ([]models.Category, error)
	Get(ctx context.Context, id gocql.UUID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id gocql.UUID) error
}

type ReelRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Reel, error)
	Get(ctx context.Context, id gocql.UUID) (*models.Reel, error)
	Create(ctx context.Context, r *models.Reel) error
	Update(ctx context.Context, r *models.Reel) error
	Delete(ctx context.Context, id gocql.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Order, error)
	ListByEmail(ctx context.Context, email string) ([]models.Order, error)
	ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	// TransitionStatus applique to seulement si le statut courant vaut from.
	TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error)
	UpdatePayment(ctx context.Context, id string, p models.PaymentUpdate) error
	UpdateShipment(ctx context.Context, id string, s models.ShipmentInfo) error
}

type UserRepository interface {
	// Create retourne errs.ErrEmailTaken si l'email existe déjà.
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id gocql.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

type SupportRepository interface {
	Create(ctx context.Context, q *models.SupportQuery) error
	Get(ctx context.Context, id gocql.UUID) (*models.SupportQuery, error)
	List(ctx context.Context) ([]models.SupportQuery, error)
	ListByStatus(ctx context.Context, status string) ([]models.SupportQuery, error)
	ListByEmail(ctx context.Context, email string) ([]models.SupportQuery, error)
	Update(ctx context.Context, q *models.SupportQuery) error
}

type WishlistRepository interface {
	List(ctx context.Context, userID gocql.UUID) ([]models.WishlistItem, error)
	Add(ctx context.Context, item models.WishlistItem) error
	Remove(ctx context.Context, userID, productID gocql.UUID) error
}
