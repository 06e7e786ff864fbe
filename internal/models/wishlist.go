package models

import (
	"time"

	"github.com/gocql/gocql"
)

type WishlistItem struct {
	UserID    gocql.UUID `json:"user_id" db:"user_id"`
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	AddedAt   time.Time  `json:"added_at" db:"added_at"`
}
