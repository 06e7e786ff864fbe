package models

import "github.com/gocql/gocql"

type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ProductID gocql.UUID `json:"product_id" binding:"required"`
	Quantity  int        `json:"quantity" binding:"required,gt=0"`
	Size      string     `json:"size,omitempty"`
}
