package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID        gocql.UUID `json:"user_id"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	Name      string     `json:"name,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	Provider  string     `json:"provider"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
