package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Category struct {
	ID            gocql.UUID  `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	ParentID      *gocql.UUID `json:"parent_id,omitempty"`
	ImageURL      string      `json:"image_url,omitempty"`
	CoverImageURL string      `json:"cover_image_url,omitempty"`
	Filter        string      `json:"filter"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
	Filter      string `json:"filter"`
}
