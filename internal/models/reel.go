package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Reel est une vidéo marketing liée à une catégorie.
type Reel struct {
	ID           gocql.UUID  `json:"id"`
	Title        string      `json:"title"`
	CategoryID   *gocql.UUID `json:"category_id,omitempty"`
	VideoURL     string      `json:"video_url"`
	DisplayOrder int         `json:"display_order"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type ReelInput struct {
	Title        string `json:"title" binding:"required"`
	CategoryID   string `json:"category_id"`
	VideoURL     string `json:"video_url"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}
