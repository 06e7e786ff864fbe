package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	SupportOpen       = "open"
	SupportInProgress = "in_progress"
	SupportResolved   = "resolved"
	SupportClosed     = "closed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type SupportQuery struct {
	ID            gocql.UUID `json:"id"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	Subject       string     `json:"subject"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type SupportUpdate struct {
	Status     string  `json:"status"`
	Priority   string  `json:"priority"`
	AdminNotes *string `json:"admin_notes"`
}
