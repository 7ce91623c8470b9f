package models

import (
	"time"

	"github.com/google/uuid"
)

// Offering is a bookable service in a tenant's catalog. DurationMinutes is
// snapshotted into appointments at booking time; editing an offering never
// changes the end time of appointments already on the books.
type Offering struct {
	ID              uuid.UUID `json:"id" db:"id"`
	TenantID        uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name            string    `json:"name" db:"name"`
	Description     *string   `json:"description" db:"description"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	PriceCents      int       `json:"price_cents" db:"price_cents"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Duration returns the offering duration as a time.Duration.
func (o *Offering) Duration() time.Duration {
	return time.Duration(o.DurationMinutes) * time.Minute
}
