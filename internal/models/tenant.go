package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant statuses
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	Plan      string    `json:"plan" db:"plan"`
	Status    string    `json:"status" db:"status"`
	LogoURL   *string   `json:"logo_url" db:"logo_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the tenant may serve booking traffic.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
