package models

import (
	"time"

	"github.com/google/uuid"
)

// Professional is a staff member with their own bookable calendar.
type Professional struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TenantID  uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	UserID    *uuid.UUID `json:"user_id" db:"user_id"`
	Name      string     `json:"name" db:"name"`
	Bio       *string    `json:"bio" db:"bio"`
	AvatarURL *string    `json:"avatar_url" db:"avatar_url"`
	Active    bool       `json:"active" db:"active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
