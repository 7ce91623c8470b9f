package models

import (
	"time"

	"github.com/google/uuid"
)

// Blackout is a one-off unavailable interval (vacation, break) on a
// professional's calendar. Overlapping blackouts are tolerated and treated as
// a union when computing open slots.
type Blackout struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TenantID       uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ProfessionalID uuid.UUID `json:"professional_id" db:"professional_id"`
	StartsAt       time.Time `json:"starts_at" db:"starts_at"`
	EndsAt         time.Time `json:"ends_at" db:"ends_at"`
	Reason         *string   `json:"reason" db:"reason"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Interval returns the blackout as a half-open interval.
func (b *Blackout) Interval() Interval {
	return Interval{Start: b.StartsAt, End: b.EndsAt}
}
