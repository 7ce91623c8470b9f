package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AvailabilityRule is one entry of a professional's recurring weekly template:
// on Weekday the professional is open from StartMinute to EndMinute (minutes
// after midnight, half-open). At most one rule exists per (professional, weekday);
// the whole week is replaced atomically on update, never patched per day.
type AvailabilityRule struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TenantID       uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ProfessionalID uuid.UUID `json:"professional_id" db:"professional_id"`
	Weekday        int       `json:"weekday" db:"weekday"` // 0=Sunday .. 6=Saturday
	StartMinute    int       `json:"start_minute" db:"start_minute"`
	EndMinute      int       `json:"end_minute" db:"end_minute"`
}

// Validate checks the rule's internal consistency.
func (r *AvailabilityRule) Validate() error {
	if r.Weekday < 0 || r.Weekday > 6 {
		return fmt.Errorf("weekday must be between 0 and 6, got %d", r.Weekday)
	}
	if r.StartMinute < 0 || r.EndMinute > 24*60 {
		return fmt.Errorf("rule times must fall within a single day")
	}
	if r.StartMinute >= r.EndMinute {
		return fmt.Errorf("rule start must be before end")
	}
	return nil
}

// WindowOn projects the rule onto a concrete calendar day in the given location.
// The day's weekday must match the rule's weekday; callers are expected to have
// selected the rule by weekday already.
func (r *AvailabilityRule) WindowOn(day time.Time) Interval {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return Interval{
		Start: midnight.Add(time.Duration(r.StartMinute) * time.Minute),
		End:   midnight.Add(time.Duration(r.EndMinute) * time.Minute),
	}
}

// Interval is a half-open time interval [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect. Back-to-back
// intervals, where one ends exactly when the other starts, do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// IsValid reports whether the interval is non-empty.
func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}
