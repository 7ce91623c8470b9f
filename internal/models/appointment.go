package models

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCanceled  AppointmentStatus = "CANCELED"
	AppointmentNoShow    AppointmentStatus = "NO_SHOW"
)

// allowedTransitions is the authoritative state table. COMPLETED, CANCELED and
// NO_SHOW are terminal.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentConfirmed, AppointmentCanceled, AppointmentNoShow},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCanceled, AppointmentNoShow},
	AppointmentCompleted: {},
	AppointmentCanceled:  {},
	AppointmentNoShow:    {},
}

// IsValid reports whether s is one of the defined statuses.
func (s AppointmentStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed by the
// state table.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is a booked interval on one professional's calendar. EndsAt is
// frozen at creation from the offering's duration; rows are never deleted,
// cancellation is a status transition.
type Appointment struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	TenantID       uuid.UUID         `json:"tenant_id" db:"tenant_id"`
	ProfessionalID uuid.UUID         `json:"professional_id" db:"professional_id"`
	ClientID       uuid.UUID         `json:"client_id" db:"client_id"`
	OfferingID     uuid.UUID         `json:"offering_id" db:"offering_id"`
	StartsAt       time.Time         `json:"starts_at" db:"starts_at"`
	EndsAt         time.Time         `json:"ends_at" db:"ends_at"`
	Status         AppointmentStatus `json:"status" db:"status"`
	Notes          *string           `json:"notes" db:"notes"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// Interval returns the appointment's occupied interval.
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartsAt, End: a.EndsAt}
}

// AppointmentSearchFilter holds filter criteria for appointment listings.
type AppointmentSearchFilter struct {
	ProfessionalID *uuid.UUID         `json:"professional_id,omitempty"`
	ClientID       *uuid.UUID         `json:"client_id,omitempty"`
	Status         *AppointmentStatus `json:"status,omitempty"`
	From           *time.Time         `json:"from,omitempty"`
	To             *time.Time         `json:"to,omitempty"`
	Limit          int                `json:"limit,omitempty"`
	Offset         int                `json:"offset,omitempty"`
}
