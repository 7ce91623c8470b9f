package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	NotificationAppointmentCreated     NotificationType = "appointment_created"
	NotificationAppointmentRescheduled NotificationType = "appointment_rescheduled"
	NotificationAppointmentConfirmed   NotificationType = "appointment_confirmed"
	NotificationAppointmentCompleted   NotificationType = "appointment_completed"
	NotificationAppointmentCanceled    NotificationType = "appointment_canceled"
	NotificationAppointmentReminder    NotificationType = "appointment_reminder"
	NotificationSystemBroadcast        NotificationType = "system_broadcast"
)

// Notification is an emitted domain event rendered in the in-app feed. The
// scheduling core only guarantees at-least-once emission; delivery beyond the
// feed (webhook fan-out) is best-effort.
type Notification struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	TenantID        uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	RecipientUserID *uuid.UUID       `json:"recipient_user_id" db:"recipient_user_id"`
	Type            NotificationType `json:"type" db:"type"`
	Message         string           `json:"message" db:"message"`
	RelatedURL      *string          `json:"related_url" db:"related_url"`
	Read            bool             `json:"read" db:"read"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}
