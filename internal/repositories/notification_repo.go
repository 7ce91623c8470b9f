package repositories

import (
	"context"
	"time"

	"agendly/internal/models"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	// Broadcast inserts one feed row per active user of the tenant so the
	// announcement shows up in every recipient's feed.
	Broadcast(ctx context.Context, tenantID uuid.UUID, notificationType models.NotificationType, message string) error
	ListForUser(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) error
	// DeleteReadBefore prunes read feed rows older than the cutoff.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) error
}

type notificationRepo struct {
	db Database
}

func NewNotificationRepo(db Database) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (id, tenant_id, recipient_user_id, type, message, related_url, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, NOW())
	`
	_, err := r.db.Exec(ctx, query, notification.ID, notification.TenantID, notification.RecipientUserID,
		notification.Type, notification.Message, notification.RelatedURL)
	return err
}

func (r *notificationRepo) Broadcast(ctx context.Context, tenantID uuid.UUID, notificationType models.NotificationType, message string) error {
	query := `
		INSERT INTO notifications (id, tenant_id, recipient_user_id, type, message, read, created_at)
		SELECT gen_random_uuid(), u.tenant_id, u.id, $2, $3, false, NOW()
		FROM users u
		WHERE u.tenant_id = $1 AND u.status = 'active'
	`
	_, err := r.db.Exec(ctx, query, tenantID, notificationType, message)
	return err
}

func (r *notificationRepo) ListForUser(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	query := `
		SELECT id, tenant_id, recipient_user_id, type, message, related_url, read, created_at
		FROM notifications
		WHERE tenant_id = $1 AND recipient_user_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		notification := &models.Notification{}
		if err := rows.Scan(&notification.ID, &notification.TenantID, &notification.RecipientUserID,
			&notification.Type, &notification.Message, &notification.RelatedURL, &notification.Read,
			&notification.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}

func (r *notificationRepo) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE notifications SET read = true WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *notificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) error {
	query := `DELETE FROM notifications WHERE read = true AND created_at < $1`
	_, err := r.db.Exec(ctx, query, cutoff)
	return err
}
