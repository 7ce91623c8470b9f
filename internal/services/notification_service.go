package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"agendly/internal/caching"
	"agendly/internal/models"
	"agendly/internal/repositories"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	notificationRetryKey   = "agendly:notifications:retry"
	webhookKeyFormat       = "agendly:webhook:%s"
	maxDeliveryAttempts    = 3
	dispatchBufferCapacity = 256
)

// AppointmentEvent is the domain event the scheduler emits. Dispatch is
// fire-and-forget: a slow or failing notification path never delays or fails
// the booking transaction.
type AppointmentEvent struct {
	TenantID        uuid.UUID               `json:"tenant_id"`
	RecipientUserID *uuid.UUID              `json:"recipient_user_id,omitempty"`
	Type            models.NotificationType `json:"type"`
	Message         string                  `json:"message"`
	AppointmentID   uuid.UUID               `json:"appointment_id"`
	Attempts        int                     `json:"attempts"`
}

// NotificationService receives domain events and gets them to recipients:
// in-app feed rows always, webhook fan-out when the tenant configured one.
type NotificationService interface {
	Dispatch(event AppointmentEvent)
	Broadcast(ctx context.Context, tenantID uuid.UUID, message string) error
	ListForUser(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) error
	SetWebhookURL(ctx context.Context, tenantID uuid.UUID, url string) error
	RetryFailed(ctx context.Context) error
	Start()
	Stop()
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	redisClient      *redis.Client
	cache            caching.CacheService
	httpClient       *http.Client
	events           chan AppointmentEvent
	done             chan struct{}
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, redisClient *redis.Client, cache caching.CacheService) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		redisClient:      redisClient,
		cache:            cache,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		events:           make(chan AppointmentEvent, dispatchBufferCapacity),
		done:             make(chan struct{}),
	}
}

// Dispatch hands the event to the delivery worker without blocking the caller.
// If the buffer is full the event goes straight to the redis retry queue so
// at-least-once emission still holds.
func (s *notificationService) Dispatch(event AppointmentEvent) {
	select {
	case s.events <- event:
	default:
		log.Printf("notification buffer full, queueing event for retry: %s", event.Type)
		s.queueForRetry(context.Background(), event)
	}
}

func (s *notificationService) Start() {
	go s.run()
}

func (s *notificationService) Stop() {
	close(s.done)
}

func (s *notificationService) run() {
	for {
		select {
		case event := <-s.events:
			s.deliver(context.Background(), event)
		case <-s.done:
			// Drain what is already buffered before exiting.
			for {
				select {
				case event := <-s.events:
					s.deliver(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

func (s *notificationService) deliver(ctx context.Context, event AppointmentEvent) {
	relatedURL := fmt.Sprintf("/appointments/%s", event.AppointmentID)
	notification := &models.Notification{
		ID:              uuid.New(),
		TenantID:        event.TenantID,
		RecipientUserID: event.RecipientUserID,
		Type:            event.Type,
		Message:         event.Message,
		RelatedURL:      &relatedURL,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("failed to persist notification %s: %v", event.Type, err)
		event.Attempts++
		s.queueForRetry(ctx, event)
		return
	}

	s.fanOutWebhook(ctx, event)
}

func (s *notificationService) fanOutWebhook(ctx context.Context, event AppointmentEvent) {
	url, err := s.cache.GetString(ctx, fmt.Sprintf(webhookKeyFormat, event.TenantID))
	if err != nil {
		log.Printf("webhook lookup failed for tenant %s: %v", event.TenantID, err)
		return
	}
	if url == "" {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":           event.Type,
		"message":        event.Message,
		"appointment_id": event.AppointmentID,
		"timestamp":      time.Now().UTC(),
	})
	if err != nil {
		log.Printf("failed to marshal webhook payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		log.Printf("failed to create webhook request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", event.TenantID.String())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("webhook delivery failed for tenant %s: %v", event.TenantID, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("webhook for tenant %s returned status %d", event.TenantID, resp.StatusCode)
	}
}

func (s *notificationService) queueForRetry(ctx context.Context, event AppointmentEvent) {
	if event.Attempts >= maxDeliveryAttempts {
		log.Printf("dropping notification after %d attempts: %s", event.Attempts, event.Type)
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal event for retry: %v", err)
		return
	}
	if err := s.redisClient.RPush(ctx, notificationRetryKey, data).Err(); err != nil {
		log.Printf("failed to queue notification for retry: %v", err)
	}
}

// RetryFailed drains the redis retry queue; the background scheduler calls
// this periodically.
func (s *notificationService) RetryFailed(ctx context.Context) error {
	for {
		data, err := s.redisClient.LPop(ctx, notificationRetryKey).Bytes()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}

		var event AppointmentEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("discarding malformed retry entry: %v", err)
			continue
		}
		s.deliver(ctx, event)
	}
}

// Broadcast fans a tenant-wide announcement out to every active user's feed.
func (s *notificationService) Broadcast(ctx context.Context, tenantID uuid.UUID, message string) error {
	return s.notificationRepo.Broadcast(ctx, tenantID, models.NotificationSystemBroadcast, message)
}

func (s *notificationService) ListForUser(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.notificationRepo.ListForUser(ctx, tenantID, userID, limit, offset)
}

func (s *notificationService) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, tenantID, id)
}

// SetWebhookURL stores or clears the tenant's outbound webhook endpoint. An
// empty URL removes the configuration.
func (s *notificationService) SetWebhookURL(ctx context.Context, tenantID uuid.UUID, url string) error {
	key := fmt.Sprintf(webhookKeyFormat, tenantID)
	if url == "" {
		return s.cache.Delete(ctx, key)
	}
	return s.cache.SetString(ctx, key, url, 0)
}
