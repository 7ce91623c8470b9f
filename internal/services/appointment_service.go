package services

import (
	"context"
	"fmt"
	"time"

	"agendly/internal/common"
	"agendly/internal/models"
	"agendly/internal/repositories"

	"github.com/google/uuid"
)

// AppointmentService orchestrates booking: reference validation, duration
// snapshotting, the transactional conflict check, the status state machine and
// event emission.
type AppointmentService interface {
	Create(ctx context.Context, req *CreateAppointmentRequest) (*models.Appointment, error)
	Reschedule(ctx context.Context, tenantID, id uuid.UUID, newStart time.Time) (*models.Appointment, error)
	ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, newStatus models.AppointmentStatus) (*models.Appointment, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.AppointmentSearchFilter) ([]*models.Appointment, error)
}

type CreateAppointmentRequest struct {
	TenantID       uuid.UUID `json:"-"`
	ClientID       uuid.UUID `json:"client_id"`
	OfferingID     uuid.UUID `json:"offering_id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	StartsAt       time.Time `json:"starts_at"`
	Notes          *string   `json:"notes"`
}

type appointmentService struct {
	appointmentRepo  repositories.AppointmentRepository
	professionalRepo repositories.ProfessionalRepository
	clientRepo       repositories.ClientRepository
	offeringRepo     repositories.OfferingRepository
	notifier         NotificationService
}

func NewAppointmentService(appointmentRepo repositories.AppointmentRepository,
	professionalRepo repositories.ProfessionalRepository,
	clientRepo repositories.ClientRepository,
	offeringRepo repositories.OfferingRepository,
	notifier NotificationService) AppointmentService {
	return &appointmentService{
		appointmentRepo:  appointmentRepo,
		professionalRepo: professionalRepo,
		clientRepo:       clientRepo,
		offeringRepo:     offeringRepo,
		notifier:         notifier,
	}
}

func (s *appointmentService) Create(ctx context.Context, req *CreateAppointmentRequest) (*models.Appointment, error) {
	professional, err := s.professionalRepo.GetByID(ctx, req.TenantID, req.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("professional lookup failed: %w", err)
	}
	client, err := s.clientRepo.GetByID(ctx, req.TenantID, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("client lookup failed: %w", err)
	}
	offering, err := s.offeringRepo.GetByID(ctx, req.TenantID, req.OfferingID)
	if err != nil {
		return nil, fmt.Errorf("offering lookup failed: %w", err)
	}

	// The offering duration is frozen into ends_at here. Later edits to the
	// offering never move appointments already on the books.
	appointment := &models.Appointment{
		ID:             uuid.New(),
		TenantID:       req.TenantID,
		ProfessionalID: req.ProfessionalID,
		ClientID:       req.ClientID,
		OfferingID:     req.OfferingID,
		StartsAt:       req.StartsAt,
		EndsAt:         req.StartsAt.Add(offering.Duration()),
		Status:         models.AppointmentScheduled,
		Notes:          req.Notes,
	}

	conflict, err := s.appointmentRepo.CreateIfFree(ctx, appointment)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &common.SchedulingConflictError{ConflictStart: conflict.Start, ConflictEnd: conflict.End}
	}

	s.notifier.Dispatch(AppointmentEvent{
		TenantID:        appointment.TenantID,
		RecipientUserID: professional.UserID,
		Type:            models.NotificationAppointmentCreated,
		Message: fmt.Sprintf("%s booked %s with %s at %s",
			client.Name, offering.Name, professional.Name, appointment.StartsAt.Format(time.RFC3339)),
		AppointmentID: appointment.ID,
	})

	return appointment, nil
}

func (s *appointmentService) Reschedule(ctx context.Context, tenantID, id uuid.UUID, newStart time.Time) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	// Keep the snapshotted duration, not the offering's current one.
	duration := appointment.EndsAt.Sub(appointment.StartsAt)
	newEnd := newStart.Add(duration)

	conflict, err := s.appointmentRepo.RescheduleIfFree(ctx, tenantID, id, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &common.SchedulingConflictError{ConflictStart: conflict.Start, ConflictEnd: conflict.End}
	}

	appointment.StartsAt = newStart
	appointment.EndsAt = newEnd

	s.notifier.Dispatch(AppointmentEvent{
		TenantID:      tenantID,
		Type:          models.NotificationAppointmentRescheduled,
		Message:       fmt.Sprintf("appointment moved to %s", newStart.Format(time.RFC3339)),
		AppointmentID: id,
	})

	return appointment, nil
}

// statusEvents maps the transitions that emit a notification. NO_SHOW
// deliberately emits nothing.
var statusEvents = map[models.AppointmentStatus]models.NotificationType{
	models.AppointmentConfirmed: models.NotificationAppointmentConfirmed,
	models.AppointmentCompleted: models.NotificationAppointmentCompleted,
	models.AppointmentCanceled:  models.NotificationAppointmentCanceled,
}

func (s *appointmentService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, newStatus models.AppointmentStatus) (*models.Appointment, error) {
	if !newStatus.IsValid() {
		return nil, &common.InvalidTransitionError{From: "", To: string(newStatus)}
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.CanTransitionTo(newStatus) {
		return nil, &common.InvalidTransitionError{From: string(appointment.Status), To: string(newStatus)}
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, tenantID, id, newStatus); err != nil {
		return nil, err
	}
	appointment.Status = newStatus

	if eventType, ok := statusEvents[newStatus]; ok {
		s.notifier.Dispatch(AppointmentEvent{
			TenantID:      tenantID,
			Type:          eventType,
			Message:       fmt.Sprintf("appointment is now %s", newStatus),
			AppointmentID: id,
		})
	}

	return appointment, nil
}

// Cancel never deletes the row; history is preserved and the slot becomes
// bookable again because canceled appointments are excluded from conflicts.
func (s *appointmentService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	return s.ChangeStatus(ctx, tenantID, id, models.AppointmentCanceled)
}

func (s *appointmentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	return s.appointmentRepo.GetByID(ctx, tenantID, id)
}

func (s *appointmentService) List(ctx context.Context, tenantID uuid.UUID, filter *models.AppointmentSearchFilter) ([]*models.Appointment, error) {
	return s.appointmentRepo.List(ctx, tenantID, filter)
}
