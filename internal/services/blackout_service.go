package services

import (
	"context"
	"errors"
	"time"

	"agendly/internal/models"
	"agendly/internal/repositories"

	"github.com/google/uuid"
)

type BlackoutService interface {
	Create(ctx context.Context, tenantID uuid.UUID, blackout *models.Blackout) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.Blackout, error)
}

type blackoutService struct {
	blackoutRepo repositories.BlackoutRepository
}

func NewBlackoutService(blackoutRepo repositories.BlackoutRepository) BlackoutService {
	return &blackoutService{blackoutRepo: blackoutRepo}
}

func (s *blackoutService) Create(ctx context.Context, tenantID uuid.UUID, blackout *models.Blackout) error {
	if !blackout.StartsAt.Before(blackout.EndsAt) {
		return errors.New("blackout start must be before end")
	}
	if blackout.ProfessionalID == uuid.Nil {
		return errors.New("professional_id is required")
	}

	blackout.ID = uuid.New()
	blackout.TenantID = tenantID
	blackout.CreatedAt = time.Now().UTC()

	return s.blackoutRepo.Create(ctx, blackout)
}

func (s *blackoutService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.blackoutRepo.Delete(ctx, tenantID, id)
}

func (s *blackoutService) List(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.Blackout, error) {
	return s.blackoutRepo.List(ctx, tenantID, professionalID)
}
