package services

import (
	"context"
	"errors"

	"agendly/internal/models"
	"agendly/internal/repositories"

	"github.com/google/uuid"
)

type ProfessionalService interface {
	Create(ctx context.Context, tenantID uuid.UUID, professional *models.Professional) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Professional, error)
	Update(ctx context.Context, tenantID uuid.UUID, professional *models.Professional) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Professional, error)
	SetAvatarURL(ctx context.Context, tenantID, id uuid.UUID, url string) error
}

type professionalService struct {
	professionalRepo repositories.ProfessionalRepository
}

func NewProfessionalService(professionalRepo repositories.ProfessionalRepository) ProfessionalService {
	return &professionalService{professionalRepo: professionalRepo}
}

func (s *professionalService) Create(ctx context.Context, tenantID uuid.UUID, professional *models.Professional) error {
	if professional.Name == "" {
		return errors.New("professional name is required")
	}

	professional.ID = uuid.New()
	professional.TenantID = tenantID
	professional.Active = true

	return s.professionalRepo.Create(ctx, professional)
}

func (s *professionalService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Professional, error) {
	return s.professionalRepo.GetByID(ctx, tenantID, id)
}

func (s *professionalService) Update(ctx context.Context, tenantID uuid.UUID, professional *models.Professional) error {
	if professional.Name == "" {
		return errors.New("professional name is required")
	}
	professional.TenantID = tenantID
	return s.professionalRepo.Update(ctx, professional)
}

func (s *professionalService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.professionalRepo.Delete(ctx, tenantID, id)
}

func (s *professionalService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Professional, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.professionalRepo.List(ctx, tenantID, limit, offset)
}

func (s *professionalService) SetAvatarURL(ctx context.Context, tenantID, id uuid.UUID, url string) error {
	professional, err := s.professionalRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	professional.AvatarURL = &url
	return s.professionalRepo.Update(ctx, professional)
}
