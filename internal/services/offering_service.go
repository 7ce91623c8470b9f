package services

import (
	"context"
	"errors"
	"log"
	"time"

	"agendly/internal/caching"
	"agendly/internal/models"
	"agendly/internal/repositories"

	"github.com/google/uuid"
)

const offeringCacheTTL = 10 * time.Minute

type OfferingService interface {
	Create(ctx context.Context, tenantID uuid.UUID, offering *models.Offering) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Offering, error)
	Update(ctx context.Context, tenantID uuid.UUID, offering *models.Offering) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Offering, error)
}

type offeringService struct {
	offeringRepo repositories.OfferingRepository
	cache        caching.CacheService
}

func NewOfferingService(offeringRepo repositories.OfferingRepository, cache caching.CacheService) OfferingService {
	return &offeringService{offeringRepo: offeringRepo, cache: cache}
}

func (s *offeringService) Create(ctx context.Context, tenantID uuid.UUID, offering *models.Offering) error {
	if offering.Name == "" {
		return errors.New("offering name is required")
	}
	if offering.DurationMinutes <= 0 {
		return errors.New("offering duration must be greater than 0")
	}

	offering.ID = uuid.New()
	offering.TenantID = tenantID
	offering.Active = true

	return s.offeringRepo.Create(ctx, offering)
}

func (s *offeringService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Offering, error) {
	if cached, err := s.cache.GetOffering(ctx, tenantID, id); err == nil && cached != nil {
		return cached, nil
	}

	offering, err := s.offeringRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetOffering(ctx, tenantID, offering, offeringCacheTTL); err != nil {
		log.Printf("failed to cache offering %s: %v", id, err)
	}
	return offering, nil
}

// Update edits the catalog entry. Existing appointments keep their snapshotted
// end times; duration changes only affect future bookings.
func (s *offeringService) Update(ctx context.Context, tenantID uuid.UUID, offering *models.Offering) error {
	if offering.Name == "" {
		return errors.New("offering name is required")
	}
	if offering.DurationMinutes <= 0 {
		return errors.New("offering duration must be greater than 0")
	}
	offering.TenantID = tenantID

	if err := s.offeringRepo.Update(ctx, offering); err != nil {
		return err
	}
	if err := s.cache.DeleteOffering(ctx, tenantID, offering.ID); err != nil {
		log.Printf("failed to invalidate offering cache %s: %v", offering.ID, err)
	}
	return nil
}

func (s *offeringService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.offeringRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.cache.DeleteOffering(ctx, tenantID, id); err != nil {
		log.Printf("failed to invalidate offering cache %s: %v", id, err)
	}
	return nil
}

func (s *offeringService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Offering, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.offeringRepo.List(ctx, tenantID, limit, offset)
}
