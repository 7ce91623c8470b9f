package services

import (
	"context"
	"errors"
	"log"
	"time"

	"agendly/internal/caching"
	"agendly/internal/common"
	"agendly/internal/models"
	"agendly/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tenantCacheTTL = 5 * time.Minute

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	// GetActiveBySlug returns the tenant for a resolved subdomain slug, or
	// common.ErrTenantNotFound when the slug is unknown or the tenant inactive.
	GetActiveBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	Update(ctx context.Context, req *UpdateTenantRequest) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	GetAvailablePlans() map[string]PlanConfig
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	cache      caching.CacheService
}

func NewTenantService(tenantRepo repositories.TenantRepository, cache caching.CacheService) TenantService {
	return &tenantService{tenantRepo: tenantRepo, cache: cache}
}

type CreateTenantRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
	Plan string `json:"plan"`
}

type UpdateTenantRequest struct {
	ID      uuid.UUID
	Name    string  `json:"name" validate:"required"`
	Plan    string  `json:"plan"`
	Status  string  `json:"status" validate:"required"`
	LogoURL *string `json:"logo_url"`
}

// PlanConfig represents a subscription plan configuration
type PlanConfig struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency"`
	Interval    string   `json:"interval"`
	Features    []string `json:"features"`
}

var availablePlans = map[string]PlanConfig{
	"starter": {
		ID:          "starter",
		Name:        "Starter",
		Description: "For solo professionals",
		Amount:      19.0,
		Currency:    "USD",
		Interval:    "monthly",
		Features: []string{
			"1 professional",
			"Unlimited appointments",
			"In-app notifications",
		},
	},
	"team": {
		ID:          "team",
		Name:        "Team",
		Description: "For studios and small teams",
		Amount:      49.0,
		Currency:    "USD",
		Interval:    "monthly",
		Features: []string{
			"Up to 10 professionals",
			"Blackout management",
			"Webhook notifications",
			"Priority support",
		},
	},
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if err := common.ValidateSlug(req.Slug); err != nil {
		return nil, err
	}
	plan := req.Plan
	if plan == "" {
		plan = "starter"
	}
	if _, ok := availablePlans[plan]; !ok {
		return nil, errors.New("unknown plan")
	}

	tenant := &models.Tenant{
		ID:     uuid.New(),
		Name:   req.Name,
		Slug:   req.Slug,
		Plan:   plan,
		Status: models.TenantStatusActive,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) GetActiveBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	if slug == "" {
		return nil, common.ErrTenantNotFound
	}

	if cached, err := s.cache.GetTenantBySlug(ctx, slug); err == nil && cached != nil {
		if !cached.IsActive() {
			return nil, common.ErrTenantNotFound
		}
		return cached, nil
	}

	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTenantNotFound
	}
	if err != nil {
		// Persistence failures must surface as 5xx, not as a missing tenant.
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, common.ErrTenantNotFound
	}

	if err := s.cache.SetTenantBySlug(ctx, tenant, tenantCacheTTL); err != nil {
		log.Printf("failed to cache tenant %s: %v", slug, err)
	}
	return tenant, nil
}

func (s *tenantService) Update(ctx context.Context, req *UpdateTenantRequest) error {
	existing, err := s.tenantRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	if req.Plan != "" {
		if _, ok := availablePlans[req.Plan]; !ok {
			return errors.New("unknown plan")
		}
		existing.Plan = req.Plan
	}
	existing.Name = req.Name
	existing.Status = req.Status
	if req.LogoURL != nil {
		existing.LogoURL = req.LogoURL
	}

	if err := s.tenantRepo.Update(ctx, existing); err != nil {
		return err
	}
	// Drop the cached record so subdomain routing sees the change immediately.
	if err := s.cache.DeleteTenantBySlug(ctx, existing.Slug); err != nil {
		log.Printf("failed to invalidate tenant cache for %s: %v", existing.Slug, err)
	}
	return nil
}

func (s *tenantService) Deactivate(ctx context.Context, id uuid.UUID) error {
	existing, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tenantRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	if err := s.cache.DeleteTenantBySlug(ctx, existing.Slug); err != nil {
		log.Printf("failed to invalidate tenant cache for %s: %v", existing.Slug, err)
	}
	return nil
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.tenantRepo.List(ctx, limit, offset)
}

func (s *tenantService) GetAvailablePlans() map[string]PlanConfig {
	return availablePlans
}
