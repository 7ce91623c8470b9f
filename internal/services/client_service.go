package services

import (
	"context"
	"errors"

	"agendly/internal/models"
	"agendly/internal/repositories"

	"github.com/google/uuid"
)

type ClientService interface {
	Create(ctx context.Context, tenantID uuid.UUID, client *models.Client) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, tenantID uuid.UUID, client *models.Client) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error)
}

type clientService struct {
	clientRepo repositories.ClientRepository
}

func NewClientService(clientRepo repositories.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) Create(ctx context.Context, tenantID uuid.UUID, client *models.Client) error {
	if client.Name == "" {
		return errors.New("client name is required")
	}

	client.ID = uuid.New()
	client.TenantID = tenantID

	return s.clientRepo.Create(ctx, client)
}

func (s *clientService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	return s.clientRepo.GetByID(ctx, tenantID, id)
}

func (s *clientService) Update(ctx context.Context, tenantID uuid.UUID, client *models.Client) error {
	if client.Name == "" {
		return errors.New("client name is required")
	}
	client.TenantID = tenantID
	return s.clientRepo.Update(ctx, client)
}

func (s *clientService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.clientRepo.Delete(ctx, tenantID, id)
}

func (s *clientService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.clientRepo.List(ctx, tenantID, limit, offset)
}
