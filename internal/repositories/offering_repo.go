package repositories

import (
	"context"

	"agendly/internal/models"

	"github.com/google/uuid"
)

type OfferingRepository interface {
	Create(ctx context.Context, offering *models.Offering) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Offering, error)
	Update(ctx context.Context, offering *models.Offering) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Offering, error)
}

type offeringRepo struct {
	db Database
}

func NewOfferingRepo(db Database) OfferingRepository {
	return &offeringRepo{db: db}
}

func (r *offeringRepo) Create(ctx context.Context, offering *models.Offering) error {
	query := `
		INSERT INTO offerings (id, tenant_id, name, description, duration_minutes, price_cents, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, offering.ID, offering.TenantID, offering.Name, offering.Description,
		offering.DurationMinutes, offering.PriceCents, offering.Active)
	return err
}

func (r *offeringRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Offering, error) {
	offering := &models.Offering{}
	query := `
		SELECT id, tenant_id, name, description, duration_minutes, price_cents, active, created_at, updated_at
		FROM offerings
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&offering.ID, &offering.TenantID, &offering.Name,
		&offering.Description, &offering.DurationMinutes, &offering.PriceCents, &offering.Active,
		&offering.CreatedAt, &offering.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return offering, nil
}

func (r *offeringRepo) Update(ctx context.Context, offering *models.Offering) error {
	query := `
		UPDATE offerings
		SET name = $1, description = $2, duration_minutes = $3, price_cents = $4, active = $5, updated_at = NOW()
		WHERE tenant_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query, offering.Name, offering.Description, offering.DurationMinutes,
		offering.PriceCents, offering.Active, offering.TenantID, offering.ID)
	return err
}

func (r *offeringRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM offerings WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *offeringRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Offering, error) {
	query := `
		SELECT id, tenant_id, name, description, duration_minutes, price_cents, active, created_at, updated_at
		FROM offerings
		WHERE tenant_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offerings []*models.Offering
	for rows.Next() {
		offering := &models.Offering{}
		if err := rows.Scan(&offering.ID, &offering.TenantID, &offering.Name, &offering.Description,
			&offering.DurationMinutes, &offering.PriceCents, &offering.Active, &offering.CreatedAt,
			&offering.UpdatedAt); err != nil {
			return nil, err
		}
		offerings = append(offerings, offering)
	}
	return offerings, rows.Err()
}
