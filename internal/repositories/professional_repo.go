package repositories

import (
	"context"

	"agendly/internal/models"

	"github.com/google/uuid"
)

type ProfessionalRepository interface {
	Create(ctx context.Context, professional *models.Professional) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Professional, error)
	Update(ctx context.Context, professional *models.Professional) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Professional, error)
}

type professionalRepo struct {
	db Database
}

func NewProfessionalRepo(db Database) ProfessionalRepository {
	return &professionalRepo{db: db}
}

func (r *professionalRepo) Create(ctx context.Context, professional *models.Professional) error {
	query := `
		INSERT INTO professionals (id, tenant_id, user_id, name, bio, avatar_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, professional.ID, professional.TenantID, professional.UserID,
		professional.Name, professional.Bio, professional.AvatarURL, professional.Active)
	return err
}

func (r *professionalRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Professional, error) {
	professional := &models.Professional{}
	query := `
		SELECT id, tenant_id, user_id, name, bio, avatar_url, active, created_at, updated_at
		FROM professionals
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&professional.ID, &professional.TenantID,
		&professional.UserID, &professional.Name, &professional.Bio, &professional.AvatarURL,
		&professional.Active, &professional.CreatedAt, &professional.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return professional, nil
}

func (r *professionalRepo) Update(ctx context.Context, professional *models.Professional) error {
	query := `
		UPDATE professionals
		SET name = $1, bio = $2, avatar_url = $3, active = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, professional.Name, professional.Bio, professional.AvatarURL,
		professional.Active, professional.TenantID, professional.ID)
	return err
}

func (r *professionalRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM professionals WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *professionalRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Professional, error) {
	query := `
		SELECT id, tenant_id, user_id, name, bio, avatar_url, active, created_at, updated_at
		FROM professionals
		WHERE tenant_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var professionals []*models.Professional
	for rows.Next() {
		professional := &models.Professional{}
		if err := rows.Scan(&professional.ID, &professional.TenantID, &professional.UserID,
			&professional.Name, &professional.Bio, &professional.AvatarURL, &professional.Active,
			&professional.CreatedAt, &professional.UpdatedAt); err != nil {
			return nil, err
		}
		professionals = append(professionals, professional)
	}
	return professionals, rows.Err()
}
