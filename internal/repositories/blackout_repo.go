package repositories

import (
	"context"
	"time"

	"agendly/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BlackoutRepository interface {
	Create(ctx context.Context, blackout *models.Blackout) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.Blackout, error)
	// ListInRange returns blackouts intersecting the half-open range [from, to).
	ListInRange(ctx context.Context, tenantID, professionalID uuid.UUID, from, to time.Time) ([]*models.Blackout, error)
}

type blackoutRepo struct {
	db Database
}

func NewBlackoutRepo(db Database) BlackoutRepository {
	return &blackoutRepo{db: db}
}

func (r *blackoutRepo) Create(ctx context.Context, blackout *models.Blackout) error {
	query := `
		INSERT INTO blackouts (id, tenant_id, professional_id, starts_at, ends_at, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, blackout.ID, blackout.TenantID, blackout.ProfessionalID,
		blackout.StartsAt, blackout.EndsAt, blackout.Reason)
	return err
}

func (r *blackoutRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM blackouts WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *blackoutRepo) List(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.Blackout, error) {
	query := `
		SELECT id, tenant_id, professional_id, starts_at, ends_at, reason, created_at
		FROM blackouts
		WHERE tenant_id = $1 AND professional_id = $2
		ORDER BY starts_at ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBlackouts(rows)
}

func (r *blackoutRepo) ListInRange(ctx context.Context, tenantID, professionalID uuid.UUID, from, to time.Time) ([]*models.Blackout, error) {
	query := `
		SELECT id, tenant_id, professional_id, starts_at, ends_at, reason, created_at
		FROM blackouts
		WHERE tenant_id = $1 AND professional_id = $2
			AND starts_at < $4
			AND ends_at > $3
		ORDER BY starts_at ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, professionalID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBlackouts(rows)
}

func scanBlackouts(rows pgx.Rows) ([]*models.Blackout, error) {
	var blackouts []*models.Blackout
	for rows.Next() {
		blackout := &models.Blackout{}
		if err := rows.Scan(&blackout.ID, &blackout.TenantID, &blackout.ProfessionalID,
			&blackout.StartsAt, &blackout.EndsAt, &blackout.Reason, &blackout.CreatedAt); err != nil {
			return nil, err
		}
		blackouts = append(blackouts, blackout)
	}
	return blackouts, rows.Err()
}
