package repositories

import (
	"context"

	"agendly/internal/models"

	"github.com/google/uuid"
)

type AvailabilityRepository interface {
	GetWeek(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.AvailabilityRule, error)
	// ReplaceWeek rewrites the professional's whole weekly template in one
	// transaction. Days absent from rules are removed; concurrent readers never
	// observe a torn week.
	ReplaceWeek(ctx context.Context, tenantID, professionalID uuid.UUID, rules []*models.AvailabilityRule) error
}

type availabilityRepo struct {
	db Database
}

func NewAvailabilityRepo(db Database) AvailabilityRepository {
	return &availabilityRepo{db: db}
}

func (r *availabilityRepo) GetWeek(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.AvailabilityRule, error) {
	query := `
		SELECT id, tenant_id, professional_id, weekday, start_minute, end_minute
		FROM availability_rules
		WHERE tenant_id = $1 AND professional_id = $2
		ORDER BY weekday ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.AvailabilityRule
	for rows.Next() {
		rule := &models.AvailabilityRule{}
		if err := rows.Scan(&rule.ID, &rule.TenantID, &rule.ProfessionalID, &rule.Weekday,
			&rule.StartMinute, &rule.EndMinute); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *availabilityRepo) ReplaceWeek(ctx context.Context, tenantID, professionalID uuid.UUID, rules []*models.AvailabilityRule) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deleteQuery := `DELETE FROM availability_rules WHERE tenant_id = $1 AND professional_id = $2`
	if _, err := tx.Exec(ctx, deleteQuery, tenantID, professionalID); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO availability_rules (id, tenant_id, professional_id, weekday, start_minute, end_minute)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, rule := range rules {
		if _, err := tx.Exec(ctx, insertQuery, rule.ID, tenantID, professionalID,
			rule.Weekday, rule.StartMinute, rule.EndMinute); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
