package repositories

import (
	"context"
	"errors"
	"time"

	"agendly/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// exclusionViolation is the SQLSTATE raised when the (professional, interval)
// exclusion constraint rejects an insert or update that slipped past the
// in-transaction conflict check.
const exclusionViolation = "23P01"

type AppointmentRepository interface {
	// CreateIfFree inserts the appointment unless it overlaps an existing
	// non-canceled appointment for the same professional. The conflict check and
	// the insert run in one transaction; on conflict the overlapping interval is
	// returned and nothing is written.
	CreateIfFree(ctx context.Context, appointment *models.Appointment) (*models.Interval, error)
	// RescheduleIfFree moves an appointment to [newStart, newEnd), checking every
	// appointment except the one being moved.
	RescheduleIfFree(ctx context.Context, tenantID, id uuid.UUID, newStart, newEnd time.Time) (*models.Interval, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.AppointmentStatus) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.AppointmentSearchFilter) ([]*models.Appointment, error)
	// ListBusyIntervals returns the occupied intervals of non-canceled
	// appointments intersecting [from, to), ordered chronologically.
	ListBusyIntervals(ctx context.Context, tenantID, professionalID uuid.UUID, from, to time.Time) ([]models.Interval, error)
	// ListStartingBetween returns SCHEDULED and CONFIRMED appointments starting
	// in [from, to) across all professionals of the tenant.
	ListStartingBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Appointment, error)
}

type appointmentRepo struct {
	db Database
}

func NewAppointmentRepo(db Database) AppointmentRepository {
	return &appointmentRepo{db: db}
}

const appointmentColumns = `id, tenant_id, professional_id, client_id, offering_id, starts_at, ends_at, status, notes, created_at, updated_at`

// overlapQuery finds one non-canceled appointment whose half-open interval
// intersects the proposed one. Back-to-back appointments do not match.
const overlapQuery = `
		SELECT starts_at, ends_at
		FROM appointments
		WHERE tenant_id = $1
			AND professional_id = $2
			AND status <> 'CANCELED'
			AND starts_at < $4
			AND ends_at > $3
			AND id <> $5
		LIMIT 1
	`

func (r *appointmentRepo) CreateIfFree(ctx context.Context, appointment *models.Appointment) (*models.Interval, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	conflict, err := findConflict(ctx, tx, appointment.TenantID, appointment.ProfessionalID,
		appointment.StartsAt, appointment.EndsAt, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return conflict, nil
	}

	insertQuery := `
		INSERT INTO appointments (id, tenant_id, professional_id, client_id, offering_id, starts_at, ends_at, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, insertQuery, appointment.ID, appointment.TenantID, appointment.ProfessionalID,
		appointment.ClientID, appointment.OfferingID, appointment.StartsAt, appointment.EndsAt,
		appointment.Status, appointment.Notes)
	if err != nil {
		if isExclusionViolation(err) {
			// The constraint caught a concurrent writer the check could not see.
			return &models.Interval{Start: appointment.StartsAt, End: appointment.EndsAt}, nil
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *appointmentRepo) RescheduleIfFree(ctx context.Context, tenantID, id uuid.UUID, newStart, newEnd time.Time) (*models.Interval, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var professionalID uuid.UUID
	lockQuery := `SELECT professional_id FROM appointments WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	if err := tx.QueryRow(ctx, lockQuery, tenantID, id).Scan(&professionalID); err != nil {
		return nil, err
	}

	conflict, err := findConflict(ctx, tx, tenantID, professionalID, newStart, newEnd, id)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return conflict, nil
	}

	updateQuery := `
		UPDATE appointments
		SET starts_at = $1, ends_at = $2, updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4
	`
	if _, err := tx.Exec(ctx, updateQuery, newStart, newEnd, tenantID, id); err != nil {
		if isExclusionViolation(err) {
			return &models.Interval{Start: newStart, End: newEnd}, nil
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func findConflict(ctx context.Context, tx pgx.Tx, tenantID, professionalID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (*models.Interval, error) {
	var conflict models.Interval
	err := tx.QueryRow(ctx, overlapQuery, tenantID, professionalID, start, end, excludeID).
		Scan(&conflict.Start, &conflict.End)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conflict, nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolation
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	tag, err := r.db.Exec(ctx, query, status, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	appointment := &models.Appointment{}
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&appointment.ID, &appointment.TenantID,
		&appointment.ProfessionalID, &appointment.ClientID, &appointment.OfferingID,
		&appointment.StartsAt, &appointment.EndsAt, &appointment.Status, &appointment.Notes,
		&appointment.CreatedAt, &appointment.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

func (r *appointmentRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.AppointmentSearchFilter) ([]*models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1
			AND ($2::uuid IS NULL OR professional_id = $2)
			AND ($3::uuid IS NULL OR client_id = $3)
			AND ($4::text IS NULL OR status = $4)
			AND ($5::timestamptz IS NULL OR starts_at >= $5)
			AND ($6::timestamptz IS NULL OR starts_at < $6)
		ORDER BY starts_at ASC
		LIMIT $7 OFFSET $8
	`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, query, tenantID, filter.ProfessionalID, filter.ClientID,
		filter.Status, filter.From, filter.To, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *appointmentRepo) ListBusyIntervals(ctx context.Context, tenantID, professionalID uuid.UUID, from, to time.Time) ([]models.Interval, error) {
	query := `
		SELECT starts_at, ends_at
		FROM appointments
		WHERE tenant_id = $1
			AND professional_id = $2
			AND status <> 'CANCELED'
			AND starts_at < $4
			AND ends_at > $3
		ORDER BY starts_at ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, professionalID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intervals []models.Interval
	for rows.Next() {
		var interval models.Interval
		if err := rows.Scan(&interval.Start, &interval.End); err != nil {
			return nil, err
		}
		intervals = append(intervals, interval)
	}
	return intervals, rows.Err()
}

func (r *appointmentRepo) ListStartingBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1
			AND status IN ('SCHEDULED', 'CONFIRMED')
			AND starts_at >= $2
			AND starts_at < $3
		ORDER BY starts_at ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	for rows.Next() {
		appointment := &models.Appointment{}
		if err := rows.Scan(&appointment.ID, &appointment.TenantID, &appointment.ProfessionalID,
			&appointment.ClientID, &appointment.OfferingID, &appointment.StartsAt, &appointment.EndsAt,
			&appointment.Status, &appointment.Notes, &appointment.CreatedAt, &appointment.UpdatedAt); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	return appointments, rows.Err()
}
