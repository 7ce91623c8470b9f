package services

import (
	"context"
	"errors"
	"time"

	"agendly/internal/models"
	"agendly/internal/repositories"

	"github.com/google/uuid"
)

// ErrInvalidRange reports a query range whose start is not before its end.
var ErrInvalidRange = errors.New("range start must be before range end")

// AvailabilityService derives a professional's bookable windows from the weekly
// template minus blackouts minus existing appointments. Read-only; the
// authoritative check at write time is the transactional conflict check in the
// appointment repository.
type AvailabilityService interface {
	OpenSlots(ctx context.Context, tenantID, professionalID uuid.UUID, from, to time.Time) ([]models.Interval, error)
	GetWeek(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.AvailabilityRule, error)
	ReplaceWeek(ctx context.Context, tenantID, professionalID uuid.UUID, rules []*models.AvailabilityRule) error
}

type availabilityService struct {
	availabilityRepo repositories.AvailabilityRepository
	blackoutRepo     repositories.BlackoutRepository
	appointmentRepo  repositories.AppointmentRepository
}

func NewAvailabilityService(availabilityRepo repositories.AvailabilityRepository,
	blackoutRepo repositories.BlackoutRepository,
	appointmentRepo repositories.AppointmentRepository) AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		blackoutRepo:     blackoutRepo,
		appointmentRepo:  appointmentRepo,
	}
}

func (s *availabilityService) OpenSlots(ctx context.Context, tenantID, professionalID uuid.UUID, from, to time.Time) ([]models.Interval, error) {
	if !from.Before(to) {
		return nil, ErrInvalidRange
	}

	rules, err := readRetry(ctx, func() ([]*models.AvailabilityRule, error) {
		return s.availabilityRepo.GetWeek(ctx, tenantID, professionalID)
	})
	if err != nil {
		return nil, err
	}
	ruleByWeekday := make(map[int]*models.AvailabilityRule, len(rules))
	for _, rule := range rules {
		ruleByWeekday[rule.Weekday] = rule
	}

	blackouts, err := readRetry(ctx, func() ([]*models.Blackout, error) {
		return s.blackoutRepo.ListInRange(ctx, tenantID, professionalID, from, to)
	})
	if err != nil {
		return nil, err
	}

	busy, err := readRetry(ctx, func() ([]models.Interval, error) {
		return s.appointmentRepo.ListBusyIntervals(ctx, tenantID, professionalID, from, to)
	})
	if err != nil {
		return nil, err
	}

	var slots []models.Interval
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		rule, ok := ruleByWeekday[int(day.Weekday())]
		if !ok {
			continue
		}

		windows := []models.Interval{rule.WindowOn(day)}
		for _, blackout := range blackouts {
			windows = subtract(windows, blackout.Interval())
		}
		for _, interval := range busy {
			windows = subtract(windows, interval)
		}

		for _, window := range windows {
			if clipped, ok := clip(window, from, to); ok {
				slots = append(slots, clipped)
			}
		}
	}
	return slots, nil
}

func (s *availabilityService) GetWeek(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.AvailabilityRule, error) {
	return s.availabilityRepo.GetWeek(ctx, tenantID, professionalID)
}

func (s *availabilityService) ReplaceWeek(ctx context.Context, tenantID, professionalID uuid.UUID, rules []*models.AvailabilityRule) error {
	seen := make(map[int]bool, len(rules))
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return err
		}
		if seen[rule.Weekday] {
			return errors.New("at most one rule per weekday is allowed")
		}
		seen[rule.Weekday] = true
		if rule.ID == uuid.Nil {
			rule.ID = uuid.New()
		}
		rule.TenantID = tenantID
		rule.ProfessionalID = professionalID
	}
	return s.availabilityRepo.ReplaceWeek(ctx, tenantID, professionalID, rules)
}

// subtract removes busy from every window, splitting windows that the busy
// interval punches a hole into. Half-open semantics: touching endpoints do not
// reduce a window.
func subtract(windows []models.Interval, busy models.Interval) []models.Interval {
	if !busy.IsValid() {
		return windows
	}
	result := windows[:0:0]
	for _, window := range windows {
		if !window.Overlaps(busy) {
			result = append(result, window)
			continue
		}
		if window.Start.Before(busy.Start) {
			result = append(result, models.Interval{Start: window.Start, End: busy.Start})
		}
		if busy.End.Before(window.End) {
			result = append(result, models.Interval{Start: busy.End, End: window.End})
		}
	}
	return result
}

// clip bounds an interval to [from, to); ok is false when nothing remains.
func clip(interval models.Interval, from, to time.Time) (models.Interval, bool) {
	if interval.Start.Before(from) {
		interval.Start = from
	}
	if interval.End.After(to) {
		interval.End = to
	}
	return interval, interval.IsValid()
}

// readRetry retries an idempotent read once on failure. Writes are never
// retried; a duplicate submission has to be rejected by the conflict check.
func readRetry[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	value, err := fn()
	if err == nil || ctx.Err() != nil {
		return value, err
	}
	return fn()
}
