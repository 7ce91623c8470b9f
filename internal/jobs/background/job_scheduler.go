package background

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"agendly/internal/models"
	"agendly/internal/repositories"
	"agendly/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// JobScheduler manages recurring background work: the daily reminder sweep and
// the notification retry drain.
type JobScheduler struct {
	scheduler        gocron.Scheduler
	appointmentRepo  repositories.AppointmentRepository
	professionalRepo repositories.ProfessionalRepository
	tenantRepo       repositories.TenantRepository
	notifier         services.NotificationService
	jobs             map[string]gocron.Job
	mu               sync.RWMutex
}

func NewJobScheduler(appointmentRepo repositories.AppointmentRepository,
	professionalRepo repositories.ProfessionalRepository,
	tenantRepo repositories.TenantRepository,
	notifier services.NotificationService) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:        scheduler,
		appointmentRepo:  appointmentRepo,
		professionalRepo: professionalRepo,
		tenantRepo:       tenantRepo,
		notifier:         notifier,
		jobs:             make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	reminderJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sendUpcomingReminders, context.Background()),
		gocron.WithName("appointment-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create reminder job: %v", err)
	} else {
		js.jobs["reminders"] = reminderJob
	}

	retryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(js.drainNotificationRetries, context.Background()),
		gocron.WithName("notification-retry-drain"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create retry drain job: %v", err)
	} else {
		js.jobs["retry-drain"] = retryJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// sendUpcomingReminders emits a reminder event for every SCHEDULED or
// CONFIRMED appointment starting within the next 24 hours, per active tenant.
// Dispatch is at-least-once: a sweep that overlaps a previous one may emit a
// duplicate reminder, which the delivery path tolerates.
func (js *JobScheduler) sendUpcomingReminders(ctx context.Context) error {
	tenants, err := js.tenantRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to get tenants for reminder sweep: %v", err)
		return err
	}

	now := time.Now().UTC()
	horizon := now.Add(24 * time.Hour)

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup

	for _, tenant := range tenants {
		if !tenant.IsActive() {
			continue
		}

		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			js.remindTenant(ctx, tenantID, now, horizon)
		}(tenant.ID)
	}

	wg.Wait()
	return nil
}

func (js *JobScheduler) remindTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time) {
	appointments, err := js.appointmentRepo.ListStartingBetween(ctx, tenantID, from, to)
	if err != nil {
		log.Printf("Failed to list upcoming appointments for tenant %s: %v", tenantID, err)
		return
	}

	for _, appointment := range appointments {
		var recipient *uuid.UUID
		if professional, err := js.professionalRepo.GetByID(ctx, tenantID, appointment.ProfessionalID); err == nil {
			recipient = professional.UserID
		}

		js.notifier.Dispatch(services.AppointmentEvent{
			TenantID:        tenantID,
			RecipientUserID: recipient,
			Type:            models.NotificationAppointmentReminder,
			Message: fmt.Sprintf("upcoming appointment at %s",
				appointment.StartsAt.Format(time.RFC3339)),
			AppointmentID: appointment.ID,
		})
	}

	if len(appointments) > 0 {
		log.Printf("Queued %d reminders for tenant %s", len(appointments), tenantID)
	}
}

// drainNotificationRetries replays events that failed delivery earlier.
func (js *JobScheduler) drainNotificationRetries(ctx context.Context) error {
	if err := js.notifier.RetryFailed(ctx); err != nil {
		log.Printf("Notification retry drain failed: %v", err)
		return err
	}
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	log.Printf("Added custom job: %s", name)
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}

	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
