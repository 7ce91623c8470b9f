package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"agendly/internal/common"
	"agendly/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) CreateIfFree(ctx context.Context, appointment *models.Appointment) (*models.Interval, error) {
	args := m.Called(ctx, appointment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interval), args.Error(1)
}

func (m *MockAppointmentRepository) RescheduleIfFree(ctx context.Context, tenantID, id uuid.UUID, newStart, newEnd time.Time) (*models.Interval, error) {
	args := m.Called(ctx, tenantID, id, newStart, newEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interval), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.AppointmentStatus) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.AppointmentSearchFilter) ([]*models.Appointment, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListBusyIntervals(ctx context.Context, tenantID, professionalID uuid.UUID, from, to time.Time) ([]models.Interval, error) {
	args := m.Called(ctx, tenantID, professionalID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Interval), args.Error(1)
}

func (m *MockAppointmentRepository) ListStartingBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Appointment, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

type MockProfessionalRepository struct {
	mock.Mock
}

func (m *MockProfessionalRepository) Create(ctx context.Context, professional *models.Professional) error {
	args := m.Called(ctx, professional)
	return args.Error(0)
}

func (m *MockProfessionalRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Professional, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) Update(ctx context.Context, professional *models.Professional) error {
	args := m.Called(ctx, professional)
	return args.Error(0)
}

func (m *MockProfessionalRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockProfessionalRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Professional, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Professional), args.Error(1)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockClientRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Client), args.Error(1)
}

type MockOfferingRepository struct {
	mock.Mock
}

func (m *MockOfferingRepository) Create(ctx context.Context, offering *models.Offering) error {
	args := m.Called(ctx, offering)
	return args.Error(0)
}

func (m *MockOfferingRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Offering, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offering), args.Error(1)
}

func (m *MockOfferingRepository) Update(ctx context.Context, offering *models.Offering) error {
	args := m.Called(ctx, offering)
	return args.Error(0)
}

func (m *MockOfferingRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockOfferingRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Offering, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Offering), args.Error(1)
}

// MockNotifier records dispatched events synchronously.
type MockNotifier struct {
	mock.Mock
	events []AppointmentEvent
}

func (m *MockNotifier) Dispatch(event AppointmentEvent) {
	m.events = append(m.events, event)
}

func (m *MockNotifier) Broadcast(ctx context.Context, tenantID uuid.UUID, message string) error {
	args := m.Called(ctx, tenantID, message)
	return args.Error(0)
}

func (m *MockNotifier) ListForUser(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, tenantID, userID, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotifier) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockNotifier) SetWebhookURL(ctx context.Context, tenantID uuid.UUID, url string) error {
	args := m.Called(ctx, tenantID, url)
	return args.Error(0)
}

func (m *MockNotifier) RetryFailed(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockNotifier) Start() {}
func (m *MockNotifier) Stop()  {}

type AppointmentServiceTestSuite struct {
	suite.Suite
	appointmentRepo  *MockAppointmentRepository
	professionalRepo *MockProfessionalRepository
	clientRepo       *MockClientRepository
	offeringRepo     *MockOfferingRepository
	notifier         *MockNotifier
	service          AppointmentService

	ctx            context.Context
	tenantID       uuid.UUID
	professionalID uuid.UUID
	clientID       uuid.UUID
	offeringID     uuid.UUID
	startsAt       time.Time
}

func (suite *AppointmentServiceTestSuite) SetupTest() {
	suite.appointmentRepo = &MockAppointmentRepository{}
	suite.professionalRepo = &MockProfessionalRepository{}
	suite.clientRepo = &MockClientRepository{}
	suite.offeringRepo = &MockOfferingRepository{}
	suite.notifier = &MockNotifier{}
	suite.service = NewAppointmentService(suite.appointmentRepo, suite.professionalRepo,
		suite.clientRepo, suite.offeringRepo, suite.notifier)

	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.professionalID = uuid.New()
	suite.clientID = uuid.New()
	suite.offeringID = uuid.New()
	suite.startsAt = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
}

func (suite *AppointmentServiceTestSuite) TearDownTest() {
	suite.appointmentRepo.AssertExpectations(suite.T())
	suite.professionalRepo.AssertExpectations(suite.T())
	suite.clientRepo.AssertExpectations(suite.T())
	suite.offeringRepo.AssertExpectations(suite.T())
}

func TestAppointmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AppointmentServiceTestSuite))
}

func (suite *AppointmentServiceTestSuite) expectLookups(durationMinutes int) {
	userID := uuid.New()
	suite.professionalRepo.On("GetByID", suite.ctx, suite.tenantID, suite.professionalID).
		Return(&models.Professional{ID: suite.professionalID, TenantID: suite.tenantID, UserID: &userID, Name: "Dana"}, nil)
	suite.clientRepo.On("GetByID", suite.ctx, suite.tenantID, suite.clientID).
		Return(&models.Client{ID: suite.clientID, TenantID: suite.tenantID, Name: "Sam"}, nil)
	suite.offeringRepo.On("GetByID", suite.ctx, suite.tenantID, suite.offeringID).
		Return(&models.Offering{ID: suite.offeringID, TenantID: suite.tenantID, Name: "Cut", DurationMinutes: durationMinutes}, nil)
}

func (suite *AppointmentServiceTestSuite) createRequest() *CreateAppointmentRequest {
	return &CreateAppointmentRequest{
		TenantID:       suite.tenantID,
		ClientID:       suite.clientID,
		OfferingID:     suite.offeringID,
		ProfessionalID: suite.professionalID,
		StartsAt:       suite.startsAt,
	}
}

func (suite *AppointmentServiceTestSuite) TestCreate_SnapshotsDuration() {
	suite.expectLookups(45)

	suite.appointmentRepo.On("CreateIfFree", suite.ctx, mock.AnythingOfType("*models.Appointment")).
		Return(nil, nil).Run(func(args mock.Arguments) {
		appointment := args.Get(1).(*models.Appointment)
		assert.Equal(suite.T(), suite.startsAt, appointment.StartsAt)
		assert.Equal(suite.T(), suite.startsAt.Add(45*time.Minute), appointment.EndsAt)
		assert.Equal(suite.T(), models.AppointmentScheduled, appointment.Status)
		assert.Equal(suite.T(), suite.tenantID, appointment.TenantID)
	})

	appointment, err := suite.service.Create(suite.ctx, suite.createRequest())
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), appointment)

	assert.Len(suite.T(), suite.notifier.events, 1)
	assert.Equal(suite.T(), models.NotificationAppointmentCreated, suite.notifier.events[0].Type)
}

func (suite *AppointmentServiceTestSuite) TestCreate_ConflictReturnsTypedError() {
	suite.expectLookups(30)

	conflictStart := suite.startsAt.Add(-15 * time.Minute)
	conflictEnd := suite.startsAt.Add(15 * time.Minute)
	suite.appointmentRepo.On("CreateIfFree", suite.ctx, mock.AnythingOfType("*models.Appointment")).
		Return(&models.Interval{Start: conflictStart, End: conflictEnd}, nil)

	appointment, err := suite.service.Create(suite.ctx, suite.createRequest())
	assert.Nil(suite.T(), appointment)

	var conflict *common.SchedulingConflictError
	assert.ErrorAs(suite.T(), err, &conflict)
	assert.Equal(suite.T(), conflictStart, conflict.ConflictStart)
	assert.Equal(suite.T(), conflictEnd, conflict.ConflictEnd)

	// No event is emitted on a rejected booking.
	assert.Empty(suite.T(), suite.notifier.events)
}

func (suite *AppointmentServiceTestSuite) TestCreate_UnknownOffering() {
	suite.professionalRepo.On("GetByID", suite.ctx, suite.tenantID, suite.professionalID).
		Return(&models.Professional{ID: suite.professionalID}, nil)
	suite.clientRepo.On("GetByID", suite.ctx, suite.tenantID, suite.clientID).
		Return(&models.Client{ID: suite.clientID}, nil)
	suite.offeringRepo.On("GetByID", suite.ctx, suite.tenantID, suite.offeringID).
		Return(nil, pgx.ErrNoRows)

	appointment, err := suite.service.Create(suite.ctx, suite.createRequest())
	assert.Nil(suite.T(), appointment)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *AppointmentServiceTestSuite) TestReschedule_KeepsSnapshottedDuration() {
	id := uuid.New()
	existing := &models.Appointment{
		ID:             id,
		TenantID:       suite.tenantID,
		ProfessionalID: suite.professionalID,
		StartsAt:       suite.startsAt,
		EndsAt:         suite.startsAt.Add(45 * time.Minute),
		Status:         models.AppointmentScheduled,
	}
	newStart := suite.startsAt.Add(2 * time.Hour)

	suite.appointmentRepo.On("GetByID", suite.ctx, suite.tenantID, id).Return(existing, nil)
	suite.appointmentRepo.On("RescheduleIfFree", suite.ctx, suite.tenantID, id,
		newStart, newStart.Add(45*time.Minute)).Return(nil, nil)

	appointment, err := suite.service.Reschedule(suite.ctx, suite.tenantID, id, newStart)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), newStart, appointment.StartsAt)
	assert.Equal(suite.T(), newStart.Add(45*time.Minute), appointment.EndsAt)

	assert.Len(suite.T(), suite.notifier.events, 1)
	assert.Equal(suite.T(), models.NotificationAppointmentRescheduled, suite.notifier.events[0].Type)
}

func (suite *AppointmentServiceTestSuite) TestReschedule_Conflict() {
	id := uuid.New()
	existing := &models.Appointment{
		ID:       id,
		TenantID: suite.tenantID,
		StartsAt: suite.startsAt,
		EndsAt:   suite.startsAt.Add(30 * time.Minute),
		Status:   models.AppointmentScheduled,
	}
	newStart := suite.startsAt.Add(time.Hour)

	suite.appointmentRepo.On("GetByID", suite.ctx, suite.tenantID, id).Return(existing, nil)
	suite.appointmentRepo.On("RescheduleIfFree", suite.ctx, suite.tenantID, id,
		newStart, newStart.Add(30*time.Minute)).
		Return(&models.Interval{Start: newStart, End: newStart.Add(time.Hour)}, nil)

	appointment, err := suite.service.Reschedule(suite.ctx, suite.tenantID, id, newStart)
	assert.Nil(suite.T(), appointment)

	var conflict *common.SchedulingConflictError
	assert.ErrorAs(suite.T(), err, &conflict)
	assert.Empty(suite.T(), suite.notifier.events)
}

func (suite *AppointmentServiceTestSuite) TestChangeStatus_ValidTransition() {
	id := uuid.New()
	existing := &models.Appointment{ID: id, TenantID: suite.tenantID, Status: models.AppointmentScheduled}

	suite.appointmentRepo.On("GetByID", suite.ctx, suite.tenantID, id).Return(existing, nil)
	suite.appointmentRepo.On("UpdateStatus", suite.ctx, suite.tenantID, id, models.AppointmentConfirmed).Return(nil)

	appointment, err := suite.service.ChangeStatus(suite.ctx, suite.tenantID, id, models.AppointmentConfirmed)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.AppointmentConfirmed, appointment.Status)

	assert.Len(suite.T(), suite.notifier.events, 1)
	assert.Equal(suite.T(), models.NotificationAppointmentConfirmed, suite.notifier.events[0].Type)
}

func (suite *AppointmentServiceTestSuite) TestChangeStatus_RejectsInvalidTransition() {
	id := uuid.New()
	existing := &models.Appointment{ID: id, TenantID: suite.tenantID, Status: models.AppointmentCompleted}

	suite.appointmentRepo.On("GetByID", suite.ctx, suite.tenantID, id).Return(existing, nil)

	appointment, err := suite.service.ChangeStatus(suite.ctx, suite.tenantID, id, models.AppointmentCanceled)
	assert.Nil(suite.T(), appointment)

	var transition *common.InvalidTransitionError
	assert.ErrorAs(suite.T(), err, &transition)
	assert.Equal(suite.T(), string(models.AppointmentCompleted), transition.From)
	assert.Equal(suite.T(), string(models.AppointmentCanceled), transition.To)
	assert.Empty(suite.T(), suite.notifier.events)
}

func (suite *AppointmentServiceTestSuite) TestChangeStatus_RejectsUnknownStatus() {
	appointment, err := suite.service.ChangeStatus(suite.ctx, suite.tenantID, uuid.New(), models.AppointmentStatus("PENDING"))
	assert.Nil(suite.T(), appointment)

	var transition *common.InvalidTransitionError
	assert.ErrorAs(suite.T(), err, &transition)
}

func (suite *AppointmentServiceTestSuite) TestChangeStatus_NoShowEmitsNoEvent() {
	id := uuid.New()
	existing := &models.Appointment{ID: id, TenantID: suite.tenantID, Status: models.AppointmentConfirmed}

	suite.appointmentRepo.On("GetByID", suite.ctx, suite.tenantID, id).Return(existing, nil)
	suite.appointmentRepo.On("UpdateStatus", suite.ctx, suite.tenantID, id, models.AppointmentNoShow).Return(nil)

	appointment, err := suite.service.ChangeStatus(suite.ctx, suite.tenantID, id, models.AppointmentNoShow)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.AppointmentNoShow, appointment.Status)
	assert.Empty(suite.T(), suite.notifier.events)
}

func (suite *AppointmentServiceTestSuite) TestCancel_EmitsCanceledEvent() {
	id := uuid.New()
	existing := &models.Appointment{ID: id, TenantID: suite.tenantID, Status: models.AppointmentScheduled}

	suite.appointmentRepo.On("GetByID", suite.ctx, suite.tenantID, id).Return(existing, nil)
	suite.appointmentRepo.On("UpdateStatus", suite.ctx, suite.tenantID, id, models.AppointmentCanceled).Return(nil)

	appointment, err := suite.service.Cancel(suite.ctx, suite.tenantID, id)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.AppointmentCanceled, appointment.Status)

	assert.Len(suite.T(), suite.notifier.events, 1)
	assert.Equal(suite.T(), models.NotificationAppointmentCanceled, suite.notifier.events[0].Type)
}

func (suite *AppointmentServiceTestSuite) TestCreate_RepoError() {
	suite.expectLookups(30)

	suite.appointmentRepo.On("CreateIfFree", suite.ctx, mock.AnythingOfType("*models.Appointment")).
		Return(nil, errors.New("database connection failed"))

	appointment, err := suite.service.Create(suite.ctx, suite.createRequest())
	assert.Nil(suite.T(), appointment)
	assert.Error(suite.T(), err)
	assert.Empty(suite.T(), suite.notifier.events)
}
