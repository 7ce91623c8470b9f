package services

import (
	"context"
	"testing"
	"time"

	"agendly/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) GetWeek(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.AvailabilityRule, error) {
	args := m.Called(ctx, tenantID, professionalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AvailabilityRule), args.Error(1)
}

func (m *MockAvailabilityRepository) ReplaceWeek(ctx context.Context, tenantID, professionalID uuid.UUID, rules []*models.AvailabilityRule) error {
	args := m.Called(ctx, tenantID, professionalID, rules)
	return args.Error(0)
}

type MockBlackoutRepository struct {
	mock.Mock
}

func (m *MockBlackoutRepository) Create(ctx context.Context, blackout *models.Blackout) error {
	args := m.Called(ctx, blackout)
	return args.Error(0)
}

func (m *MockBlackoutRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockBlackoutRepository) List(ctx context.Context, tenantID, professionalID uuid.UUID) ([]*models.Blackout, error) {
	args := m.Called(ctx, tenantID, professionalID)
	return args.Get(0).([]*models.Blackout), args.Error(1)
}

func (m *MockBlackoutRepository) ListInRange(ctx context.Context, tenantID, professionalID uuid.UUID, from, to time.Time) ([]*models.Blackout, error) {
	args := m.Called(ctx, tenantID, professionalID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Blackout), args.Error(1)
}

func TestSubtract(t *testing.T) {
	base := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }
	window := func(start, end int) models.Interval { return models.Interval{Start: at(start), End: at(end)} }

	t.Run("hole in the middle splits the window", func(t *testing.T) {
		result := subtract([]models.Interval{window(540, 1020)}, window(720, 780))
		assert.Equal(t, []models.Interval{window(540, 720), window(780, 1020)}, result)
	})

	t.Run("busy covering the start trims the front", func(t *testing.T) {
		result := subtract([]models.Interval{window(540, 720)}, window(480, 600))
		assert.Equal(t, []models.Interval{window(600, 720)}, result)
	})

	t.Run("busy covering the end trims the back", func(t *testing.T) {
		result := subtract([]models.Interval{window(540, 720)}, window(660, 780))
		assert.Equal(t, []models.Interval{window(540, 660)}, result)
	})

	t.Run("busy covering the whole window removes it", func(t *testing.T) {
		result := subtract([]models.Interval{window(540, 720)}, window(480, 780))
		assert.Empty(t, result)
	})

	t.Run("touching endpoints leave the window intact", func(t *testing.T) {
		result := subtract([]models.Interval{window(540, 720)}, window(720, 780))
		assert.Equal(t, []models.Interval{window(540, 720)}, result)

		result = subtract([]models.Interval{window(540, 720)}, window(480, 540))
		assert.Equal(t, []models.Interval{window(540, 720)}, result)
	})

	t.Run("empty busy interval is ignored", func(t *testing.T) {
		result := subtract([]models.Interval{window(540, 720)}, window(600, 600))
		assert.Equal(t, []models.Interval{window(540, 720)}, result)
	})
}

func TestClip(t *testing.T) {
	base := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

	clipped, ok := clip(models.Interval{Start: at(0), End: at(120)}, at(30), at(90))
	assert.True(t, ok)
	assert.Equal(t, models.Interval{Start: at(30), End: at(90)}, clipped)

	_, ok = clip(models.Interval{Start: at(0), End: at(30)}, at(60), at(120))
	assert.False(t, ok)
}

type AvailabilityServiceTestSuite struct {
	suite.Suite
	availabilityRepo *MockAvailabilityRepository
	blackoutRepo     *MockBlackoutRepository
	appointmentRepo  *MockAppointmentRepository
	service          AvailabilityService

	ctx            context.Context
	tenantID       uuid.UUID
	professionalID uuid.UUID
}

func (suite *AvailabilityServiceTestSuite) SetupTest() {
	suite.availabilityRepo = &MockAvailabilityRepository{}
	suite.blackoutRepo = &MockBlackoutRepository{}
	suite.appointmentRepo = &MockAppointmentRepository{}
	suite.service = NewAvailabilityService(suite.availabilityRepo, suite.blackoutRepo, suite.appointmentRepo)

	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.professionalID = uuid.New()
}

func (suite *AvailabilityServiceTestSuite) TearDownTest() {
	suite.availabilityRepo.AssertExpectations(suite.T())
	suite.blackoutRepo.AssertExpectations(suite.T())
	suite.appointmentRepo.AssertExpectations(suite.T())
}

func TestAvailabilityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityServiceTestSuite))
}

func (suite *AvailabilityServiceTestSuite) TestOpenSlots_TemplateMinusBlackoutsMinusBusy() {
	// Monday 2024-06-03, template 09:00-17:00, blackout 12:00-13:00,
	// one appointment 10:00-10:45.
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	from := monday
	to := monday.AddDate(0, 0, 1)

	rules := []*models.AvailabilityRule{
		{Weekday: 1, StartMinute: 9 * 60, EndMinute: 17 * 60},
	}
	blackouts := []*models.Blackout{
		{StartsAt: monday.Add(12 * time.Hour), EndsAt: monday.Add(13 * time.Hour)},
	}
	busy := []models.Interval{
		{Start: monday.Add(10 * time.Hour), End: monday.Add(10*time.Hour + 45*time.Minute)},
	}

	suite.availabilityRepo.On("GetWeek", suite.ctx, suite.tenantID, suite.professionalID).Return(rules, nil)
	suite.blackoutRepo.On("ListInRange", suite.ctx, suite.tenantID, suite.professionalID, from, to).Return(blackouts, nil)
	suite.appointmentRepo.On("ListBusyIntervals", suite.ctx, suite.tenantID, suite.professionalID, from, to).Return(busy, nil)

	slots, err := suite.service.OpenSlots(suite.ctx, suite.tenantID, suite.professionalID, from, to)
	assert.NoError(suite.T(), err)

	assert.Equal(suite.T(), []models.Interval{
		{Start: monday.Add(9 * time.Hour), End: monday.Add(10 * time.Hour)},
		{Start: monday.Add(10*time.Hour + 45*time.Minute), End: monday.Add(12 * time.Hour)},
		{Start: monday.Add(13 * time.Hour), End: monday.Add(17 * time.Hour)},
	}, slots)
}

func (suite *AvailabilityServiceTestSuite) TestOpenSlots_DayWithoutRuleYieldsNothing() {
	// Sunday has no template entry.
	sunday := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	from := sunday
	to := sunday.AddDate(0, 0, 1)

	rules := []*models.AvailabilityRule{
		{Weekday: 1, StartMinute: 9 * 60, EndMinute: 17 * 60},
	}

	suite.availabilityRepo.On("GetWeek", suite.ctx, suite.tenantID, suite.professionalID).Return(rules, nil)
	suite.blackoutRepo.On("ListInRange", suite.ctx, suite.tenantID, suite.professionalID, from, to).Return([]*models.Blackout{}, nil)
	suite.appointmentRepo.On("ListBusyIntervals", suite.ctx, suite.tenantID, suite.professionalID, from, to).Return([]models.Interval{}, nil)

	slots, err := suite.service.OpenSlots(suite.ctx, suite.tenantID, suite.professionalID, from, to)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), slots)
}

func (suite *AvailabilityServiceTestSuite) TestOpenSlots_ClipsToRequestedRange() {
	// Query only 10:00-12:00 of a 09:00-17:00 Monday.
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	from := monday.Add(10 * time.Hour)
	to := monday.Add(12 * time.Hour)

	rules := []*models.AvailabilityRule{
		{Weekday: 1, StartMinute: 9 * 60, EndMinute: 17 * 60},
	}

	suite.availabilityRepo.On("GetWeek", suite.ctx, suite.tenantID, suite.professionalID).Return(rules, nil)
	suite.blackoutRepo.On("ListInRange", suite.ctx, suite.tenantID, suite.professionalID, from, to).Return([]*models.Blackout{}, nil)
	suite.appointmentRepo.On("ListBusyIntervals", suite.ctx, suite.tenantID, suite.professionalID, from, to).Return([]models.Interval{}, nil)

	slots, err := suite.service.OpenSlots(suite.ctx, suite.tenantID, suite.professionalID, from, to)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []models.Interval{{Start: from, End: to}}, slots)
}

func (suite *AvailabilityServiceTestSuite) TestOpenSlots_InvalidRange() {
	from := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	slots, err := suite.service.OpenSlots(suite.ctx, suite.tenantID, suite.professionalID, from, from)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), slots)
}

func (suite *AvailabilityServiceTestSuite) TestOpenSlots_OverlappingBlackoutsActAsUnion() {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	from := monday
	to := monday.AddDate(0, 0, 1)

	rules := []*models.AvailabilityRule{
		{Weekday: 1, StartMinute: 9 * 60, EndMinute: 12 * 60},
	}
	blackouts := []*models.Blackout{
		{StartsAt: monday.Add(10 * time.Hour), EndsAt: monday.Add(11 * time.Hour)},
		{StartsAt: monday.Add(10*time.Hour + 30*time.Minute), EndsAt: monday.Add(11*time.Hour + 30*time.Minute)},
	}

	suite.availabilityRepo.On("GetWeek", suite.ctx, suite.tenantID, suite.professionalID).Return(rules, nil)
	suite.blackoutRepo.On("ListInRange", suite.ctx, suite.tenantID, suite.professionalID, from, to).Return(blackouts, nil)
	suite.appointmentRepo.On("ListBusyIntervals", suite.ctx, suite.tenantID, suite.professionalID, from, to).Return([]models.Interval{}, nil)

	slots, err := suite.service.OpenSlots(suite.ctx, suite.tenantID, suite.professionalID, from, to)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []models.Interval{
		{Start: monday.Add(9 * time.Hour), End: monday.Add(10 * time.Hour)},
		{Start: monday.Add(11*time.Hour + 30*time.Minute), End: monday.Add(12 * time.Hour)},
	}, slots)
}

func (suite *AvailabilityServiceTestSuite) TestReplaceWeek_RejectsDuplicateWeekday() {
	rules := []*models.AvailabilityRule{
		{Weekday: 1, StartMinute: 9 * 60, EndMinute: 12 * 60},
		{Weekday: 1, StartMinute: 13 * 60, EndMinute: 17 * 60},
	}

	err := suite.service.ReplaceWeek(suite.ctx, suite.tenantID, suite.professionalID, rules)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "one rule per weekday")
}

func (suite *AvailabilityServiceTestSuite) TestReplaceWeek_AssignsScopeAndIDs() {
	rules := []*models.AvailabilityRule{
		{Weekday: 1, StartMinute: 9 * 60, EndMinute: 17 * 60},
		{Weekday: 3, StartMinute: 10 * 60, EndMinute: 16 * 60},
	}

	suite.availabilityRepo.On("ReplaceWeek", suite.ctx, suite.tenantID, suite.professionalID, rules).Return(nil)

	err := suite.service.ReplaceWeek(suite.ctx, suite.tenantID, suite.professionalID, rules)
	assert.NoError(suite.T(), err)
	for _, rule := range rules {
		assert.NotEqual(suite.T(), uuid.Nil, rule.ID)
		assert.Equal(suite.T(), suite.tenantID, rule.TenantID)
		assert.Equal(suite.T(), suite.professionalID, rule.ProfessionalID)
	}
}

func (suite *AvailabilityServiceTestSuite) TestReplaceWeek_RejectsInvalidRule() {
	rules := []*models.AvailabilityRule{
		{Weekday: 9, StartMinute: 9 * 60, EndMinute: 17 * 60},
	}

	err := suite.service.ReplaceWeek(suite.ctx, suite.tenantID, suite.professionalID, rules)
	assert.Error(suite.T(), err)
}
