package repositories

import (
	"context"
	"errors"
	"testing"

	"agendly/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AvailabilityRepoTestSuite struct {
	suite.Suite
	mock           pgxmock.PgxPoolIface
	repo           AvailabilityRepository
	tenantID       uuid.UUID
	professionalID uuid.UUID
	context        context.Context
}

func (suite *AvailabilityRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewAvailabilityRepo(mock)
	suite.tenantID = uuid.New()
	suite.professionalID = uuid.New()
	suite.context = context.Background()
}

func (suite *AvailabilityRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestAvailabilityRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityRepoTestSuite))
}

func (suite *AvailabilityRepoTestSuite) TestGetWeek_Success() {
	rows := pgxmock.NewRows([]string{"id", "tenant_id", "professional_id", "weekday", "start_minute", "end_minute"}).
		AddRow(uuid.New(), suite.tenantID, suite.professionalID, 1, 540, 1020).
		AddRow(uuid.New(), suite.tenantID, suite.professionalID, 3, 600, 960)

	suite.mock.ExpectQuery(`SELECT id, tenant_id, professional_id, weekday, start_minute, end_minute`).
		WithArgs(suite.tenantID, suite.professionalID).
		WillReturnRows(rows)

	rules, err := suite.repo.GetWeek(suite.context, suite.tenantID, suite.professionalID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rules, 2)
	assert.Equal(suite.T(), 1, rules[0].Weekday)
	assert.Equal(suite.T(), 540, rules[0].StartMinute)
	assert.Equal(suite.T(), 3, rules[1].Weekday)
}

func (suite *AvailabilityRepoTestSuite) TestGetWeek_Empty() {
	rows := pgxmock.NewRows([]string{"id", "tenant_id", "professional_id", "weekday", "start_minute", "end_minute"})

	suite.mock.ExpectQuery(`SELECT id, tenant_id, professional_id, weekday, start_minute, end_minute`).
		WithArgs(suite.tenantID, suite.professionalID).
		WillReturnRows(rows)

	rules, err := suite.repo.GetWeek(suite.context, suite.tenantID, suite.professionalID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), rules)
}

func (suite *AvailabilityRepoTestSuite) TestReplaceWeek_DeletesThenInsertsInOneTransaction() {
	rules := []*models.AvailabilityRule{
		{ID: uuid.New(), Weekday: 1, StartMinute: 540, EndMinute: 1020},
		{ID: uuid.New(), Weekday: 2, StartMinute: 540, EndMinute: 780},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM availability_rules WHERE tenant_id = \$1 AND professional_id = \$2`).
		WithArgs(suite.tenantID, suite.professionalID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	suite.mock.ExpectExec(`INSERT INTO availability_rules`).
		WithArgs(rules[0].ID, suite.tenantID, suite.professionalID, rules[0].Weekday, rules[0].StartMinute, rules[0].EndMinute).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO availability_rules`).
		WithArgs(rules[1].ID, suite.tenantID, suite.professionalID, rules[1].Weekday, rules[1].StartMinute, rules[1].EndMinute).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	err := suite.repo.ReplaceWeek(suite.context, suite.tenantID, suite.professionalID, rules)
	assert.NoError(suite.T(), err)
}

func (suite *AvailabilityRepoTestSuite) TestReplaceWeek_EmptyClearsTheWeek() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM availability_rules WHERE tenant_id = \$1 AND professional_id = \$2`).
		WithArgs(suite.tenantID, suite.professionalID).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	err := suite.repo.ReplaceWeek(suite.context, suite.tenantID, suite.professionalID, nil)
	assert.NoError(suite.T(), err)
}

func (suite *AvailabilityRepoTestSuite) TestReplaceWeek_InsertFailureRollsBack() {
	rules := []*models.AvailabilityRule{
		{ID: uuid.New(), Weekday: 1, StartMinute: 540, EndMinute: 1020},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM availability_rules WHERE tenant_id = \$1 AND professional_id = \$2`).
		WithArgs(suite.tenantID, suite.professionalID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectExec(`INSERT INTO availability_rules`).
		WithArgs(rules[0].ID, suite.tenantID, suite.professionalID, rules[0].Weekday, rules[0].StartMinute, rules[0].EndMinute).
		WillReturnError(errors.New("database connection failed"))
	suite.mock.ExpectRollback()

	err := suite.repo.ReplaceWeek(suite.context, suite.tenantID, suite.professionalID, rules)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "database connection failed")
}
