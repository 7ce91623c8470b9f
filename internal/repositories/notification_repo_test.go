package repositories

import (
	"context"
	"testing"
	"time"

	"agendly/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type NotificationRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     NotificationRepository
	tenantID uuid.UUID
	context  context.Context
}

func (suite *NotificationRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewNotificationRepo(mock)
	suite.tenantID = uuid.New()
	suite.context = context.Background()
}

func (suite *NotificationRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestNotificationRepoTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationRepoTestSuite))
}

func (suite *NotificationRepoTestSuite) TestBroadcast_InsertsOneRowPerActiveUser() {
	suite.mock.ExpectExec(`INSERT INTO notifications[\s\S]+SELECT gen_random_uuid\(\), u\.tenant_id, u\.id[\s\S]+WHERE u\.tenant_id = \$1 AND u\.status = 'active'`).
		WithArgs(suite.tenantID, models.NotificationSystemBroadcast, "maintenance window tonight").
		WillReturnResult(pgxmock.NewResult("INSERT", 4))

	err := suite.repo.Broadcast(suite.context, suite.tenantID, models.NotificationSystemBroadcast, "maintenance window tonight")
	assert.NoError(suite.T(), err)
}

func (suite *NotificationRepoTestSuite) TestListForUser_ScopedToRecipient() {
	userID := uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "tenant_id", "recipient_user_id", "type", "message", "related_url", "read", "created_at"}).
		AddRow(uuid.New(), suite.tenantID, &userID, models.NotificationAppointmentCreated, "new appointment", nil, false, now)

	suite.mock.ExpectQuery(`WHERE tenant_id = \$1 AND recipient_user_id = \$2`).
		WithArgs(suite.tenantID, userID, 20, 0).
		WillReturnRows(rows)

	notifications, err := suite.repo.ListForUser(suite.context, suite.tenantID, userID, 20, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), notifications, 1)
	assert.Equal(suite.T(), userID, *notifications[0].RecipientUserID)
}

func (suite *NotificationRepoTestSuite) TestMarkRead() {
	id := uuid.New()

	suite.mock.ExpectExec(`UPDATE notifications SET read = true WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.MarkRead(suite.context, suite.tenantID, id)
	assert.NoError(suite.T(), err)
}

func (suite *NotificationRepoTestSuite) TestDeleteReadBefore_OnlyPrunesReadRows() {
	cutoff := time.Now().UTC().AddDate(0, -3, 0)

	suite.mock.ExpectExec(`DELETE FROM notifications WHERE read = true AND created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	err := suite.repo.DeleteReadBefore(suite.context, cutoff)
	assert.NoError(suite.T(), err)
}
