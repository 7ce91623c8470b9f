package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agendly/internal/common"
	"agendly/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetTenantIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockCacheService) SetTenantBySlug(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	args := m.Called(ctx, tenant, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteTenantBySlug(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *MockCacheService) GetOffering(ctx context.Context, tenantID, offeringID uuid.UUID) (*models.Offering, error) {
	args := m.Called(ctx, tenantID, offeringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offering), args.Error(1)
}

func (m *MockCacheService) SetOffering(ctx context.Context, tenantID uuid.UUID, offering *models.Offering, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, offering, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteOffering(ctx context.Context, tenantID, offeringID uuid.UUID) error {
	args := m.Called(ctx, tenantID, offeringID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	args := m.Called(ctx, key, window)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type AuthHandlersTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	mockCache    *MockCacheService
	handlers     *AuthHandlers
	tenantID     uuid.UUID
}

func (suite *AuthHandlersTestSuite) SetupTest() {
	suite.mockUserRepo = &MockUserRepository{}
	suite.mockCache = &MockCacheService{}
	suite.handlers = NewAuthHandlers(suite.mockUserRepo, suite.mockCache, "test-secret")
	suite.tenantID = uuid.New()
}

func (suite *AuthHandlersTestSuite) TearDownTest() {
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestAuthHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlersTestSuite))
}

func (suite *AuthHandlersTestSuite) loginRequest(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(context.WithValue(req.Context(), common.TenantIDKey, suite.tenantID))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func (suite *AuthHandlersTestSuite) rateKey(email string) string {
	return fmt.Sprintf("login:%s:%s", suite.tenantID, email)
}

func (suite *AuthHandlersTestSuite) TestLogin_Success() {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	assert.NoError(suite.T(), err)
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     suite.tenantID,
		Email:        "staff@acme.test",
		PasswordHash: string(hash),
		Name:         "Staff",
	}

	suite.mockCache.On("IsRateLimited", mock.Anything, suite.rateKey(user.Email), loginAttemptLimit, loginAttemptWindow).
		Return(false, nil)
	suite.mockUserRepo.On("GetByEmail", mock.Anything, suite.tenantID, user.Email).Return(user, nil)

	c, rec := suite.loginRequest(`{"email":"staff@acme.test","password":"correct-password"}`)
	assert.NoError(suite.T(), suite.handlers.Login(c))
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "token")
}

func (suite *AuthHandlersTestSuite) TestLogin_RateLimitedWithoutTouchingCredentials() {
	suite.mockCache.On("IsRateLimited", mock.Anything, suite.rateKey("staff@acme.test"), loginAttemptLimit, loginAttemptWindow).
		Return(true, nil)

	c, rec := suite.loginRequest(`{"email":"staff@acme.test","password":"whatever"}`)
	assert.NoError(suite.T(), suite.handlers.Login(c))
	assert.Equal(suite.T(), http.StatusTooManyRequests, rec.Code)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "GetByEmail")
}

func (suite *AuthHandlersTestSuite) TestLogin_FailedAttemptCountsTowardLimit() {
	suite.mockCache.On("IsRateLimited", mock.Anything, suite.rateKey("staff@acme.test"), loginAttemptLimit, loginAttemptWindow).
		Return(false, nil)
	suite.mockUserRepo.On("GetByEmail", mock.Anything, suite.tenantID, "staff@acme.test").
		Return(nil, pgx.ErrNoRows)
	suite.mockCache.On("IncrementRateLimit", mock.Anything, suite.rateKey("staff@acme.test"), loginAttemptWindow).
		Return(nil)

	c, rec := suite.loginRequest(`{"email":"staff@acme.test","password":"wrong"}`)
	assert.NoError(suite.T(), suite.handlers.Login(c))
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestLogin_WrongPasswordCountsTowardLimit() {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	assert.NoError(suite.T(), err)
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     suite.tenantID,
		Email:        "staff@acme.test",
		PasswordHash: string(hash),
	}

	suite.mockCache.On("IsRateLimited", mock.Anything, suite.rateKey(user.Email), loginAttemptLimit, loginAttemptWindow).
		Return(false, nil)
	suite.mockUserRepo.On("GetByEmail", mock.Anything, suite.tenantID, user.Email).Return(user, nil)
	suite.mockCache.On("IncrementRateLimit", mock.Anything, suite.rateKey(user.Email), loginAttemptWindow).
		Return(nil)

	c, rec := suite.loginRequest(`{"email":"staff@acme.test","password":"wrong"}`)
	assert.NoError(suite.T(), suite.handlers.Login(c))
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}
