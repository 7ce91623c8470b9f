package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"agendly/internal/caching"
	"agendly/internal/common"
	"agendly/internal/models"
	"agendly/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL = 24 * time.Hour

	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
)

// AuthHandlers issues tokens for tenant staff. Login runs on the tenant
// subdomain; the token carries only the user identity, never tenant scope.
type AuthHandlers struct {
	userRepo  repositories.UserRepository
	cache     caching.CacheService
	jwtSecret string
}

func NewAuthHandlers(userRepo repositories.UserRepository, cache caching.CacheService, jwtSecret string) *AuthHandlers {
	return &AuthHandlers{userRepo: userRepo, cache: cache, jwtSecret: jwtSecret}
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if err := common.ValidateRequiredString(req.Password, "password"); err != nil {
		return common.SendValidationError(c, "password", err.Error())
	}

	rateKey := fmt.Sprintf("login:%s:%s", tenantID, req.Email)
	if limited, err := h.cache.IsRateLimited(ctx, rateKey, loginAttemptLimit, loginAttemptWindow); err != nil {
		log.Printf("login rate-limit check failed: %v", err)
	} else if limited {
		return common.SendTooManyRequestsError(c, "Too many failed login attempts, try again later")
	}

	user, err := h.userRepo.GetByEmail(ctx, tenantID, req.Email)
	if err != nil {
		h.recordFailedLogin(ctx, rateKey)
		return common.SendUnauthorizedError(c)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.recordFailedLogin(ctx, rateKey)
		return common.SendUnauthorizedError(c)
	}

	token, err := h.mintToken(user.ID)
	if err != nil {
		return common.SendServerError(c, "Failed to issue token")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// Register handles POST /auth/register — creates a staff account for the
// current tenant.
func (h *AuthHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if len(req.Password) < 8 {
		return common.SendValidationError(c, "password", "password must be at least 8 characters")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return common.SendServerError(c, "Failed to hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Status:       "active",
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		return common.SendServerError(c, "Failed to create user")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

func (h *AuthHandlers) recordFailedLogin(ctx context.Context, rateKey string) {
	if err := h.cache.IncrementRateLimit(ctx, rateKey, loginAttemptWindow); err != nil {
		log.Printf("failed to record login attempt: %v", err)
	}
}

func (h *AuthHandlers) mintToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
