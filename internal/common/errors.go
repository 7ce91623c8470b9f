package common

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ErrTenantNotFound is returned when the request host does not resolve to an
// active tenant. It is fatal to the request and raised before any scheduling
// logic runs.
var ErrTenantNotFound = errors.New("tenant not found")

// SchedulingConflictError reports that a proposed appointment overlaps an
// existing non-canceled one. The conflicting interval is included so callers
// can offer alternatives.
type SchedulingConflictError struct {
	ConflictStart time.Time `json:"conflict_start"`
	ConflictEnd   time.Time `json:"conflict_end"`
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("requested time overlaps an existing appointment from %s to %s",
		e.ConflictStart.Format(time.RFC3339), e.ConflictEnd.Format(time.RFC3339))
}

// InvalidTransitionError reports a status change rejected by the appointment
// state table.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition appointment from %s to %s", e.From, e.To)
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// SendTooManyRequestsError sends a rate-limit response
func SendTooManyRequestsError(c echo.Context, message string) error {
	return c.JSON(http.StatusTooManyRequests, CreateErrorResponse("RATE_LIMITED", message, nil))
}

// SendConflictError sends a scheduling conflict response carrying the
// conflicting interval.
func SendConflictError(c echo.Context, conflict *SchedulingConflictError) error {
	details := map[string]string{
		"conflict_start": conflict.ConflictStart.Format(time.RFC3339),
		"conflict_end":   conflict.ConflictEnd.Format(time.RFC3339),
	}
	return c.JSON(http.StatusConflict, CreateErrorResponse("SCHEDULING_CONFLICT", conflict.Error(), details))
}
