package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"agendly/internal/common"
	"agendly/internal/services"

	"github.com/labstack/echo/v4"
)

type NotificationHandlers struct {
	notificationService services.NotificationService
}

func NewNotificationHandlers(notificationService services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notificationService: notificationService}
}

// ListNotifications handles GET /notifications — the authenticated user's feed.
func (h *NotificationHandlers) ListNotifications(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	notifications, err := h.notificationService.ListForUser(ctx, tenantID, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list notifications")
	}

	return c.JSON(http.StatusOK, notifications)
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandlers) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.notificationService.MarkRead(ctx, tenantID, id); err != nil {
		return common.SendServerError(c, "Failed to mark notification as read")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// SetWebhook handles PUT /notifications/webhook — configures the tenant's
// outbound webhook endpoint for appointment events.
func (h *NotificationHandlers) SetWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.URL, "url"); err != nil {
		return common.SendValidationError(c, "url", err.Error())
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return common.SendValidationError(c, "url", "url must be a valid http or https URL")
	}

	if err := h.notificationService.SetWebhookURL(ctx, tenantID, req.URL); err != nil {
		return common.SendServerError(c, "Failed to save webhook configuration")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Webhook configured successfully"})
}

// ClearWebhook handles DELETE /notifications/webhook — removes the tenant's
// outbound webhook configuration.
func (h *NotificationHandlers) ClearWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	if err := h.notificationService.SetWebhookURL(ctx, tenantID, ""); err != nil {
		return common.SendServerError(c, "Failed to remove webhook configuration")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Webhook removed"})
}

// Broadcast handles POST /notifications/broadcast — a tenant-wide announcement.
func (h *NotificationHandlers) Broadcast(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Message, "message"); err != nil {
		return common.SendValidationError(c, "message", err.Error())
	}

	if err := h.notificationService.Broadcast(ctx, tenantID, req.Message); err != nil {
		return common.SendServerError(c, "Failed to send broadcast")
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "Broadcast sent"})
}
