package handlers

import (
	"net/http"

	"agendly/internal/common"
	"agendly/internal/models"
	"agendly/internal/services"

	"github.com/labstack/echo/v4"
)

type BlackoutHandlers struct {
	blackoutService services.BlackoutService
}

func NewBlackoutHandlers(blackoutService services.BlackoutService) *BlackoutHandlers {
	return &BlackoutHandlers{blackoutService: blackoutService}
}

// CreateBlackout handles POST /professionals/:id/blackouts
func (h *BlackoutHandlers) CreateBlackout(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	professionalID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		StartsAt string  `json:"starts_at"`
		EndsAt   string  `json:"ends_at"`
		Reason   *string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	startsAt, err := common.ValidateTimestamp(req.StartsAt, "starts_at")
	if err != nil {
		return common.SendValidationError(c, "starts_at", err.Error())
	}
	endsAt, err := common.ValidateTimestamp(req.EndsAt, "ends_at")
	if err != nil {
		return common.SendValidationError(c, "ends_at", err.Error())
	}

	blackout := &models.Blackout{
		ProfessionalID: professionalID,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		Reason:         req.Reason,
	}
	if err := h.blackoutService.Create(ctx, tenantID, blackout); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, blackout)
}

// DeleteBlackout handles DELETE /professionals/:id/blackouts/:blackoutId
func (h *BlackoutHandlers) DeleteBlackout(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("blackoutId"), "blackoutId")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.blackoutService.Delete(ctx, tenantID, id); err != nil {
		return common.SendServerError(c, "Failed to delete blackout")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Blackout deleted successfully"})
}

// ListBlackouts handles GET /professionals/:id/blackouts
func (h *BlackoutHandlers) ListBlackouts(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	professionalID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	blackouts, err := h.blackoutService.List(ctx, tenantID, professionalID)
	if err != nil {
		return common.SendServerError(c, "Failed to list blackouts")
	}

	return c.JSON(http.StatusOK, blackouts)
}
