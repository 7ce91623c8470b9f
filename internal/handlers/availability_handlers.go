package handlers

import (
	"errors"
	"net/http"

	"agendly/internal/common"
	"agendly/internal/models"
	"agendly/internal/services"

	"github.com/labstack/echo/v4"
)

// AvailabilityHandlers handles open-slot queries and weekly template management
type AvailabilityHandlers struct {
	availabilityService services.AvailabilityService
}

func NewAvailabilityHandlers(availabilityService services.AvailabilityService) *AvailabilityHandlers {
	return &AvailabilityHandlers{availabilityService: availabilityService}
}

// GetOpenSlots handles GET /availability?professional_id=&from=&to=
func (h *AvailabilityHandlers) GetOpenSlots(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	professionalID, err := common.ValidateUUID(c.QueryParam("professional_id"), "professional_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	from, err := common.ValidateTimestamp(c.QueryParam("from"), "from")
	if err != nil {
		return common.SendValidationError(c, "from", err.Error())
	}
	to, err := common.ValidateTimestamp(c.QueryParam("to"), "to")
	if err != nil {
		return common.SendValidationError(c, "to", err.Error())
	}

	slots, err := h.availabilityService.OpenSlots(ctx, tenantID, professionalID, from, to)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRange) {
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "Failed to compute open slots")
	}
	if slots == nil {
		slots = []models.Interval{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"professional_id": professionalID,
		"slots":           slots,
	})
}

// GetWeek handles GET /professionals/:id/availability
func (h *AvailabilityHandlers) GetWeek(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	professionalID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	rules, err := h.availabilityService.GetWeek(ctx, tenantID, professionalID)
	if err != nil {
		return common.SendServerError(c, "Failed to load availability")
	}

	return c.JSON(http.StatusOK, rules)
}

// ReplaceWeek handles PUT /professionals/:id/availability. The entire weekly
// template is replaced in one shot; there is no per-day patching.
func (h *AvailabilityHandlers) ReplaceWeek(c echo.Context) error {
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
		Rules []*models.AvailabilityRule `json:"rules"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.availabilityService.ReplaceWeek(ctx, tenantID, professionalID, req.Rules); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Availability updated successfully"})
}
