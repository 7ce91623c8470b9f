package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"agendly/internal/common"
	"agendly/internal/models"
	"agendly/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type OfferingHandlers struct {
	offeringService services.OfferingService
}

func NewOfferingHandlers(offeringService services.OfferingService) *OfferingHandlers {
	return &OfferingHandlers{offeringService: offeringService}
}

// CreateOffering handles POST /offerings
func (h *OfferingHandlers) CreateOffering(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req struct {
		Name            string  `json:"name"`
		Description     *string `json:"description"`
		DurationMinutes int     `json:"duration_minutes"`
		PriceCents      int     `json:"price_cents"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if req.DurationMinutes <= 0 {
		return common.SendValidationError(c, "duration_minutes", "duration_minutes must be greater than 0")
	}

	offering := &models.Offering{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
	}
	if err := h.offeringService.Create(ctx, tenantID, offering); err != nil {
		return common.SendServerError(c, "Failed to create offering")
	}

	return c.JSON(http.StatusCreated, offering)
}

// GetOffering handles GET /offerings/:id
func (h *OfferingHandlers) GetOffering(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	offering, err := h.offeringService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Offering")
		}
		return common.SendServerError(c, "Failed to fetch offering")
	}

	return c.JSON(http.StatusOK, offering)
}

// UpdateOffering handles PUT /offerings/:id. Appointments already booked keep
// their snapshotted end times.
func (h *OfferingHandlers) UpdateOffering(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Name            string  `json:"name"`
		Description     *string `json:"description"`
		DurationMinutes int     `json:"duration_minutes"`
		PriceCents      int     `json:"price_cents"`
		Active          *bool   `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if req.DurationMinutes <= 0 {
		return common.SendValidationError(c, "duration_minutes", "duration_minutes must be greater than 0")
	}

	offering, err := h.offeringService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Offering")
		}
		return common.SendServerError(c, "Failed to fetch offering")
	}

	offering.Name = req.Name
	offering.Description = req.Description
	offering.DurationMinutes = req.DurationMinutes
	offering.PriceCents = req.PriceCents
	if req.Active != nil {
		offering.Active = *req.Active
	}

	if err := h.offeringService.Update(ctx, tenantID, offering); err != nil {
		return common.SendServerError(c, "Failed to update offering")
	}

	return c.JSON(http.StatusOK, offering)
}

// DeleteOffering handles DELETE /offerings/:id
func (h *OfferingHandlers) DeleteOffering(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.offeringService.Delete(ctx, tenantID, id); err != nil {
		return common.SendServerError(c, "Failed to delete offering")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Offering deleted successfully"})
}

// ListOfferings handles GET /offerings
func (h *OfferingHandlers) ListOfferings(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	offerings, err := h.offeringService.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list offerings")
	}

	return c.JSON(http.StatusOK, offerings)
}
