package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"agendly/internal/common"
	"agendly/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

const maxLogoSize = 5 << 20 // 5 MiB

// TenantHandlers serves the platform surface: tenant signup and management
// reached on the base domain, not on a tenant subdomain.
type TenantHandlers struct {
	tenantService services.TenantService
	mediaService  services.MediaService
}

func NewTenantHandlers(tenantService services.TenantService, mediaService services.MediaService) *TenantHandlers {
	return &TenantHandlers{
		tenantService: tenantService,
		mediaService:  mediaService,
	}
}

// CreateTenant handles POST /tenants (signup)
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.tenantService.Create(ctx, &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, tenant)
}

// GetTenant handles GET /tenants/:id
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	tenant, err := h.tenantService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Tenant")
		}
		return common.SendServerError(c, "Failed to fetch tenant")
	}

	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenant handles PUT /tenants/:id
func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req services.UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.ID = id

	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateRequiredString(req.Status, "status"); err != nil {
		return common.SendValidationError(c, "status", err.Error())
	}

	if err := h.tenantService.Update(ctx, &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Tenant")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Tenant updated successfully"})
}

// DeactivateTenant handles DELETE /tenants/:id. Deactivation makes the
// subdomain stop resolving; nothing is physically deleted.
func (h *TenantHandlers) DeactivateTenant(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.tenantService.Deactivate(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Tenant")
		}
		return common.SendServerError(c, "Failed to deactivate tenant")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Tenant deactivated successfully"})
}

// ListTenants handles GET /tenants
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	tenants, err := h.tenantService.List(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list tenants")
	}

	return c.JSON(http.StatusOK, tenants)
}

// GetPlans handles GET /plans
func (h *TenantHandlers) GetPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tenantService.GetAvailablePlans())
}

// UploadLogo handles POST /tenants/:id/logo with a multipart form field named
// "logo".
func (h *TenantHandlers) UploadLogo(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	tenant, err := h.tenantService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Tenant")
		}
		return common.SendServerError(c, "Failed to fetch tenant")
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return common.SendClientError(c, "logo file is required")
	}
	if file.Size > maxLogoSize {
		return common.SendClientError(c, "logo exceeds maximum size of 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	objectName, err := h.mediaService.UploadLogo(ctx, id, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return common.SendServerError(c, "Failed to store logo")
	}

	if err := h.tenantService.Update(ctx, &services.UpdateTenantRequest{
		ID:      id,
		Name:    tenant.Name,
		Plan:    tenant.Plan,
		Status:  tenant.Status,
		LogoURL: &objectName,
	}); err != nil {
		return common.SendServerError(c, "Failed to save logo reference")
	}

	url, err := h.mediaService.GetPresignedURL(objectName, 24*time.Hour)
	if err != nil {
		return common.SendServerError(c, "Failed to generate logo URL")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"object_name": objectName,
		"url":         url,
	})
}
