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

type ClientHandlers struct {
	clientService services.ClientService
}

func NewClientHandlers(clientService services.ClientService) *ClientHandlers {
	return &ClientHandlers{clientService: clientService}
}

// CreateClient handles POST /clients
func (h *ClientHandlers) CreateClient(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req struct {
		Name  string  `json:"name"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
		Notes *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	client := &models.Client{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	}
	if err := h.clientService.Create(ctx, tenantID, client); err != nil {
		return common.SendServerError(c, "Failed to create client")
	}

	return c.JSON(http.StatusCreated, client)
}

// GetClient handles GET /clients/:id
func (h *ClientHandlers) GetClient(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	client, err := h.clientService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Client")
		}
		return common.SendServerError(c, "Failed to fetch client")
	}

	return c.JSON(http.StatusOK, client)
}

// UpdateClient handles PUT /clients/:id
func (h *ClientHandlers) UpdateClient(c echo.Context) error {
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
		Name  string  `json:"name"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
		Notes *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	client, err := h.clientService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Client")
		}
		return common.SendServerError(c, "Failed to fetch client")
	}

	client.Name = req.Name
	client.Email = req.Email
	client.Phone = req.Phone
	client.Notes = req.Notes

	if err := h.clientService.Update(ctx, tenantID, client); err != nil {
		return common.SendServerError(c, "Failed to update client")
	}

	return c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandlers) DeleteClient(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.clientService.Delete(ctx, tenantID, id); err != nil {
		return common.SendServerError(c, "Failed to delete client")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Client deleted successfully"})
}

// ListClients handles GET /clients
func (h *ClientHandlers) ListClients(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	clients, err := h.clientService.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list clients")
	}

	return c.JSON(http.StatusOK, clients)
}
