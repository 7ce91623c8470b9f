package handlers

import (
	"errors"
	"net/http"

	"agendly/internal/common"
	"agendly/internal/models"
	"agendly/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// AppointmentHandlers handles HTTP requests for appointments
type AppointmentHandlers struct {
	appointmentService services.AppointmentService
}

// NewAppointmentHandlers creates a new appointment handlers instance
func NewAppointmentHandlers(appointmentService services.AppointmentService) *AppointmentHandlers {
	return &AppointmentHandlers{appointmentService: appointmentService}
}

// CreateAppointment handles POST /appointments
func (h *AppointmentHandlers) CreateAppointment(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req struct {
		ClientID       string  `json:"client_id"`
		OfferingID     string  `json:"offering_id"`
		ProfessionalID string  `json:"professional_id"`
		StartsAt       string  `json:"starts_at"`
		Notes          *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	clientID, err := common.ValidateUUID(req.ClientID, "client_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	offeringID, err := common.ValidateUUID(req.OfferingID, "offering_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	professionalID, err := common.ValidateUUID(req.ProfessionalID, "professional_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	startsAt, err := common.ValidateTimestamp(req.StartsAt, "starts_at")
	if err != nil {
		return common.SendValidationError(c, "starts_at", err.Error())
	}

	appointment, err := h.appointmentService.Create(ctx, &services.CreateAppointmentRequest{
		TenantID:       tenantID,
		ClientID:       clientID,
		OfferingID:     offeringID,
		ProfessionalID: professionalID,
		StartsAt:       startsAt,
		Notes:          req.Notes,
	})
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusCreated, appointment)
}

// RescheduleAppointment handles PUT /appointments/:id/reschedule
func (h *AppointmentHandlers) RescheduleAppointment(c echo.Context) error {
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
		StartsAt string `json:"starts_at"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	startsAt, err := common.ValidateTimestamp(req.StartsAt, "starts_at")
	if err != nil {
		return common.SendValidationError(c, "starts_at", err.Error())
	}

	appointment, err := h.appointmentService.Reschedule(ctx, tenantID, id, startsAt)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, appointment)
}

// UpdateAppointmentStatus handles PATCH /appointments/:id
func (h *AppointmentHandlers) UpdateAppointmentStatus(c echo.Context) error {
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
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Status, "status"); err != nil {
		return common.SendValidationError(c, "status", err.Error())
	}

	appointment, err := h.appointmentService.ChangeStatus(ctx, tenantID, id, models.AppointmentStatus(req.Status))
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, appointment)
}

// CancelAppointment handles POST /appointments/:id/cancel
func (h *AppointmentHandlers) CancelAppointment(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	appointment, err := h.appointmentService.Cancel(ctx, tenantID, id)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, appointment)
}

// GetAppointment handles GET /appointments/:id
func (h *AppointmentHandlers) GetAppointment(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	appointment, err := h.appointmentService.GetByID(ctx, tenantID, id)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, appointment)
}

// ListAppointments handles GET /appointments
func (h *AppointmentHandlers) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	filter := &models.AppointmentSearchFilter{}
	if p := c.QueryParam("professional_id"); p != "" {
		professionalID, err := common.ValidateUUID(p, "professional_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.ProfessionalID = &professionalID
	}
	if s := c.QueryParam("status"); s != "" {
		status := models.AppointmentStatus(s)
		filter.Status = &status
	}
	if f := c.QueryParam("from"); f != "" {
		from, err := common.ValidateTimestamp(f, "from")
		if err != nil {
			return common.SendValidationError(c, "from", err.Error())
		}
		filter.From = &from
	}
	if t := c.QueryParam("to"); t != "" {
		to, err := common.ValidateTimestamp(t, "to")
		if err != nil {
			return common.SendValidationError(c, "to", err.Error())
		}
		filter.To = &to
	}

	appointments, err := h.appointmentService.List(ctx, tenantID, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list appointments")
	}

	return c.JSON(http.StatusOK, appointments)
}

// mapError translates scheduling errors to the HTTP taxonomy: conflicts are
// 409, invalid transitions 400, unknown references 404, the rest 500.
func (h *AppointmentHandlers) mapError(c echo.Context, err error) error {
	var conflict *common.SchedulingConflictError
	if errors.As(err, &conflict) {
		return common.SendConflictError(c, conflict)
	}
	var transition *common.InvalidTransitionError
	if errors.As(err, &transition) {
		return common.SendClientError(c, transition.Error())
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return common.SendNotFoundError(c, "Appointment or referenced record")
	}
	return common.SendServerError(c, "Scheduling operation failed")
}
