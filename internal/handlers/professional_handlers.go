package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"agendly/internal/common"
	"agendly/internal/models"
	"agendly/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

const maxAvatarSize = 5 << 20 // 5 MiB

type ProfessionalHandlers struct {
	professionalService services.ProfessionalService
	mediaService        services.MediaService
}

func NewProfessionalHandlers(professionalService services.ProfessionalService, mediaService services.MediaService) *ProfessionalHandlers {
	return &ProfessionalHandlers{
		professionalService: professionalService,
		mediaService:        mediaService,
	}
}

// CreateProfessional handles POST /professionals
func (h *ProfessionalHandlers) CreateProfessional(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req struct {
		Name   string  `json:"name"`
		Bio    *string `json:"bio"`
		UserID *string `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	professional := &models.Professional{
		Name: req.Name,
		Bio:  req.Bio,
	}
	if req.UserID != nil {
		userID, err := common.ValidateUUID(*req.UserID, "user_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		professional.UserID = &userID
	}

	if err := h.professionalService.Create(ctx, tenantID, professional); err != nil {
		return common.SendServerError(c, "Failed to create professional")
	}

	return c.JSON(http.StatusCreated, professional)
}

// GetProfessional handles GET /professionals/:id
func (h *ProfessionalHandlers) GetProfessional(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	professional, err := h.professionalService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Professional")
		}
		return common.SendServerError(c, "Failed to fetch professional")
	}

	return c.JSON(http.StatusOK, professional)
}

// UpdateProfessional handles PUT /professionals/:id
func (h *ProfessionalHandlers) UpdateProfessional(c echo.Context) error {
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
		Name   string  `json:"name"`
		Bio    *string `json:"bio"`
		Active *bool   `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	professional, err := h.professionalService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Professional")
		}
		return common.SendServerError(c, "Failed to fetch professional")
	}

	professional.Name = req.Name
	professional.Bio = req.Bio
	if req.Active != nil {
		professional.Active = *req.Active
	}

	if err := h.professionalService.Update(ctx, tenantID, professional); err != nil {
		return common.SendServerError(c, "Failed to update professional")
	}

	return c.JSON(http.StatusOK, professional)
}

// DeleteProfessional handles DELETE /professionals/:id
func (h *ProfessionalHandlers) DeleteProfessional(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	professional, err := h.professionalService.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Professional")
		}
		return common.SendServerError(c, "Failed to fetch professional")
	}

	if err := h.professionalService.Delete(ctx, tenantID, id); err != nil {
		return common.SendServerError(c, "Failed to delete professional")
	}

	// The stored avatar is orphaned once the record is gone; removal is best
	// effort and never fails the delete.
	if professional.AvatarURL != nil {
		if err := h.mediaService.DeleteObject(ctx, *professional.AvatarURL); err != nil {
			log.Printf("failed to remove avatar object %s: %v", *professional.AvatarURL, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Professional deleted successfully"})
}

// ListProfessionals handles GET /professionals
func (h *ProfessionalHandlers) ListProfessionals(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	professionals, err := h.professionalService.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list professionals")
	}

	return c.JSON(http.StatusOK, professionals)
}

// UploadAvatar handles POST /professionals/:id/avatar with a multipart form
// field named "avatar".
func (h *ProfessionalHandlers) UploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if _, err := h.professionalService.GetByID(ctx, tenantID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Professional")
		}
		return common.SendServerError(c, "Failed to fetch professional")
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return common.SendClientError(c, "avatar file is required")
	}
	if file.Size > maxAvatarSize {
		return common.SendClientError(c, "avatar exceeds maximum size of 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	objectName, err := h.mediaService.UploadAvatar(ctx, tenantID, id, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return common.SendServerError(c, "Failed to store avatar")
	}

	if err := h.professionalService.SetAvatarURL(ctx, tenantID, id, objectName); err != nil {
		return common.SendServerError(c, "Failed to save avatar reference")
	}

	url, err := h.mediaService.GetPresignedURL(objectName, 24*time.Hour)
	if err != nil {
		return common.SendServerError(c, "Failed to generate avatar URL")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"object_name": objectName,
		"url":         url,
	})
}
