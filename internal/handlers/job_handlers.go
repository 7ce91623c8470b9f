package handlers

import (
	"net/http"

	"agendly/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobHandlers exposes the background scheduler state for operators.
type JobHandlers struct {
	jobScheduler *background.JobScheduler
}

func NewJobHandlers(jobScheduler *background.JobScheduler) *JobHandlers {
	return &JobHandlers{jobScheduler: jobScheduler}
}

// GetJobStatus handles GET /jobs
func (h *JobHandlers) GetJobStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.jobScheduler.GetJobStatus())
}
