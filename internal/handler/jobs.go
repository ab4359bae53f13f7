package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ltxvideo/api/internal/service"
	"github.com/ltxvideo/api/pkg/response"
)

type JobsHandler struct {
	service *service.JobService
}

func NewJobsHandler(svc *service.JobService) *JobsHandler {
	return &JobsHandler{service: svc}
}

// Status handles GET /api/v1/status/:jobId
// @Summary      Get job status
// @Description  Get the lifecycle state of a generation job. output_url is set once completed.
// @Tags         Jobs
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.JobStatusResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/status/{jobId} [get]
func (h *JobsHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.Status(c.Context(), jobID)
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, result)
}

// Download handles GET /api/v1/download/:jobId
// @Summary      Download generated video
// @Description  Stream the mp4 of a completed job as an attachment
// @Tags         Jobs
// @Produce      video/mp4
// @Param        jobId path string true "Job ID"
// @Success      200 {file} file
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/download/{jobId} [get]
func (h *JobsHandler) Download(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	artifact, err := h.service.Artifact(c.Context(), jobID)
	if err != nil {
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "video/mp4")
	return c.Download(artifact.Path, artifact.Filename)
}

// List handles GET /api/v1/jobs
// @Summary      List recent jobs
// @Description  List the most recent jobs, oldest first
// @Tags         Jobs
// @Produce      json
// @Param        limit query int false "Maximum number of jobs (default 20)"
// @Success      200 {object} model.JobListResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/jobs [get]
func (h *JobsHandler) List(c *fiber.Ctx) error {
	limit := service.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return response.ValidationError(c, "limit must be an integer", nil)
		}
		limit = n
	}

	result, err := h.service.List(c.Context(), limit)
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, result)
}

// Delete handles DELETE /api/v1/jobs/:jobId
// @Summary      Delete job
// @Description  Delete a job record and its files. Jobs that are processing cannot be deleted.
// @Tags         Jobs
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} model.JobDeleteResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/jobs/{jobId} [delete]
func (h *JobsHandler) Delete(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.Delete(c.Context(), jobID)
	if err != nil {
		return writeError(c, err)
	}

	return response.OK(c, result)
}
