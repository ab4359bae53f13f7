package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ltxvideo/api/internal/service"
	"github.com/ltxvideo/api/pkg/response"
)

type SystemHandler struct {
	service *service.SystemService
}

func NewSystemHandler(svc *service.SystemService) *SystemHandler {
	return &SystemHandler{service: svc}
}

// Root handles GET /
func (h *SystemHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"timestamp": time.Now().Unix(),
	})
}

// Health handles GET /health
// @Summary      Service health
// @Description  Pipeline readiness, job counts and backing service status
// @Tags         System
// @Produce      json
// @Success      200 {object} model.HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	result, err := h.service.Health(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, result)
}

// Models handles GET /models
// @Summary      Model information
// @Description  The active model and its generation limits
// @Tags         System
// @Produce      json
// @Success      200 {object} model.ModelsResponse
// @Router       /models [get]
func (h *SystemHandler) Models(c *fiber.Ctx) error {
	return response.OK(c, h.service.Models())
}
