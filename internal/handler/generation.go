package handler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/ltxvideo/api/internal/model"
	"github.com/ltxvideo/api/internal/service"
	"github.com/ltxvideo/api/pkg/response"
)

type GenerationHandler struct {
	service       *service.GenerationService
	validator     *validator.Validate
	maxImageBytes int64
}

func NewGenerationHandler(svc *service.GenerationService, v *validator.Validate, maxImageMB int) *GenerationHandler {
	return &GenerationHandler{
		service:       svc,
		validator:     v,
		maxImageBytes: int64(maxImageMB) * 1024 * 1024,
	}
}

// TextToVideo handles POST /api/v1/text-to-video
// @Summary      Generate video from text
// @Description  Queue a text-to-video generation job. Returns immediately with a job id.
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Param        request body model.TextToVideoRequest true "Generation request"
// @Success      202 {object} model.JobAcceptedResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/text-to-video [post]
func (h *GenerationHandler) TextToVideo(c *fiber.Ctx) error {
	var req model.TextToVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.SubmitText(c.Context(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return response.Accepted(c, result)
}

// ImageToVideo handles POST /api/v1/image-to-video
// @Summary      Generate video from an image
// @Description  Queue an image-to-video generation job conditioned on the uploaded image.
// @Tags         Generation
// @Accept       multipart/form-data
// @Produce      json
// @Param        prompt              formData string true  "Prompt"
// @Param        negative_prompt     formData string false "Negative prompt"
// @Param        num_frames          formData int    false "Number of frames (default 121)"
// @Param        seed                formData int    false "Seed (default 42)"
// @Param        height              formData int    false "Height (default 512)"
// @Param        width               formData int    false "Width (default 768)"
// @Param        frame_rate          formData number false "Frame rate (default 25)"
// @Param        num_inference_steps formData int    false "Inference steps (default 40)"
// @Param        cfg_guidance_scale  formData number false "CFG guidance scale (default 3.0)"
// @Param        image               formData file   true  "Conditioning image (JPEG, PNG, WEBP, BMP)"
// @Success      202 {object} model.JobAcceptedResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/image-to-video [post]
func (h *GenerationHandler) ImageToVideo(c *fiber.Ctx) error {
	var req model.ImageToVideoRequest
	req.Prompt = c.FormValue("prompt")
	req.NegativePrompt = c.FormValue("negative_prompt")

	invalid := map[string]string{}
	req.Seed = formInt64(c, "seed", invalid)
	req.Height = formInt(c, "height", invalid)
	req.Width = formInt(c, "width", invalid)
	req.NumFrames = formInt(c, "num_frames", invalid)
	req.FrameRate = formFloat(c, "frame_rate", invalid)
	req.NumInferenceSteps = formInt(c, "num_inference_steps", invalid)
	req.CFGGuidanceScale = formFloat(c, "cfg_guidance_scale", invalid)
	if len(invalid) > 0 {
		return response.ValidationError(c, "Invalid numeric form field", invalid)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return response.ValidationError(c, "Image is required", nil)
	}
	if h.maxImageBytes > 0 && file.Size > h.maxImageBytes {
		return response.ValidationError(c, fmt.Sprintf("Image exceeds %dMB limit", h.maxImageBytes/(1024*1024)), map[string]interface{}{
			"maxSize":  h.maxImageBytes,
			"fileSize": file.Size,
		})
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open image")
	}
	defer f.Close()

	req.Image, err = io.ReadAll(f)
	if err != nil {
		return response.ServiceError(c, "Failed to read image")
	}
	req.ImageName = file.Filename

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.SubmitImage(c.Context(), &req)
	if err != nil {
		return writeError(c, err)
	}

	return response.Accepted(c, result)
}

func formValue(c *fiber.Ctx, key string) (string, bool) {
	v := strings.TrimSpace(c.FormValue(key))
	return v, v != ""
}

func formInt(c *fiber.Ctx, key string, invalid map[string]string) *int {
	v, ok := formValue(c, key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		invalid[key] = "int"
		return nil
	}
	return &n
}

func formInt64(c *fiber.Ctx, key string, invalid map[string]string) *int64 {
	v, ok := formValue(c, key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		invalid[key] = "int"
		return nil
	}
	return &n
}

func formFloat(c *fiber.Ctx, key string, invalid map[string]string) *float64 {
	v, ok := formValue(c, key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		invalid[key] = "number"
		return nil
	}
	return &n
}
