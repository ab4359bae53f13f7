package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/ltxvideo/api/internal/engine"
	"github.com/ltxvideo/api/internal/service"
	"github.com/ltxvideo/api/internal/store"
	"github.com/ltxvideo/api/pkg/response"
)

// writeError maps service and store errors onto the API error envelope
func writeError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		var details interface{}
		if len(verr.Details) > 0 {
			details = verr.Details
		}
		return response.ValidationError(c, verr.Message, details)
	case errors.Is(err, store.ErrJobNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, service.ErrOutputMissing):
		return response.NotFound(c, "Output file not found")
	case errors.Is(err, service.ErrJobNotCompleted):
		return response.JobNotReady(c, err.Error())
	case errors.Is(err, store.ErrJobBusy):
		return response.JobBusy(c, "Job is processing and cannot be deleted")
	case errors.Is(err, engine.ErrEngineClosed):
		return response.ServiceUnavailable(c, "Server is shutting down")
	default:
		// the app error handler logs it and replies with a generic 500
		return err
	}
}

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
