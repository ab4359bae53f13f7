package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/ltxvideo/api/internal/engine"
	"github.com/ltxvideo/api/internal/model"
	"github.com/ltxvideo/api/internal/store"
	"github.com/sirupsen/logrus"
)

// Accepted input image types and the extension they are stored with
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// GenerationService registers generation jobs and hands them to the engine
type GenerationService struct {
	store         store.JobStore
	engine        engine.Engine
	maxImageBytes int64
	logger        *logrus.Logger
}

// NewGenerationService creates a new generation service
func NewGenerationService(jobStore store.JobStore, eng engine.Engine, maxImageMB int, logger *logrus.Logger) *GenerationService {
	return &GenerationService{
		store:         jobStore,
		engine:        eng,
		maxImageBytes: int64(maxImageMB) * 1024 * 1024,
		logger:        logger,
	}
}

// SubmitText registers a text-to-video job. It returns as soon as the job is queued.
func (s *GenerationService) SubmitText(ctx context.Context, req *model.TextToVideoRequest) (*model.JobAcceptedResponse, error) {
	if err := validatePrompt(req.Prompt); err != nil {
		return nil, err
	}

	job, err := s.store.Create(ctx, store.NewJob{
		Mode:    model.ModeTextToVideo,
		Request: req.Materialize(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return s.submit(ctx, job)
}

// SubmitImage registers an image-to-video job. The image is written to disk
// before the job is queued.
func (s *GenerationService) SubmitImage(ctx context.Context, req *model.ImageToVideoRequest) (*model.JobAcceptedResponse, error) {
	if err := validatePrompt(req.Prompt); err != nil {
		return nil, err
	}
	ext, err := s.validateImage(req.Image)
	if err != nil {
		return nil, err
	}

	job, err := s.store.Create(ctx, store.NewJob{
		Mode:          model.ModeImageToVideo,
		Request:       req.Materialize(),
		InputImageExt: ext,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if err := os.WriteFile(job.InputImagePath, req.Image, 0o644); err != nil {
		s.discard(job.ID)
		return nil, fmt.Errorf("failed to store input image: %w", err)
	}

	// a delete racing the write found no file to remove
	if _, err := s.store.Get(ctx, job.ID); err != nil {
		if rmErr := os.Remove(job.InputImagePath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.WithError(rmErr).WithField("job_id", job.ID).Warn("failed to remove orphaned input image")
		}
		return nil, fmt.Errorf("job removed before it was queued: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"job_id": job.ID,
		"image":  req.ImageName,
		"bytes":  len(req.Image),
	}).Debug("input image stored")

	return s.submit(ctx, job)
}

func (s *GenerationService) submit(ctx context.Context, job *model.JobRecord) (*model.JobAcceptedResponse, error) {
	if err := s.engine.Submit(ctx, job.ID); err != nil {
		s.discard(job.ID)
		return nil, fmt.Errorf("failed to queue job: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"mode":    job.Mode,
		"pending": s.engine.Pending(),
	}).Info("job accepted")

	return &model.JobAcceptedResponse{
		JobID:  job.ID,
		Status: job.Status,
	}, nil
}

// discard drops a job that never reached the engine
func (s *GenerationService) discard(jobID string) {
	if _, err := s.store.Delete(context.Background(), jobID, nil); err != nil && !errors.Is(err, store.ErrJobNotFound) {
		s.logger.WithError(err).WithField("job_id", jobID).Warn("failed to discard unsubmitted job")
	}
}

func (s *GenerationService) validateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", invalid("image is required", nil)
	}
	if s.maxImageBytes > 0 && int64(len(data)) > s.maxImageBytes {
		return "", invalid("image exceeds size limit", map[string]interface{}{
			"maxSize":  s.maxImageBytes,
			"fileSize": len(data),
		})
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", invalid("unsupported image type. Supported: JPEG, PNG, WEBP, BMP", map[string]interface{}{
			"contentType": contentType,
		})
	}
	return ext, nil
}

func validatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return invalid("prompt is required", map[string]interface{}{"prompt": "required"})
	}
	return nil
}
