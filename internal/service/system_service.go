package service

import (
	"context"

	"github.com/ltxvideo/api/internal/config"
	"github.com/ltxvideo/api/internal/engine"
	"github.com/ltxvideo/api/internal/model"
	"github.com/ltxvideo/api/internal/pipeline"
	"github.com/ltxvideo/api/internal/store"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// SystemService reports service health and model capabilities
type SystemService struct {
	cfg      *config.Config
	store    store.JobStore
	engine   engine.Engine
	pipeline pipeline.Pipeline
	redis    Pinger
	storage  bool
}

// NewSystemService creates a system service. redis may be nil.
func NewSystemService(cfg *config.Config, jobStore store.JobStore, eng engine.Engine, p pipeline.Pipeline, redis Pinger, storageEnabled bool) *SystemService {
	return &SystemService{
		cfg:      cfg,
		store:    jobStore,
		engine:   eng,
		pipeline: p,
		redis:    redis,
		storage:  storageEnabled,
	}
}

// Health summarizes pipeline readiness and job counts
func (s *SystemService) Health(ctx context.Context) (*model.HealthResponse, error) {
	total, processing, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	redisUp := false
	if s.redis != nil {
		redisUp = s.redis.Ping(ctx) == nil
	}

	return &model.HealthResponse{
		Status:         "healthy",
		Model:          s.cfg.Pipeline.ModelName,
		PipelineLoaded: s.pipeline.Ready(ctx),
		ActiveJobs:     processing,
		TotalJobs:      total,
		QueuedJobs:     s.engine.Pending(),
		Services: map[string]bool{
			"redis":   redisUp,
			"storage": s.storage,
			"auth":    s.cfg.Auth.Enabled,
		},
	}, nil
}

// Models describes the loaded model
func (s *SystemService) Models() *model.ModelsResponse {
	caps := s.cfg.Capabilities
	return &model.ModelsResponse{
		ActiveModel:   s.cfg.Pipeline.ModelName,
		Capabilities:  model.SupportedModes,
		MaxFrames:     caps.MaxFrames,
		MaxResolution: caps.MaxResolution,
		DefaultFPS:    caps.DefaultFPS,
		Quantization:  caps.Quantization,
	}
}
