package model

import "time"

// Defaults applied to unspecified generation parameters.
const (
	DefaultSeed              int64   = 42
	DefaultHeight                    = 512
	DefaultWidth                     = 768
	DefaultNumFrames                 = 121
	DefaultFrameRate         float64 = 25.0
	DefaultNumInferenceSteps         = 40
	DefaultCFGGuidanceScale  float64 = 3.0
)

// TextToVideoRequest represents the body of POST /api/v1/text-to-video
type TextToVideoRequest struct {
	Prompt            string   `json:"prompt" validate:"required"`
	NegativePrompt    string   `json:"negative_prompt"`
	Seed              *int64   `json:"seed"`
	Height            *int     `json:"height"`
	Width             *int     `json:"width"`
	NumFrames         *int     `json:"num_frames"`
	FrameRate         *float64 `json:"frame_rate"`
	NumInferenceSteps *int     `json:"num_inference_steps"`
	CFGGuidanceScale  *float64 `json:"cfg_guidance_scale"`
}

// ImageToVideoRequest holds the non-file fields of the multipart image request.
type ImageToVideoRequest struct {
	TextToVideoRequest
	ImageName string
	Image     []byte `validate:"required"`
}

// GenerationParams is the fully materialized parameter set handed to the pipeline.
type GenerationParams struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	Seed              int64   `json:"seed"`
	Height            int     `json:"height"`
	Width             int     `json:"width"`
	NumFrames         int     `json:"num_frames"`
	FrameRate         float64 `json:"frame_rate"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	CFGGuidanceScale  float64 `json:"cfg_guidance_scale"`
}

// Materialize fills unset optional fields with their defaults. Values are
// not range-checked here; the pipeline owns that.
func (r *TextToVideoRequest) Materialize() GenerationParams {
	p := GenerationParams{
		Prompt:            r.Prompt,
		NegativePrompt:    r.NegativePrompt,
		Seed:              DefaultSeed,
		Height:            DefaultHeight,
		Width:             DefaultWidth,
		NumFrames:         DefaultNumFrames,
		FrameRate:         DefaultFrameRate,
		NumInferenceSteps: DefaultNumInferenceSteps,
		CFGGuidanceScale:  DefaultCFGGuidanceScale,
	}
	if r.Seed != nil {
		p.Seed = *r.Seed
	}
	if r.Height != nil {
		p.Height = *r.Height
	}
	if r.Width != nil {
		p.Width = *r.Width
	}
	if r.NumFrames != nil {
		p.NumFrames = *r.NumFrames
	}
	if r.FrameRate != nil {
		p.FrameRate = *r.FrameRate
	}
	if r.NumInferenceSteps != nil {
		p.NumInferenceSteps = *r.NumInferenceSteps
	}
	if r.CFGGuidanceScale != nil {
		p.CFGGuidanceScale = *r.CFGGuidanceScale
	}
	return p
}

// JobAcceptedResponse is returned by both generation endpoints
type JobAcceptedResponse struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
}

// JobStatusResponse represents the public status contract of a job
type JobStatusResponse struct {
	JobID       string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	OutputURL   *string    `json:"output_url,omitempty"`
	RemoteURL   *string    `json:"remote_url,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobListResponse represents GET /api/v1/jobs
type JobListResponse struct {
	Count int          `json:"count"`
	Jobs  []JobSummary `json:"jobs"`
}

// JobDeleteResponse represents DELETE /api/v1/jobs/:jobId
type JobDeleteResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// HealthResponse represents GET /health
type HealthResponse struct {
	Status         string          `json:"status"`
	Model          string          `json:"model"`
	PipelineLoaded bool            `json:"pipeline_loaded"`
	ActiveJobs     int             `json:"active_jobs"`
	TotalJobs      int             `json:"total_jobs"`
	QueuedJobs     int             `json:"queued_jobs"`
	Services       map[string]bool `json:"services"`
}

// ModelsResponse represents GET /models
type ModelsResponse struct {
	ActiveModel   string           `json:"active_model"`
	Capabilities  []GenerationMode `json:"capabilities"`
	MaxFrames     int              `json:"max_frames"`
	MaxResolution string           `json:"max_resolution"`
	DefaultFPS    int              `json:"default_fps"`
	Quantization  string           `json:"quantization"`
}

// DownloadURL is the API path serving a completed job's video.
func DownloadURL(jobID string) string {
	return "/api/v1/download/" + jobID
}

// DownloadFilename is the attachment name of a job's video.
func DownloadFilename(jobID string) string {
	return "ltx2_" + jobID + ".mp4"
}
