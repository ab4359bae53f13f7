package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ltxvideo/api/internal/client"
	"github.com/ltxvideo/api/internal/model"
	"github.com/ltxvideo/api/internal/pipeline"
	"github.com/ltxvideo/api/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	CodeGenerationFailed = "GENERATION_FAILED"

	referenceFrame    = 0
	referenceStrength = 1.0
)

// Notifier receives job lifecycle events
type Notifier interface {
	BroadcastStatus(jobID string, status model.JobStatus)
	BroadcastComplete(jobID, outputURL string)
	BroadcastError(jobID, code, message string)
}

// GenerationWorker runs one job end to end. The engine guarantees at most
// one Process call is active at a time.
type GenerationWorker struct {
	store    store.JobStore
	pipeline pipeline.Pipeline
	encoder  pipeline.Encoder
	storage  client.StorageClient
	notifier Notifier
	logger   *logrus.Logger
	now      func() time.Time
}

// NewGenerationWorker creates a worker. storage may be nil.
func NewGenerationWorker(
	jobStore store.JobStore,
	p pipeline.Pipeline,
	encoder pipeline.Encoder,
	storage client.StorageClient,
	notifier Notifier,
	logger *logrus.Logger,
) *GenerationWorker {
	return &GenerationWorker{
		store:    jobStore,
		pipeline: p,
		encoder:  encoder,
		storage:  storage,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Process takes jobID from pending to a terminal state. Failures are recorded
// on the job and never returned.
func (w *GenerationWorker) Process(ctx context.Context, jobID string) {
	log := w.logger.WithField("job_id", jobID)

	job, err := w.store.Update(ctx, jobID, func(r *model.JobRecord) error {
		return r.Transition(model.JobStatusProcessing, w.now())
	})
	if errors.Is(err, store.ErrJobNotFound) {
		log.Info("job deleted before it started, skipping")
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to start job")
		return
	}
	w.notifier.BroadcastStatus(jobID, model.JobStatusProcessing)

	log.WithFields(logrus.Fields{
		"mode":   job.Mode,
		"prompt": truncate(job.Request.Prompt, 50),
	}).Info("starting generation")

	remoteURL, genErr := w.generate(ctx, job)
	if genErr != nil {
		w.fail(ctx, log, jobID, genErr.Error())
		return
	}

	_, err = w.store.Update(ctx, jobID, func(r *model.JobRecord) error {
		r.RemoteURL = remoteURL
		return r.Transition(model.JobStatusCompleted, w.now())
	})
	if err != nil {
		log.WithError(err).Error("failed to mark job completed")
		return
	}
	w.notifier.BroadcastStatus(jobID, model.JobStatusCompleted)
	w.notifier.BroadcastComplete(jobID, model.DownloadURL(jobID))
	log.WithField("output_path", job.OutputPath).Info("generation completed")
}

// generate runs the pipeline and encoder. A panic in either is reported as an error.
func (w *GenerationWorker) generate(ctx context.Context, job *model.JobRecord) (remoteURL string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
			removeIfExists(job.OutputPath)
		}
	}()

	params := buildParams(job)
	result := w.pipeline.Generate(ctx, params)
	if result.Failed() {
		msg := result.Failure
		if msg == "" {
			msg = pipeline.ErrEmptyOutput.Error()
		}
		return "", errors.New(msg)
	}

	err = w.encoder.Encode(ctx, &pipeline.EncodeRequest{
		Output:      result.Output,
		FPS:         params.FrameRate,
		OutputPath:  job.OutputPath,
		VideoChunks: pipeline.VideoChunks(params.NumFrames, params.Tiling),
	})
	if err != nil {
		removeIfExists(job.OutputPath)
		return "", err
	}

	return w.mirror(ctx, job), nil
}

// mirror copies the finished video to object storage. Failures are logged only.
func (w *GenerationWorker) mirror(ctx context.Context, job *model.JobRecord) string {
	if w.storage == nil {
		return ""
	}
	url, err := client.UploadFile(ctx, w.storage, client.VideoKey(job.ID), job.OutputPath, "video/mp4")
	if err != nil {
		w.logger.WithError(err).WithField("job_id", job.ID).Warn("failed to mirror video to object storage")
		return ""
	}
	return url
}

func (w *GenerationWorker) fail(ctx context.Context, log *logrus.Entry, jobID, msg string) {
	_, err := w.store.Update(ctx, jobID, func(r *model.JobRecord) error {
		return r.Fail(msg, w.now())
	})
	if err != nil {
		log.WithError(err).Error("failed to mark job failed")
		return
	}
	w.notifier.BroadcastStatus(jobID, model.JobStatusFailed)
	w.notifier.BroadcastError(jobID, CodeGenerationFailed, msg)
	log.WithField("error", msg).Error("generation failed")
}

func buildParams(job *model.JobRecord) *pipeline.Params {
	req := job.Request
	params := &pipeline.Params{
		Prompt:            req.Prompt,
		NegativePrompt:    req.NegativePrompt,
		Seed:              req.Seed,
		Height:            req.Height,
		Width:             req.Width,
		NumFrames:         req.NumFrames,
		FrameRate:         req.FrameRate,
		NumInferenceSteps: req.NumInferenceSteps,
		CFGGuidanceScale:  req.CFGGuidanceScale,
		Images:            []pipeline.ReferenceImage{},
		Tiling:            pipeline.DefaultTiling(),
	}
	if job.InputImagePath != "" {
		params.Images = append(params.Images, pipeline.ReferenceImage{
			Path:       job.InputImagePath,
			FrameIndex: referenceFrame,
			Strength:   referenceStrength,
		})
	}
	return params
}

func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", path).Warn("failed to remove partial output")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
