package service

import (
	"context"
	"fmt"
	"os"

	"github.com/ltxvideo/api/internal/client"
	"github.com/ltxvideo/api/internal/model"
	"github.com/ltxvideo/api/internal/store"
	"github.com/sirupsen/logrus"
)

const DefaultListLimit = 20

// Artifact locates a finished video on disk
type Artifact struct {
	Path     string
	Filename string
}

// JobService answers lifecycle queries from the job store and filesystem
type JobService struct {
	store   store.JobStore
	storage client.StorageClient
	logger  *logrus.Logger
}

// NewJobService creates a new job service. storage may be nil.
func NewJobService(jobStore store.JobStore, storage client.StorageClient, logger *logrus.Logger) *JobService {
	return &JobService{
		store:   jobStore,
		storage: storage,
		logger:  logger,
	}
}

// Status returns the public view of a job
func (s *JobService) Status(ctx context.Context, jobID string) (*model.JobStatusResponse, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	resp := &model.JobStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.Status == model.JobStatusCompleted {
		url := model.DownloadURL(job.ID)
		resp.OutputURL = &url
		if job.RemoteURL != "" {
			remote := job.RemoteURL
			resp.RemoteURL = &remote
		}
	}
	return resp, nil
}

// Artifact returns the video of a completed job
func (s *JobService) Artifact(ctx context.Context, jobID string) (*Artifact, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrJobNotCompleted, job.Status)
	}

	info, err := os.Stat(job.OutputPath)
	if err != nil || info.IsDir() {
		return nil, ErrOutputMissing
	}

	return &Artifact{
		Path:     job.OutputPath,
		Filename: model.DownloadFilename(job.ID),
	}, nil
}

// List returns the limit most recent jobs, oldest first
func (s *JobService) List(ctx context.Context, limit int) (*model.JobListResponse, error) {
	if limit <= 0 {
		return nil, invalid("limit must be a positive integer", map[string]interface{}{"limit": limit})
	}

	jobs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &model.JobListResponse{
		Count: len(jobs),
		Jobs:  jobs,
	}, nil
}

// Delete removes a job that is not processing, along with its files
func (s *JobService) Delete(ctx context.Context, jobID string) (*model.JobDeleteResponse, error) {
	job, err := s.store.Delete(ctx, jobID, store.RejectProcessing)
	if job == nil {
		return nil, err
	}
	log := s.logger.WithField("job_id", jobID)
	if err != nil {
		log.WithError(err).Warn("job deleted but some files could not be removed")
	}

	if s.storage != nil && job.RemoteURL != "" {
		if err := s.storage.Delete(ctx, client.VideoKey(jobID)); err != nil {
			log.WithError(err).Warn("failed to delete mirrored video")
		}
	}

	log.Info("job deleted")
	return &model.JobDeleteResponse{
		Status: "deleted",
		JobID:  jobID,
	}, nil
}
