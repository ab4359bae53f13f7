// Package store holds generation job records.
package store

import (
	"context"
	"errors"

	"github.com/ltxvideo/api/internal/model"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobBusy     = errors.New("job is processing")
)

// NewJob describes a job to register.
type NewJob struct {
	Mode    model.GenerationMode
	Request model.GenerationParams
	// InputImageExt is set for image jobs, e.g. ".png".
	InputImageExt string
}

// JobStore is the registry shared by the HTTP front end and the worker.
type JobStore interface {
	// Create reserves an id and output path and stores a pending record.
	Create(ctx context.Context, job NewJob) (*model.JobRecord, error)
	Get(ctx context.Context, jobID string) (*model.JobRecord, error)
	// Update applies mutate to the stored record. Only the worker owning the job calls it.
	Update(ctx context.Context, jobID string, mutate func(*model.JobRecord) error) (*model.JobRecord, error)
	// Delete removes the record if guard allows it, then its files.
	Delete(ctx context.Context, jobID string, guard func(*model.JobRecord) error) (*model.JobRecord, error)
	// List returns the limit most recent jobs, oldest first.
	List(ctx context.Context, limit int) ([]model.JobSummary, error)
	Count(ctx context.Context) (total int, processing int, err error)
}

// RejectProcessing is a Delete guard refusing jobs the worker currently owns.
func RejectProcessing(job *model.JobRecord) error {
	if job.Status == model.JobStatusProcessing {
		return ErrJobBusy
	}
	return nil
}
