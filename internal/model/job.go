package model

import (
	"fmt"
	"time"
)

// JobRecord is the single source of truth for a generation job.
type JobRecord struct {
	ID             string           `json:"id"`
	Mode           GenerationMode   `json:"mode"`
	Status         JobStatus        `json:"status"`
	OutputPath     string           `json:"outputPath"`
	InputImagePath string           `json:"inputImagePath,omitempty"`
	Request        GenerationParams `json:"request"`
	Error          *string          `json:"error,omitempty"`
	RemoteURL      string           `json:"remoteUrl,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	StartedAt      *time.Time       `json:"startedAt,omitempty"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
}

// Transition moves the record to next, stamping lifecycle timestamps.
func (j *JobRecord) Transition(next JobStatus, now time.Time) error {
	if !j.Status.CanTransitionTo(next) {
		return fmt.Errorf("invalid transition %s -> %s", j.Status, next)
	}
	j.Status = next
	switch next {
	case JobStatusProcessing:
		j.StartedAt = &now
	case JobStatusCompleted, JobStatusFailed:
		j.CompletedAt = &now
	}
	return nil
}

// Fail transitions to failed and records msg.
func (j *JobRecord) Fail(msg string, now time.Time) error {
	if err := j.Transition(JobStatusFailed, now); err != nil {
		return err
	}
	j.Error = &msg
	return nil
}

// Clone returns a deep copy so stored state is never shared with callers.
func (j *JobRecord) Clone() *JobRecord {
	c := *j
	if j.Error != nil {
		msg := *j.Error
		c.Error = &msg
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Summary projects the record without its request payload.
func (j *JobRecord) Summary() JobSummary {
	return JobSummary{
		JobID:  j.ID,
		Status: j.Status,
		Error:  j.Error,
	}
}

// JobSummary is the list-view projection of a job
type JobSummary struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Error  *string   `json:"error,omitempty"`
}
