package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ltxvideo/api/internal/model"
)

const idLength = 8

var _ JobStore = (*MemoryStore)(nil)

// MemoryStore keeps job records in process memory, in creation order.
type MemoryStore struct {
	mu        sync.RWMutex
	outputDir string
	jobs      map[string]*model.JobRecord
	order     []string
	issued    map[string]struct{}
	newID     func() string
	now       func() time.Time
}

// NewMemoryStore creates a store that reserves output files under outputDir.
func NewMemoryStore(outputDir string) (*MemoryStore, error) {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return nil, errors.New("store: output dir is required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure output dir: %w", err)
	}
	return &MemoryStore{
		outputDir: outputDir,
		jobs:      make(map[string]*model.JobRecord),
		issued:    make(map[string]struct{}),
		newID:     shortID,
		now:       time.Now,
	}, nil
}

// OutputDir returns the directory job artifacts are written to.
func (s *MemoryStore) OutputDir() string {
	return s.outputDir
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}

func (s *MemoryStore) Create(ctx context.Context, job NewJob) (*model.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// ids are never reused, deleted ones included
	id := s.newID()
	for {
		if _, taken := s.issued[id]; !taken {
			break
		}
		id = s.newID()
	}
	s.issued[id] = struct{}{}

	record := &model.JobRecord{
		ID:         id,
		Mode:       job.Mode,
		Status:     model.JobStatusPending,
		OutputPath: filepath.Join(s.outputDir, id+".mp4"),
		Request:    job.Request,
		CreatedAt:  s.now(),
	}
	if job.InputImageExt != "" {
		record.InputImagePath = filepath.Join(s.outputDir, id+"_input"+job.InputImageExt)
	}

	s.jobs[id] = record
	s.order = append(s.order, id)

	return record.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, jobID string) (*model.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return record.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, jobID string, mutate func(*model.JobRecord) error) (*model.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}

	draft := record.Clone()
	if err := mutate(draft); err != nil {
		return nil, err
	}
	s.jobs[jobID] = draft

	return draft.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, jobID string, guard func(*model.JobRecord) error) (*model.JobRecord, error) {
	s.mu.Lock()
	record, ok := s.jobs[jobID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrJobNotFound
	}
	if guard != nil {
		if err := guard(record); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	delete(s.jobs, jobID)
	for i, id := range s.order {
		if id == jobID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	// The record is gone; file removal is best-effort.
	var errs []error
	for _, path := range []string{record.OutputPath, record.InputImagePath} {
		if err := removeFile(path); err != nil {
			errs = append(errs, err)
		}
	}

	return record, errors.Join(errs...)
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]model.JobSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if limit >= 0 && limit < len(s.order) {
		start = len(s.order) - limit
	}

	summaries := make([]model.JobSummary, 0, len(s.order)-start)
	for _, id := range s.order[start:] {
		summaries = append(summaries, s.jobs[id].Clone().Summary())
	}
	return summaries, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	processing := 0
	for _, record := range s.jobs {
		if record.Status == model.JobStatusProcessing {
			processing++
		}
	}
	return len(s.jobs), processing, nil
}

func removeFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remove %s: %w", filepath.Base(path), err)
	}
	return nil
}
