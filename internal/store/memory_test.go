package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ltxvideo/api/internal/model"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s, err := NewMemoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return s
}

func textJob(prompt string) NewJob {
	req := model.TextToVideoRequest{Prompt: prompt}
	return NewJob{Mode: model.ModeTextToVideo, Request: req.Materialize()}
}

func TestCreateReservesPendingRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job, err := s.Create(ctx, textJob("a cat"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("expected pending, got %s", job.Status)
	}
	if len(job.ID) != idLength {
		t.Errorf("expected %d char id, got %q", idLength, job.ID)
	}
	want := filepath.Join(s.OutputDir(), job.ID+".mp4")
	if job.OutputPath != want {
		t.Errorf("output path mismatch: got %q want %q", job.OutputPath, want)
	}
	if job.InputImagePath != "" {
		t.Errorf("text job should not own an input image, got %q", job.InputImagePath)
	}
	if _, err := os.Stat(job.OutputPath); !os.IsNotExist(err) {
		t.Errorf("output file must not exist before generation, stat err: %v", err)
	}

	img, err := s.Create(ctx, NewJob{Mode: model.ModeImageToVideo, InputImageExt: ".png"})
	if err != nil {
		t.Fatalf("Create image job: %v", err)
	}
	if !strings.HasSuffix(img.InputImagePath, img.ID+"_input.png") {
		t.Errorf("unexpected input image path %q", img.InputImagePath)
	}
}

func TestCreateIDsAreUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		job, err := s.Create(ctx, textJob("p"))
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		if _, dup := seen[job.ID]; dup {
			t.Fatalf("duplicate id %s after %d creations", job.ID, i)
		}
		seen[job.ID] = struct{}{}
	}
}

func TestCreateRegeneratesOnCollision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids := []string{"aaaaaaaa", "aaaaaaaa", "aaaaaaaa", "bbbbbbbb"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, _ := s.Create(ctx, textJob("one"))
	if _, err := s.Delete(ctx, first.ID, nil); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	second, _ := s.Create(ctx, textJob("two"))

	if first.ID != "aaaaaaaa" || second.ID != "bbbbbbbb" {
		t.Errorf("deleted ids must not be reused: first=%s second=%s", first.ID, second.ID)
	}
}

func TestGetUnknown(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestUpdateEnforcesForwardTransitions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	job, _ := s.Create(ctx, textJob("p"))
	now := time.Now()

	_, err := s.Update(ctx, job.ID, func(r *model.JobRecord) error {
		return r.Transition(model.JobStatusCompleted, now)
	})
	if err == nil {
		t.Fatal("pending -> completed must be rejected")
	}

	updated, err := s.Update(ctx, job.ID, func(r *model.JobRecord) error {
		return r.Transition(model.JobStatusProcessing, now)
	})
	if err != nil {
		t.Fatalf("pending -> processing: %v", err)
	}
	if updated.StartedAt == nil {
		t.Error("expected StartedAt to be stamped")
	}

	updated, err = s.Update(ctx, job.ID, func(r *model.JobRecord) error {
		return r.Fail("OOM", now)
	})
	if err != nil {
		t.Fatalf("processing -> failed: %v", err)
	}
	if updated.Error == nil || *updated.Error != "OOM" {
		t.Errorf("expected error OOM, got %v", updated.Error)
	}

	_, err = s.Update(ctx, job.ID, func(r *model.JobRecord) error {
		return r.Transition(model.JobStatusProcessing, now)
	})
	if err == nil {
		t.Fatal("failed jobs must not be resurrected")
	}
}

func TestUpdateRejectedMutationLeavesRecordIntact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	job, _ := s.Create(ctx, textJob("p"))

	_, _ = s.Update(ctx, job.ID, func(r *model.JobRecord) error {
		r.Status = model.JobStatusCompleted
		return errors.New("boom")
	})

	got, _ := s.Get(ctx, job.ID)
	if got.Status != model.JobStatusPending {
		t.Errorf("failed mutation leaked into store: status %s", got.Status)
	}
}

func TestListReturnsMostRecentOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, textJob("A"))
	b, _ := s.Create(ctx, textJob("B"))
	c, _ := s.Create(ctx, textJob("C"))

	got, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].JobID != b.ID || got[1].JobID != c.ID {
		t.Fatalf("expected [B C], got %+v", got)
	}

	all, _ := s.List(ctx, 20)
	if len(all) != 3 || all[0].JobID != a.ID {
		t.Errorf("expected all three jobs starting with A, got %+v", all)
	}
}

func TestDeleteRemovesRecordAndFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job, _ := s.Create(ctx, NewJob{Mode: model.ModeImageToVideo, InputImageExt: ".jpg"})
	for _, p := range []string{job.OutputPath, job.InputImagePath} {
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	if _, err := s.Delete(ctx, job.ID, RejectProcessing); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, p := range []string{job.OutputPath, job.InputImagePath} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed", p)
		}
	}
	if _, err := s.Get(ctx, job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("deleted job still resolves: %v", err)
	}
	if _, err := s.Delete(ctx, job.ID, nil); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("second delete should be not found, got %v", err)
	}
}

func TestDeleteMissingFilesIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	job, _ := s.Create(ctx, textJob("p"))

	if _, err := s.Delete(ctx, job.ID, nil); err != nil {
		t.Errorf("delete without files should succeed, got %v", err)
	}
}

func TestDeleteRejectsProcessing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	job, _ := s.Create(ctx, textJob("p"))
	_, _ = s.Update(ctx, job.ID, func(r *model.JobRecord) error {
		return r.Transition(model.JobStatusProcessing, time.Now())
	})

	if _, err := s.Delete(ctx, job.ID, RejectProcessing); !errors.Is(err, ErrJobBusy) {
		t.Fatalf("expected ErrJobBusy, got %v", err)
	}
	if _, err := s.Get(ctx, job.ID); err != nil {
		t.Errorf("rejected delete must keep the record: %v", err)
	}
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	first, _ := s.Create(ctx, textJob("1"))
	_, _ = s.Create(ctx, textJob("2"))
	_, _ = s.Update(ctx, first.ID, func(r *model.JobRecord) error {
		return r.Transition(model.JobStatusProcessing, time.Now())
	})

	total, processing, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 2 || processing != 1 {
		t.Errorf("expected total=2 processing=1, got total=%d processing=%d", total, processing)
	}
}
