package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	TaskTypeGenerate = "video:generate"

	// Generation is minutes-scale; the task deadline only has to outlast it.
	taskTimeout     = 6 * time.Hour
	shutdownTimeout = time.Hour
)

type generatePayload struct {
	JobID string `json:"jobId"`
}

// AsynqEngine runs jobs through a Redis-backed asynq queue with a single
// concurrent handler.
type AsynqEngine struct {
	queue     string
	process   Processor
	logger    *logrus.Logger
	client    *asynq.Client
	server    *asynq.Server
	inspector *asynq.Inspector

	mu     sync.Mutex
	closed bool
}

// NewAsynqEngine creates an engine backed by the redis instance at opt.
func NewAsynqEngine(opt asynq.RedisClientOpt, queue string, process Processor, logger *logrus.Logger) *AsynqEngine {
	if queue == "" {
		queue = "generation"
	}
	return &AsynqEngine{
		queue:   queue,
		process: process,
		logger:  logger,
		client:  asynq.NewClient(opt),
		server: asynq.NewServer(opt, asynq.Config{
			Concurrency:     1,
			Queues:          map[string]int{queue: 1},
			Logger:          logger,
			LogLevel:        asynqLogLevel(logger.GetLevel()),
			ShutdownTimeout: shutdownTimeout,
		}),
		inspector: asynq.NewInspector(opt),
	}
}

func asynqLogLevel(level logrus.Level) asynq.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return asynq.DebugLevel
	case level == logrus.WarnLevel:
		return asynq.WarnLevel
	case level <= logrus.ErrorLevel:
		return asynq.ErrorLevel
	default:
		return asynq.InfoLevel
	}
}

func (e *AsynqEngine) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeGenerate, e.handle)
	if err := e.server.Start(mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	return nil
}

func (e *AsynqEngine) Submit(ctx context.Context, jobID string) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrEngineClosed
	}

	task, err := newGenerateTask(jobID)
	if err != nil {
		return err
	}

	_, err = e.client.EnqueueContext(ctx, task,
		asynq.Queue(e.queue),
		asynq.MaxRetry(0),
		asynq.Timeout(taskTimeout),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

func (e *AsynqEngine) Pending() int {
	info, err := e.inspector.GetQueueInfo(e.queue)
	if err != nil {
		return 0
	}
	return info.Pending
}

func (e *AsynqEngine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.server.Shutdown()
		e.client.Close()
		e.inspector.Close()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *AsynqEngine) handle(ctx context.Context, t *asynq.Task) error {
	var payload generatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w: %w", err, asynq.SkipRetry)
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{"job_id": payload.JobID, "panic": r}).Error("job processor panicked")
		}
	}()

	// Shutdown never cancels a running job.
	e.process(context.WithoutCancel(ctx), payload.JobID)
	return nil
}

func newGenerateTask(jobID string) (*asynq.Task, error) {
	data, err := json.Marshal(generatePayload{JobID: jobID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeGenerate, data), nil
}
