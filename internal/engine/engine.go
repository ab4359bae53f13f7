// Package engine runs generation jobs one at a time, in submission order.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/ltxvideo/api/internal/config"
	"github.com/sirupsen/logrus"
)

// ErrEngineClosed is returned by Submit once shutdown has begun.
var ErrEngineClosed = errors.New("engine is shut down")

// Processor executes a single job. It owns the job for the duration of the call.
type Processor func(ctx context.Context, jobID string)

// Engine is a single-worker FIFO executor.
type Engine interface {
	// Start launches the worker. Jobs submitted before Start wait in the queue.
	Start() error
	// Submit enqueues jobID without waiting for running work.
	Submit(ctx context.Context, jobID string) error
	// Pending returns the number of queued jobs not yet started.
	Pending() int
	// Shutdown stops accepting jobs and waits for queued and running work
	// until ctx expires. Running work is never cancelled.
	Shutdown(ctx context.Context) error
}

// New builds the engine selected by cfg.Engine.Backend.
func New(cfg *config.Config, process Processor, logger *logrus.Logger) (Engine, error) {
	switch cfg.Engine.Backend {
	case "", "local":
		return NewLocalEngine(process, logger), nil
	case "asynq":
		if cfg.Redis.Addr == "" {
			return nil, errors.New("engine: asynq backend requires redis.addr")
		}
		opt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		return NewAsynqEngine(opt, cfg.Engine.Queue, process, logger), nil
	default:
		return nil, fmt.Errorf("engine: unknown backend %q", cfg.Engine.Backend)
	}
}
