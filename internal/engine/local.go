package engine

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// LocalEngine is an in-process FIFO drained by exactly one goroutine.
type LocalEngine struct {
	process Processor
	logger  *logrus.Logger

	mu      sync.Mutex
	queue   []string
	closed  bool
	started bool

	wake chan struct{}
	done chan struct{}
}

// NewLocalEngine creates an engine that hands every job to process.
func NewLocalEngine(process Processor, logger *logrus.Logger) *LocalEngine {
	return &LocalEngine{
		process: process,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (e *LocalEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.started {
		return nil
	}
	e.started = true
	go e.run()
	return nil
}

func (e *LocalEngine) Submit(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.queue = append(e.queue, jobID)
	depth := len(e.queue)
	e.mu.Unlock()

	e.signal()
	e.logger.WithFields(logrus.Fields{"job_id": jobID, "queue_depth": depth}).Debug("job queued")
	return nil
}

func (e *LocalEngine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *LocalEngine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	alreadyClosed := e.closed
	e.closed = true
	started := e.started
	e.mu.Unlock()

	if !started {
		return nil
	}
	if !alreadyClosed {
		e.signal()
	}

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		e.logger.WithField("pending", e.Pending()).Warn("engine shutdown timed out with work outstanding")
		return ctx.Err()
	}
}

func (e *LocalEngine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *LocalEngine) run() {
	defer close(e.done)

	for {
		jobID, ok := e.next()
		if !ok {
			return
		}
		e.runOne(jobID)
	}
}

// next blocks until a job is queued. It returns false once the engine is
// closed and the queue is empty.
func (e *LocalEngine) next() (string, bool) {
	for {
		e.mu.Lock()
		if len(e.queue) > 0 {
			jobID := e.queue[0]
			e.queue[0] = ""
			e.queue = e.queue[1:]
			e.mu.Unlock()
			return jobID, true
		}
		closed := e.closed
		e.mu.Unlock()

		if closed {
			return "", false
		}
		<-e.wake
	}
}

func (e *LocalEngine) runOne(jobID string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{"job_id": jobID, "panic": r}).Error("job processor panicked")
		}
	}()
	e.process(context.Background(), jobID)
}
