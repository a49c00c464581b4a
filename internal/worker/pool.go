// Package worker runs fire-and-forget background tasks on a fixed set of
// goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/punchamoorthee/claimops/internal/metrics"
)

var (
	ErrQueueFull  = errors.New("worker queue full")
	ErrPoolClosed = errors.New("worker pool closed")
)

// Task is the handle returned by Submit. Callers that do not care about the
// outcome may drop it.
type Task struct {
	fn   func(ctx context.Context)
	done chan struct{}
	err  error
}

// Done is closed once the task has finished running.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the recovered panic, if any. Valid after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Pool is a bounded queue drained by a fixed number of goroutines.
type Pool struct {
	queue  chan *Task
	log    zerolog.Logger
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines reading from a queue of queueSize.
func NewPool(workers, queueSize int, logger zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{
		queue: make(chan *Task, queueSize),
		log:   logger.With().Str("component", "worker").Logger(),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i + 1)
	}
	return p
}

// Submit enqueues fn without blocking.
func (p *Pool) Submit(fn func(ctx context.Context)) (*Task, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrPoolClosed
	}

	t := &Task{fn: fn, done: make(chan struct{})}
	metrics.WorkerQueueDepth.Inc()
	select {
	case p.queue <- t:
		return t, nil
	default:
		metrics.WorkerQueueDepth.Dec()
		return nil, ErrQueueFull
	}
}

// Stop rejects new submissions and waits for queued tasks to finish, or for
// ctx to expire.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool drain: %w", ctx.Err())
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	p.log.Debug().Int("worker", id).Msg("worker started")

	for t := range p.queue {
		metrics.WorkerQueueDepth.Dec()
		p.run(id, t)
	}
}

func (p *Pool) run(id int, t *Task) {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("task panicked: %v", r)
			metrics.WorkerPanics.Inc()
			p.log.Error().Int("worker", id).Interface("panic", r).Msg("background task panicked")
		}
	}()
	t.fn(context.Background())
}
