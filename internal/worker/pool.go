// Package worker runs polling jobs on a fixed set of goroutines and repeats
// them at fixed rates.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/logger"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 10

// DefaultShutdownGrace bounds how long Shutdown waits for running jobs.
const DefaultShutdownGrace = time.Second

// Job is one unit of work. The context is canceled if the job is still
// running when the shutdown grace period expires.
type Job func(ctx context.Context)

// Submitter accepts jobs for asynchronous execution.
type Submitter interface {
	Submit(job Job) error
}

// Pool executes jobs on a fixed number of goroutines. The queue is
// unbounded, so Submit never blocks and never drops a job while the pool
// is open.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool

	running sync.WaitGroup
	workers sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
	logger logger.Logger
}

// PoolOption customises a Pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the logger used for job panics and shutdown.
func WithPoolLogger(log logger.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = log
	}
}

// NewPool starts a pool with n workers. Values below one use DefaultWorkers.
func NewPool(n int, opts ...PoolOption) *Pool {
	if n < 1 {
		n = DefaultWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Nop(),
	}
	p.cond = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}

	p.workers.Add(n)
	for i := 0; i < n; i++ {
		go p.work()
	}

	return p
}

// Submit enqueues job. It fails only once the pool is shut down.
func (p *Pool) Submit(job Job) error {
	if job == nil {
		return errors.New().WithMessage(errors.ErrInvalidArgument, "nil job")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.New().New(ErrPoolClosed)
	}
	p.queue = append(p.queue, job)
	p.cond.Signal()

	return nil
}

// Pending returns the number of queued jobs that have not started.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Pool) work() {
	defer p.workers.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.running.Add(1)
		p.mu.Unlock()

		p.run(job)
	}
}

func (p *Pool) run(job Job) {
	defer p.running.Done()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Str("panic", fmt.Sprint(r)).Msg("Job panicked")
		}
	}()

	job(p.ctx)
}

// Shutdown stops accepting jobs and discards the ones still queued. It
// waits up to grace for running jobs and reports whether they all
// finished. Jobs still running afterwards see their context canceled;
// Shutdown does not wait for them.
func (p *Pool) Shutdown(grace time.Duration) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return true
	}
	p.closed = true
	dropped := len(p.queue)
	p.queue = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	if dropped > 0 {
		p.logger.Debug().Int("dropped", dropped).Msg("Discarded queued jobs")
	}

	done := make(chan struct{})
	go func() {
		p.running.Wait()
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		p.cancel()
		return true
	case <-timer.C:
		p.cancel()
		p.logger.Warn().Dur("grace", grace).Msg("Jobs still running after shutdown grace period")
		return false
	}
}
