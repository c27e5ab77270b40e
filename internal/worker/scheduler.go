package worker

import (
	"sync"
	"time"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/logger"
)

// CancelFunc stops one recurring schedule. It is safe to call more than
// once.
type CancelFunc func()

// Scheduler submits named jobs to a pool at fixed rates. Each schedule has
// its own ticker and fires once immediately when registered.
type Scheduler struct {
	pool   Submitter
	logger logger.Logger

	mu        sync.Mutex
	schedules map[string]chan struct{}
	stopped   bool
	wg        sync.WaitGroup
}

// SchedulerOption customises a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger used for rejected submissions.
func WithSchedulerLogger(log logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = log
	}
}

// NewScheduler returns a Scheduler feeding pool.
func NewScheduler(pool Submitter, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		pool:      pool,
		logger:    logger.Nop(),
		schedules: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleFixedRate submits job now and then every interval until the
// returned CancelFunc or Stop is called. Ticks that fall behind are
// coalesced by the ticker rather than queued.
func (s *Scheduler) ScheduleFixedRate(name string, interval time.Duration, job Job) (CancelFunc, error) {
	errFactory := errors.New()
	if interval <= 0 {
		return nil, errFactory.WithData(errors.ErrInvalidInterval, name)
	}
	if job == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "nil job")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, errFactory.New(ErrSchedulerStopped)
	}
	if _, exists := s.schedules[name]; exists {
		return nil, errFactory.WithData(ErrDuplicateSchedule, name)
	}

	stop := make(chan struct{})
	s.schedules[name] = stop
	s.wg.Add(1)
	go s.loop(name, interval, job, stop)

	var once sync.Once
	return func() {
		once.Do(func() { s.cancel(name, stop) })
	}, nil
}

func (s *Scheduler) loop(name string, interval time.Duration, job Job, stop <-chan struct{}) {
	defer s.wg.Done()

	s.submit(name, job)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// stop and tick can both be ready; prefer stop
			select {
			case <-stop:
				return
			default:
			}
			s.submit(name, job)
		}
	}
}

func (s *Scheduler) submit(name string, job Job) {
	if err := s.pool.Submit(job); err != nil {
		s.logger.Debug().Str("schedule", name).Err(err).Msg("Tick not submitted")
	}
}

func (s *Scheduler) cancel(name string, stop chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.schedules[name]; ok && current == stop {
		delete(s.schedules, name)
		close(stop)
	}
}

// Active returns the number of live schedules.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.schedules)
}

// Stop cancels every schedule and waits for their tickers to exit. Jobs
// already submitted are left to the pool.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for name, stop := range s.schedules {
		close(stop)
		delete(s.schedules, name)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
