// Package monitor tracks whether a device is attached and reacts only when
// that changes.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/droidmon/internal/bridge"
	"codeberg.org/mutker/droidmon/internal/logger"
	"codeberg.org/mutker/droidmon/internal/parsers"
	"codeberg.org/mutker/droidmon/internal/worker"
)

// DefaultInterval is how often the attachment check runs.
const DefaultInterval = time.Second

// ZeroElapsed is the elapsed display while disconnected.
const ZeroElapsed = "00:00:00"

// State is the attachment state of the device.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// PathCache is the part of pathcache.Cache the monitor drives.
type PathCache interface {
	Invalidate()
	Prime(ctx context.Context) (string, error)
}

// Listener is called after every transition with the new state.
type Listener func(State)

// Monitor polls the device list and fires listeners on edges. Repeated
// identical results do nothing.
type Monitor struct {
	runner  bridge.Runner
	cache   PathCache
	pool    worker.Submitter
	logger  logger.Logger
	now     func() time.Time
	timeout time.Duration

	checking atomic.Bool

	mu        sync.Mutex
	state     State
	since     time.Time
	listeners []Listener
}

// Option customises a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger used for transitions.
func WithLogger(log logger.Logger) Option {
	return func(m *Monitor) {
		m.logger = log
	}
}

// WithPool runs cache priming on pool instead of a fresh goroutine.
func WithPool(pool worker.Submitter) Option {
	return func(m *Monitor) {
		m.pool = pool
	}
}

// WithCommandTimeout bounds each device listing.
func WithCommandTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		m.timeout = d
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// New returns a Monitor in the Disconnected state. cache may be nil.
func New(runner bridge.Runner, cache PathCache, opts ...Option) *Monitor {
	m := &Monitor{
		runner: runner,
		cache:  cache,
		logger: logger.Nop(),
		now:    time.Now,
		state:  Disconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnTransition registers fn. Listeners run in registration order on the
// goroutine that observed the edge.
func (m *Monitor) OnTransition(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// State returns the last observed state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports whether the last check saw an attached device.
func (m *Monitor) Connected() bool {
	return m.State() == Connected
}

// ConnectedFor returns how long the device has been attached, or zero.
func (m *Monitor) ConnectedFor() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Connected {
		return 0
	}
	return m.now().Sub(m.since)
}

// Check lists devices once and applies the result. Any failure to list
// counts as Disconnected. A Check that starts while another is running
// returns the current state without listing again.
func (m *Monitor) Check(ctx context.Context) State {
	if !m.checking.CompareAndSwap(false, true) {
		return m.State()
	}
	defer m.checking.Store(false)

	next := Disconnected
	cmd := bridge.Devices()
	if m.timeout > 0 {
		cmd = cmd.WithTimeout(m.timeout)
	}
	out, err := m.runner.Run(ctx, cmd)
	if err != nil {
		m.logger.Debug().Err(err).Msg("Device list failed")
	} else if parsers.DeviceAttached(out) {
		next = Connected
	}

	m.mu.Lock()
	prev := m.state
	if prev == next {
		m.mu.Unlock()
		return next
	}
	m.state = next
	if next == Connected {
		m.since = m.now()
	}
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	m.logger.Info().Str("from", prev.String()).Str("to", next.String()).Msg("Connection state changed")

	if m.cache != nil {
		if next == Connected {
			m.prime()
		} else {
			m.cache.Invalidate()
		}
	}

	for _, fn := range listeners {
		fn(next)
	}

	return next
}

func (m *Monitor) prime() {
	job := func(ctx context.Context) {
		path, err := m.cache.Prime(ctx)
		if err != nil {
			m.logger.Debug().Err(err).Msg("Path priming failed")
			return
		}
		m.logger.Debug().Str("path", path).Msg("Path primed")
	}

	if m.pool == nil {
		go job(context.Background())
		return
	}
	if err := m.pool.Submit(job); err != nil {
		m.logger.Debug().Err(err).Msg("Path priming not scheduled")
	}
}

// Run checks immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	m.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// FormatElapsed renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
