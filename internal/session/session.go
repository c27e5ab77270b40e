// Package session wires the executor, path cache, connection monitor and
// pollers into one unit with an explicit lifecycle.
package session

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/droidmon/internal/bridge"
	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/logger"
	"codeberg.org/mutker/droidmon/internal/monitor"
	"codeberg.org/mutker/droidmon/internal/parsers"
	"codeberg.org/mutker/droidmon/internal/pathcache"
	"codeberg.org/mutker/droidmon/internal/sink"
	"codeberg.org/mutker/droidmon/internal/worker"
	"github.com/google/uuid"
)

// Placeholder values delivered instead of data.
const (
	// DisconnectedText replaces every metric while no device is attached.
	DisconnectedText = "Disconnected"
	// FailedText replaces a metric whose command failed this tick.
	FailedText = "None"
)

// Names of values the session itself produces.
const (
	ConnectionMetric   = "connection"
	ConnectedForMetric = "connected_for"
)

// Config holds the tunables of a session.
type Config struct {
	Timeout            time.Duration
	Workers            int
	ShutdownGrace      time.Duration
	ConnectionInterval time.Duration
	Intervals          map[string]time.Duration
	BatteryPaths       []string
}

// DefaultBatteryPaths are probed in order for the battery directory.
var DefaultBatteryPaths = []string{
	"/sys/class/power_supply/battery",
	"/sys/class/power_supply/Battery",
	"/sys/class/power_supply/bms",
}

// DefaultConfig returns the built-in tunables.
func DefaultConfig() Config {
	return Config{
		Timeout:            bridge.DefaultTimeout,
		Workers:            worker.DefaultWorkers,
		ShutdownGrace:      worker.DefaultShutdownGrace,
		ConnectionInterval: monitor.DefaultInterval,
		Intervals:          DefaultIntervals(),
		BatteryPaths:       append([]string(nil), DefaultBatteryPaths...),
	}
}

// Session owns one pool, scheduler, path cache and monitor. A Session runs
// at most once: after Stop it cannot be started again.
type Session struct {
	id      string
	cfg     Config
	runner  bridge.Runner
	out     sink.Sink
	logger  logger.Logger
	metrics []Metric

	cache   *pathcache.Cache
	monitor *monitor.Monitor

	pool atomic.Pointer[worker.Pool]

	// edge orders sample deliveries against transition placeholders.
	// Pollers hold it shared, transitions exclusively.
	edge sync.RWMutex

	mu      sync.Mutex
	sched   *worker.Scheduler
	state   lifecycle
	pollers map[string]*poller
}

type lifecycle int

const (
	idle lifecycle = iota
	running
	stopped
)

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Session) {
		s.logger = log
	}
}

// WithDispatch marshals every delivery through dispatch.
func WithDispatch(dispatch sink.Dispatch) Option {
	return func(s *Session) {
		s.out = sink.Dispatched(dispatch, s.out)
	}
}

// WithID sets the session ID instead of a random one. Empty ids are ignored.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithMetrics replaces the metric table built from Config.Intervals.
func WithMetrics(metrics []Metric) Option {
	return func(s *Session) {
		s.metrics = metrics
	}
}

// New builds a session delivering into out. Deliveries go straight to out
// unless WithDispatch is given.
func New(runner bridge.Runner, out sink.Sink, cfg Config, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		cfg:     withDefaults(cfg),
		runner:  runner,
		out:     out,
		logger:  logger.Nop(),
		pollers: make(map[string]*poller),
	}
	s.metrics = DefaultMetrics(s.cfg.Intervals)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("session")

	s.cache = pathcache.New(runner, s.cfg.BatteryPaths, parsers.BatteryProbeFile,
		pathcache.WithLogger(s.logger.WithComponent("pathcache")))

	s.monitor = monitor.New(runner, s.cache,
		monitor.WithPool(submitter{s}),
		monitor.WithCommandTimeout(s.cfg.Timeout),
		monitor.WithLogger(s.logger.WithComponent("monitor")),
	)
	s.monitor.OnTransition(s.onTransition)

	for _, m := range s.metrics {
		s.pollers[m.Name] = &poller{metric: m}
	}

	return s
}

// submitter forwards to the session pool once it exists.
type submitter struct {
	s *Session
}

func (sub submitter) Submit(job worker.Job) error {
	pool := sub.s.pool.Load()
	if pool == nil {
		return errors.New().New(worker.ErrPoolClosed)
	}
	return pool.Submit(job)
}

func withDefaults(cfg Config) Config {
	d := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.Workers < 1 {
		cfg.Workers = d.Workers
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = d.ShutdownGrace
	}
	if cfg.ConnectionInterval <= 0 {
		cfg.ConnectionInterval = d.ConnectionInterval
	}
	if len(cfg.BatteryPaths) == 0 {
		cfg.BatteryPaths = d.BatteryPaths
	}
	if cfg.Intervals == nil {
		cfg.Intervals = d.Intervals
	}
	return cfg
}

// ID identifies this session in logs and stored rows.
func (s *Session) ID() string {
	return s.id
}

// Monitor exposes the connection monitor, mainly for listeners. Listeners
// must be registered before Start.
func (s *Session) Monitor() *monitor.Monitor {
	return s.monitor
}

// Metrics returns the metric table.
func (s *Session) Metrics() []Metric {
	return append([]Metric(nil), s.metrics...)
}

// Start begins connection checks and every poller. Each schedule fires
// once immediately.
func (s *Session) Start() error {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case running:
		return errFactory.New(errors.ErrAlreadyRunning)
	case stopped:
		return errFactory.WithMessage(errors.ErrInitFailed, "session already stopped")
	}

	pool := worker.NewPool(s.cfg.Workers, worker.WithPoolLogger(s.logger.WithComponent("pool")))
	s.pool.Store(pool)
	s.sched = worker.NewScheduler(pool, worker.WithSchedulerLogger(s.logger.WithComponent("scheduler")))

	s.deliver(ConnectionMetric, strconv.FormatBool(false))
	s.deliver(ConnectedForMetric, monitor.ZeroElapsed)

	schedule := func(name string, interval time.Duration, job worker.Job) error {
		if _, err := s.sched.ScheduleFixedRate(name, interval, job); err != nil {
			return errFactory.Wrap(errors.ErrInitFailed, err).WithData(name)
		}
		return nil
	}

	if err := schedule(ConnectionMetric, s.cfg.ConnectionInterval, func(ctx context.Context) {
		s.monitor.Check(ctx)
	}); err != nil {
		s.abort()
		return err
	}

	if err := schedule(ConnectedForMetric, s.interval(IntervalUptime), func(context.Context) {
		s.edge.RLock()
		defer s.edge.RUnlock()
		s.deliver(ConnectedForMetric, monitor.FormatElapsed(s.monitor.ConnectedFor()))
	}); err != nil {
		s.abort()
		return err
	}

	for _, m := range s.metrics {
		p := s.pollers[m.Name]
		if err := schedule(m.Name, m.Interval, func(ctx context.Context) {
			s.poll(ctx, p)
		}); err != nil {
			s.abort()
			return err
		}
	}

	s.state = running
	s.logger.Info().Str("session", s.id).Int("metrics", len(s.metrics)).Msg("Session started")

	return nil
}

func (s *Session) abort() {
	s.sched.Stop()
	s.pool.Load().Shutdown(0)
	s.state = stopped
}

func (s *Session) interval(key string) time.Duration {
	if d, ok := s.cfg.Intervals[key]; ok && d > 0 {
		return d
	}
	return DefaultIntervals()[key]
}

// Stop cancels every schedule, discards queued polls and waits up to the
// shutdown grace for running ones. It reports whether they finished.
func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != running {
		s.state = stopped
		return true
	}
	s.state = stopped

	s.sched.Stop()
	finished := s.pool.Load().Shutdown(s.cfg.ShutdownGrace)

	s.logger.Info().Str("session", s.id).Bool("clean", finished).Msg("Session stopped")

	return finished
}

func (s *Session) onTransition(state monitor.State) {
	s.edge.Lock()
	defer s.edge.Unlock()

	connected := state == monitor.Connected
	s.deliver(ConnectionMetric, strconv.FormatBool(connected))
	if connected {
		return
	}

	s.deliver(ConnectedForMetric, monitor.ZeroElapsed)
	for _, m := range s.metrics {
		s.deliverAll(s.pollers[m.Name].names(), DisconnectedText)
	}
}

func (s *Session) deliver(name, value string) {
	s.out.Deliver(name, value)
}

func (s *Session) deliverAll(names []string, value string) {
	for _, name := range names {
		s.deliver(name, value)
	}
}

func (s *Session) command(m Metric, path string) bridge.Command {
	cmd := m.Command(path)
	if cmd.Timeout <= 0 {
		cmd = cmd.WithTimeout(s.cfg.Timeout)
	}
	return cmd
}
