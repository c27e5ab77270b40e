package sink

import (
	"fmt"
	"sync"

	"codeberg.org/mutker/droidmon/internal/logger"
)

// SerialDispatcher runs callbacks one at a time, in submission order, on a
// single goroutine. Dispatch never blocks the caller.
type SerialDispatcher struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closed  bool
	stopped chan struct{}
	logger  logger.Logger
}

// DispatcherOption customises a SerialDispatcher.
type DispatcherOption func(*SerialDispatcher)

// WithDispatcherLogger sets the logger used for callback panics.
func WithDispatcherLogger(log logger.Logger) DispatcherOption {
	return func(d *SerialDispatcher) {
		d.logger = log
	}
}

// NewSerialDispatcher starts the dispatch goroutine.
func NewSerialDispatcher(opts ...DispatcherOption) *SerialDispatcher {
	d := &SerialDispatcher{
		stopped: make(chan struct{}),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.cond = sync.NewCond(&d.mu)
	go d.loop()
	return d
}

// Dispatch queues fn. Calls after Close are ignored.
func (d *SerialDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.queue = append(d.queue, fn)
	d.cond.Signal()
}

func (d *SerialDispatcher) loop() {
	defer close(d.stopped)

	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.run(fn)
	}
}

func (d *SerialDispatcher) run(fn func()) {
	defer func() {
		// a bad callback must not stop later deliveries
		if r := recover(); r != nil {
			d.logger.Error().Str("panic", fmt.Sprint(r)).Msg("Delivery panicked")
		}
	}()
	fn()
}

// Close stops accepting callbacks, runs the ones already queued and waits
// for the dispatch goroutine to exit.
func (d *SerialDispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.cond.Broadcast()
	}
	d.mu.Unlock()

	<-d.stopped
}
