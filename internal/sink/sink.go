// Package sink delivers metric values to whatever presents them. Every
// delivery goes through a dispatch function so the presentation side sees
// calls on its own goroutine.
package sink

import "sync"

// Sink receives one value per call. Implementations need not be safe for
// concurrent use when reached through a SerialDispatcher.
type Sink interface {
	Deliver(name, value string)
}

// Func adapts a function to Sink.
type Func func(name, value string)

func (f Func) Deliver(name, value string) {
	f(name, value)
}

// Dispatch runs fn on the presentation context.
type Dispatch func(fn func())

// Direct runs fn on the caller's goroutine.
func Direct(fn func()) {
	fn()
}

// Multi fans each delivery out to several sinks in order.
type Multi []Sink

func (m Multi) Deliver(name, value string) {
	for _, s := range m {
		s.Deliver(name, value)
	}
}

// Dispatched wraps a sink so that every Deliver is marshaled through
// dispatch.
func Dispatched(dispatch Dispatch, s Sink) Sink {
	if dispatch == nil {
		dispatch = Direct
	}
	return Func(func(name, value string) {
		dispatch(func() { s.Deliver(name, value) })
	})
}

// Latest keeps the most recent value per metric.
type Latest struct {
	mu     sync.RWMutex
	values map[string]string
	order  []string
}

// NewLatest returns an empty Latest.
func NewLatest() *Latest {
	return &Latest{values: make(map[string]string)}
}

func (l *Latest) Deliver(name, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.values[name]; !ok {
		l.order = append(l.order, name)
	}
	l.values[name] = value
}

// Get returns the latest value for name.
func (l *Latest) Get(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.values[name]
	return v, ok
}

// Names returns metric names in first-delivery order.
func (l *Latest) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.order...)
}

// Snapshot returns a copy of all latest values.
func (l *Latest) Snapshot() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}
