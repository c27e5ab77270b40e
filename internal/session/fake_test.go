package session_test

import (
	"context"
	"strings"
	"sync"

	"codeberg.org/mutker/droidmon/internal/bridge"
)

const (
	attachedList = "List of devices attached\nR58M123ABC\tdevice\n\n"
	emptyList    = "List of devices attached\n\n"
)

// fakeDevice answers bridge commands by substring match on the joined
// arguments. Unknown commands succeed with empty output.
type fakeDevice struct {
	mu        sync.Mutex
	attached  bool
	responses map[string]string
	failures  map[string]error
	calls     []string
}

func newFakeDevice(attached bool) *fakeDevice {
	return &fakeDevice{
		attached:  attached,
		responses: make(map[string]string),
		failures:  make(map[string]error),
	}
}

func (d *fakeDevice) setAttached(attached bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attached = attached
}

func (d *fakeDevice) respond(key, out string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses[key] = out
}

func (d *fakeDevice) fail(key string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, key)
		return
	}
	d.failures[key] = err
}

func (d *fakeDevice) count(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if strings.Contains(c, key) {
			n++
		}
	}
	return n
}

func (d *fakeDevice) Run(_ context.Context, cmd bridge.Command) (string, error) {
	line := strings.Join(cmd.Args, " ")

	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, line)

	if line == "devices" {
		if d.attached {
			return attachedList, nil
		}
		return emptyList, nil
	}
	for key, err := range d.failures {
		if strings.Contains(line, key) {
			return "", err
		}
	}
	for key, out := range d.responses {
		if strings.Contains(line, key) {
			return out, nil
		}
	}
	return "", nil
}
