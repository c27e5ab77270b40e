// Package pid keeps a PID file so only one monitoring session talks to the
// bridge at a time.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/droidmon/internal/errors"
)

const (
	pidFile = "droidmon.pid"
)

// File is a PID file at a fixed path.
type File struct {
	path string
}

// New returns the PID file inside dir. An empty dir means os.TempDir().
func New(dir string) *File {
	if dir == "" {
		dir = os.TempDir()
	}
	return &File{path: filepath.Join(dir, pidFile)}
}

// Path returns the PID file location.
func (f *File) Path() string {
	return f.path
}

// Write records the current process ID. It fails with ErrAlreadyRunning
// when the file names a live process. A stale or unreadable file is
// replaced.
func (f *File) Write() error {
	errFactory := errors.New()

	if bytes, err := os.ReadFile(f.path); err == nil {
		if running, ok := alive(strings.TrimSpace(string(bytes))); ok && running != os.Getpid() {
			return errFactory.WithData(errors.ErrAlreadyRunning, running)
		}
	} else if !os.IsNotExist(err) {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.WriteFile(f.path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

func alive(content string) (int, bool) {
	pid, err := strconv.Atoi(content)
	if err != nil || pid <= 0 {
		return 0, false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}

	return pid, process.Signal(syscall.Signal(0)) == nil
}

// Remove removes the PID file.
func (f *File) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}
	return nil
}
