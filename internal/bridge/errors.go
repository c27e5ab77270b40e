package bridge

import "codeberg.org/mutker/droidmon/internal/errors"

const (
	// ErrSpawn means the bridge process could not be started at all.
	ErrSpawn = errors.ErrorCode("bridge_spawn_failed")
	// ErrNonZeroExit means the command ran and exited with a non-zero status.
	ErrNonZeroExit = errors.ErrorCode("bridge_non_zero_exit")
	// ErrTimeout means the watchdog killed the command at its deadline.
	ErrTimeout = errors.ErrorCode("bridge_timeout")
	// ErrCanceled means the caller's context ended before the command did.
	ErrCanceled = errors.ErrCanceled
)

// ExitFailure is attached to ErrNonZeroExit errors.
type ExitFailure struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (f ExitFailure) String() string {
	if f.Stderr == "" {
		return f.Command + ": exit status " + itoa(f.ExitCode)
	}
	return f.Command + ": exit status " + itoa(f.ExitCode) + ": " + f.Stderr
}
