package bridge

import (
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/logger"
)

// DefaultWaitDelay bounds how long Wait keeps draining pipes after the
// child has exited or been killed.
const DefaultWaitDelay = 500 * time.Millisecond

// Executor runs bridge commands as child processes.
type Executor struct {
	path      string
	maxOutput int
	waitDelay time.Duration
	logger    logger.Logger
}

// Option customises an Executor.
type Option func(*Executor)

// WithMaxOutput caps each captured stream at n bytes.
func WithMaxOutput(n int) Option {
	return func(e *Executor) {
		e.maxOutput = n
	}
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.waitDelay = d
	}
}

// WithLogger sets the logger used for per-command debug records.
func WithLogger(log logger.Logger) Option {
	return func(e *Executor) {
		e.logger = log
	}
}

// NewExecutor returns an Executor invoking the bridge binary at path.
func NewExecutor(path string, opts ...Option) *Executor {
	e := &Executor{
		path:      path,
		maxOutput: DefaultMaxOutput,
		waitDelay: DefaultWaitDelay,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the bridge executable this Executor invokes.
func (e *Executor) Path() string {
	return e.path
}

// Run executes cmd and returns its standard output. The process is always
// reaped before Run returns: on success, on non-zero exit, and after the
// watchdog kills it at cmd's deadline.
func (e *Executor) Run(ctx context.Context, cmd Command) (string, error) {
	errFactory := errors.New()
	line := e.path + " " + cmd.String()

	runCtx, cancel := context.WithTimeout(ctx, cmd.timeout())
	defer cancel()

	proc := exec.CommandContext(runCtx, e.path, cmd.Args...)
	stdout := newBoundedBuffer(e.maxOutput)
	stderr := newBoundedBuffer(e.maxOutput)
	proc.Stdout = stdout
	proc.Stderr = stderr
	proc.WaitDelay = e.waitDelay
	configureProcess(proc)

	start := time.Now()
	if err := proc.Start(); err != nil {
		e.logger.Debug().Str("command", line).Err(err).Msg("Bridge spawn failed")
		return "", errFactory.Wrap(ErrSpawn, err).WithData(line)
	}

	waitErr := proc.Wait()
	elapsed := time.Since(start)

	if ctxErr := runCtx.Err(); ctxErr != nil {
		code := ErrCanceled
		if stderrors.Is(ctxErr, context.DeadlineExceeded) {
			code = ErrTimeout
		}
		e.logger.Debug().
			Str("command", line).
			Dur("elapsed", elapsed).
			Dur("timeout", cmd.timeout()).
			Str("outcome", string(code)).
			Msg("Bridge command killed")
		return "", errFactory.Wrap(code, ctxErr).WithData(line)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			failure := ExitFailure{
				Command:  line,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
			e.logger.Debug().
				Str("command", line).
				Dur("elapsed", elapsed).
				Int("exit_code", failure.ExitCode).
				Msg("Bridge command failed")
			return "", errFactory.WithData(ErrNonZeroExit, failure)
		}

		// The child exited 0 but something it spawned kept the pipes open
		// past WaitDelay; the captured output is still usable.
		if !stderrors.Is(waitErr, exec.ErrWaitDelay) {
			return "", errFactory.Wrap(ErrSpawn, waitErr).WithData(line)
		}
		e.logger.Debug().Str("command", line).Msg("Bridge output pipes closed after wait delay")
	}

	if stdout.Truncated() {
		e.logger.Warn().Str("command", line).Int("limit", e.maxOutput).Msg("Bridge output truncated")
	}

	e.logger.Debug().Str("command", line).Dur("elapsed", elapsed).Msg("Bridge command finished")

	return stdout.String(), nil
}
