//go:build unix

package bridge

import (
	"context"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/droidmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shellCommand(script string, timeout time.Duration) Command {
	return Command{Args: []string{"-c", script}, Timeout: timeout}
}

func TestExecutorRun(t *testing.T) {
	exec := NewExecutor("/bin/sh")

	tests := []struct {
		name     string
		script   string
		want     string
		wantCode errors.ErrorCode
		wantData string
	}{
		{
			name:   "captures stdout",
			script: "printf 'List of devices attached\\n'",
			want:   "List of devices attached\n",
		},
		{
			name:   "stderr is not mixed into stdout",
			script: "echo out; echo err >&2",
			want:   "out\n",
		},
		{
			name:     "non-zero exit carries stderr",
			script:   "echo 'error: no devices/emulators found' >&2; exit 1",
			wantCode: ErrNonZeroExit,
			wantData: "no devices/emulators found",
		},
		{
			name:     "non-zero exit without stderr",
			script:   "exit 3",
			wantCode: ErrNonZeroExit,
			wantData: "exit status 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := exec.Run(context.Background(), shellCommand(tt.script, 2*time.Second))
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
				assert.Contains(t, err.Error(), tt.wantData)
				assert.Empty(t, out)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestExecutorSpawnError(t *testing.T) {
	exec := NewExecutor("/nonexistent/bridge-tool")

	_, err := exec.Run(context.Background(), Devices())
	require.Error(t, err)
	assert.Equal(t, ErrSpawn, errors.CodeOf(err))
}

func TestExecutorTimeout(t *testing.T) {
	exec := NewExecutor("/bin/sh", WithWaitDelay(100*time.Millisecond))
	timeout := 200 * time.Millisecond

	start := time.Now()
	_, err := exec.Run(context.Background(), shellCommand("sleep 30", timeout))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, ErrTimeout, errors.CodeOf(err))
	assert.Less(t, elapsed, timeout+2*time.Second, "watchdog must not let the caller hang")
}

func TestExecutorTimeoutKillsProcessGroup(t *testing.T) {
	exec := NewExecutor("/bin/sh", WithWaitDelay(100*time.Millisecond))

	// The grandchild inherits stdout; without a group kill Wait would block
	// until WaitDelay and the sleep would outlive the watchdog.
	start := time.Now()
	_, err := exec.Run(context.Background(), shellCommand("sleep 30 & wait", 200*time.Millisecond))

	require.Error(t, err)
	assert.Equal(t, ErrTimeout, errors.CodeOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExecutorCanceledContext(t *testing.T) {
	exec := NewExecutor("/bin/sh")
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := exec.Run(ctx, shellCommand("sleep 30", 10*time.Second))
	require.Error(t, err)
	assert.Equal(t, ErrCanceled, errors.CodeOf(err))
}

func TestExecutorBoundsOutput(t *testing.T) {
	exec := NewExecutor("/bin/sh", WithMaxOutput(16))

	out, err := exec.Run(context.Background(), shellCommand("yes 0123456789 | head -n 1000", 2*time.Second))
	require.NoError(t, err)
	assert.Len(t, out, 16)
	assert.True(t, strings.HasPrefix(out, "0123456789"))
}

func TestBoundedBuffer(t *testing.T) {
	buf := newBoundedBuffer(5)

	n, err := buf.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, buf.Truncated())

	n, err = buf.Write([]byte("defg"))
	require.NoError(t, err)
	assert.Equal(t, 4, n, "writes always report full length")
	assert.Equal(t, "abcde", buf.String())
	assert.True(t, buf.Truncated())
}
