package session

import (
	"context"
	"strconv"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/monitor"
	"golang.org/x/sync/errgroup"
)

// RunOnce checks the connection and, when a device is attached, runs
// every metric once with at most Config.Workers commands in flight. It
// returns when all of them have delivered. A running session cannot be
// probed.
func (s *Session) RunOnce(ctx context.Context) error {
	errFactory := errors.New()

	s.mu.Lock()
	if s.state == running {
		s.mu.Unlock()
		return errFactory.New(errors.ErrAlreadyRunning)
	}
	s.mu.Unlock()

	if s.monitor.Check(ctx) != monitor.Connected {
		s.deliver(ConnectionMetric, strconv.FormatBool(false))
		return errFactory.New(ErrNotConnected)
	}
	s.deliver(ConnectedForMetric, monitor.FormatElapsed(s.monitor.ConnectedFor()))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, m := range s.metrics {
		p := s.pollers[m.Name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errFactory.Wrap(errors.ErrCanceled, err)
			}
			s.poll(gctx, p)
			return nil
		})
	}

	return g.Wait()
}
