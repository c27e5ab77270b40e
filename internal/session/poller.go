package session

import (
	"context"
	"sync"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/parsers"
)

// poller is the per-metric state shared by every tick of one Metric.
type poller struct {
	metric Metric

	mu   sync.Mutex
	last []string
}

// names returns the sample names the last successful tick produced, or the
// metric's fallback names before the first one.
func (p *poller) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.last) > 0 {
		return append([]string(nil), p.last...)
	}
	return p.metric.Fallback
}

func (p *poller) remember(samples []parsers.Sample) {
	names := make([]string, len(samples))
	for i, sample := range samples {
		names[i] = sample.Name
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = names
}

// poll runs one tick of p. Every outcome delivers something: samples on
// success, FailedText on failure, DisconnectedText while detached.
func (s *Session) poll(ctx context.Context, p *poller) {
	m := p.metric

	if !s.monitor.Connected() {
		s.deliverAll(p.names(), DisconnectedText)
		return
	}

	var path string
	if m.NeedsBattery {
		var err error
		path, err = s.cache.Resolve(ctx)
		if err != nil {
			s.logger.Debug().Str("metric", m.Name).Str("error_code", string(errors.CodeOf(err))).Err(err).Msg("Battery path unavailable")
			s.deliverAll(p.names(), FailedText)
			return
		}
	}

	out, err := s.runner.Run(ctx, s.command(m, path))
	if err != nil {
		if m.NeedsBattery {
			s.cache.Fail(path)
		}
		s.logger.Debug().Str("metric", m.Name).Str("error_code", string(errors.CodeOf(err))).Err(err).Msg("Poll failed")
		s.deliverAll(p.names(), FailedText)
		return
	}

	samples := m.Parse(out)

	s.edge.RLock()
	defer s.edge.RUnlock()

	// the device went away while the command ran; the transition already
	// delivered placeholders
	if !s.monitor.Connected() {
		return
	}

	p.remember(samples)
	for _, sample := range samples {
		s.deliver(sample.Name, sample.Display())
	}
}
