// Package pathcache locates a device directory that moves between vendors
// and remembers it until the connection changes.
package pathcache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"codeberg.org/mutker/droidmon/internal/bridge"
	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/logger"
	"golang.org/x/sync/singleflight"
)

const probeFound = "found"

// Cache resolves the first candidate directory that contains a required
// file and memoizes it. Reads of a memoized path take no lock.
type Cache struct {
	runner     bridge.Runner
	candidates []string
	required   string
	logger     logger.Logger

	path atomic.Pointer[string]

	mu         sync.Mutex
	generation uint64
	notFound   bool
	miss       error

	group singleflight.Group
}

// Option customises a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for resolution results.
func WithLogger(log logger.Logger) Option {
	return func(c *Cache) {
		c.logger = log
	}
}

// New returns a Cache that probes candidates in order for a directory
// containing required.
func New(runner bridge.Runner, candidates []string, required string, opts ...Option) *Cache {
	c := &Cache{
		runner:     runner,
		candidates: append([]string(nil), candidates...),
		required:   required,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cached returns the memoized path without probing.
func (c *Cache) Cached() (string, bool) {
	if p := c.path.Load(); p != nil {
		return *p, true
	}
	return "", false
}

// Resolve returns the memoized path, probing the device on a miss.
// Concurrent misses share one probe sequence.
func (c *Cache) Resolve(ctx context.Context) (string, error) {
	if p := c.path.Load(); p != nil {
		return *p, nil
	}

	c.mu.Lock()
	if c.notFound {
		err := c.miss
		c.mu.Unlock()
		return "", err
	}
	gen := c.generation
	c.mu.Unlock()

	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		if p := c.path.Load(); p != nil {
			return *p, nil
		}
		// callers sharing this flight must not be failed by the first
		// caller's cancellation; each probe has its own timeout
		return c.resolve(context.WithoutCancel(ctx), gen)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

func (c *Cache) resolve(ctx context.Context, gen uint64) (string, error) {
	var lastErr error
	for _, dir := range c.candidates {
		out, err := c.runner.Run(ctx, bridge.Shell(c.probeScript(dir)))
		if err != nil {
			lastErr = err
			c.logger.Debug().Str("candidate", dir).Err(err).Msg("Path probe failed")
			continue
		}
		if strings.TrimSpace(out) != probeFound {
			continue
		}

		c.mu.Lock()
		if c.generation == gen {
			c.path.Store(&dir)
			c.logger.Debug().Str("path", dir).Msg("Path resolved")
		}
		c.mu.Unlock()

		return dir, nil
	}

	// Every miss is remembered until the next Invalidate or Prime, whatever
	// the cause, so a stalled device is not probed again on every tick.
	errFactory := errors.New()
	miss := errFactory.WithData(ErrPathNotFound, c.candidates)
	if lastErr != nil {
		miss = errFactory.Wrap(ErrPathNotFound, lastErr).WithData(c.candidates)
	}

	c.mu.Lock()
	if c.generation == gen {
		c.notFound = true
		c.miss = miss
	}
	c.mu.Unlock()

	c.logger.Warn().Strs("candidates", c.candidates).Err(lastErr).Msg("No candidate path found")

	return "", miss
}

func (c *Cache) probeScript(dir string) string {
	return "if [ -d " + dir + " ] && [ -f " + dir + "/" + c.required + " ]; then echo " + probeFound + "; fi"
}

// Invalidate forgets the memoized path and any remembered miss. Probes
// already in flight finish but do not store their result.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.notFound = false
	c.miss = nil
	c.path.Store(nil)
}

// Prime clears a remembered miss and resolves. A memoized path is kept and
// a resolution already in flight is joined rather than restarted.
func (c *Cache) Prime(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.notFound {
		c.notFound = false
		c.miss = nil
		c.generation++
	}
	c.mu.Unlock()

	return c.Resolve(ctx)
}

// Fail reports that using path failed. The cache is invalidated only if
// path is still the memoized value, so a late failure cannot evict a newer
// resolution.
func (c *Cache) Fail(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p := c.path.Load(); p != nil && *p == path {
		c.generation++
		c.path.Store(nil)
	}
}
