// Package binding links a document-store path to an observable result.
//
// A Collection binding resolves to an ordered list of records, a Document
// binding to at most one record; both expose a loading flag. Bindings come
// in two modes sharing the same result contract:
//
//   - Live: an open subscription re-delivers the full result after every
//     remote change (chat messages, join requests, leaderboards).
//   - Once: a single fetch-and-resolve for data that does not need updates.
//
// Bind is cheap to call repeatedly: it re-binds only when the canonical path
// or the structural identity of the constraints changes. Every re-bind tears
// the previous subscription down before starting the next, and a generation
// counter discards any result that arrives for a superseded request, so the
// last request wins regardless of response order.
//
// Invalid paths (empty, or with a blank segment) resolve immediately to an
// empty, not-loading result and never reach the store. Remote failures also
// resolve to an empty, not-loading result; they are logged and counted but
// never returned to the caller.
package binding

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mode selects how a binding reads the store.
type Mode uint8

const (
	// Live keeps a subscription open.
	Live Mode = iota
	// Once fetches a single time per bind.
	Once
)

func (m Mode) String() string {
	if m == Once {
		return "once"
	}
	return "live"
}

type config struct {
	mode     Mode
	log      zerolog.Logger
	timeout  time.Duration
	onChange func()
}

// Option configures a binding.
type Option func(*config)

// WithMode selects Live (the default) or Once.
func WithMode(m Mode) Option { return func(c *config) { c.mode = m } }

// WithLogger sets the logger used for failure reports.
func WithLogger(l zerolog.Logger) Option { return func(c *config) { c.log = l } }

// WithTimeout bounds each Once fetch. Zero means no bound.
func WithTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

// WithOnChange registers fn to run after every result change. fn runs on
// the goroutine that produced the change and should only signal; read the
// current state through Result.
func WithOnChange(fn func()) Option { return func(c *config) { c.onChange = fn } }

func newConfig(opts []Option) config {
	c := config{mode: Live, log: log.Logger}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// starter opens the remote operation for generation gen. It returns an
// optional stop function for live subscriptions.
type starter func(ctx context.Context, gen uint64) (stop func(), err error)

// core is the shared state machine behind Collection and Document.
type core[R any] struct {
	kind string
	cfg  config
	log  zerolog.Logger

	mu      sync.Mutex
	bound   bool
	ident   string
	pathKey string
	gen     uint64
	stop    func()
	live    bool
	closed  bool
	result  R
	changed chan struct{}
}

func newCore[R any](kind string, initial R, opts []Option) *core[R] {
	cfg := newConfig(opts)
	return &core[R]{
		kind:    kind,
		cfg:     cfg,
		log:     cfg.log.With().Str("component", "binding").Str("kind", kind).Str("mode", cfg.mode.String()).Logger(),
		result:  initial,
		changed: make(chan struct{}),
	}
}

// bind switches the binding to ident. idle is the settled empty result and
// loading the in-flight one.
func (c *core[R]) bind(ident, pathKey string, valid bool, idle, loading R, start starter) {
	c.mu.Lock()
	if c.closed || (c.bound && c.ident == ident) {
		c.mu.Unlock()
		return
	}
	c.bound, c.ident, c.pathKey = true, ident, pathKey
	c.teardownLocked()
	c.gen++
	gen := c.gen

	if !valid {
		c.setLocked(idle)
		c.mu.Unlock()
		c.notify()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.stop = cancel
	c.setLocked(loading)
	c.mu.Unlock()
	c.notify()

	stop, err := start(ctx, gen)
	if err != nil {
		cancel()
		c.fail(gen, err, idle)
		return
	}

	c.mu.Lock()
	if c.gen != gen {
		// Superseded while starting.
		c.mu.Unlock()
		cancel()
		if stop != nil {
			stop()
		}
		return
	}
	if stop != nil {
		c.stop = func() { cancel(); stop() }
		c.live = true
		activeSubscriptions.WithLabelValues(c.kind).Inc()
	}
	c.mu.Unlock()
}

// deliver publishes r if gen is still current.
func (c *core[R]) deliver(gen uint64, r R) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		staleResults.WithLabelValues(c.kind).Inc()
		return
	}
	c.setLocked(r)
	c.mu.Unlock()
	c.notify()
}

// fail swallows err into the idle result.
func (c *core[R]) fail(gen uint64, err error, idle R) {
	c.mu.Lock()
	current := !c.closed && gen == c.gen
	path := c.pathKey
	c.mu.Unlock()
	if !current {
		staleResults.WithLabelValues(c.kind).Inc()
		return
	}
	failures.WithLabelValues(c.kind, c.cfg.mode.String()).Inc()
	c.log.Warn().Err(err).Str("path", path).Msg("binding failed, resolving empty")
	c.deliver(gen, idle)
}

func (c *core[R]) teardownLocked() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.live {
		c.live = false
		activeSubscriptions.WithLabelValues(c.kind).Dec()
	}
}

func (c *core[R]) setLocked(r R) {
	c.result = r
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *core[R]) notify() {
	if c.cfg.onChange != nil {
		c.cfg.onChange()
	}
}

func (c *core[R]) current() R {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *core[R]) changedCh() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

func (c *core[R]) await(ctx context.Context, loading func(R) bool) (R, error) {
	for {
		c.mu.Lock()
		r, ch := c.result, c.changed
		c.mu.Unlock()
		if !loading(r) {
			return r, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return r, ctx.Err()
		}
	}
}

func (c *core[R]) close(idle R) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.teardownLocked()
	c.gen++
	c.setLocked(idle)
	c.mu.Unlock()
	c.notify()
}

// invalidKey renders an unparseable path for identity comparison. The
// prefix keeps it distinct from every canonical key.
func invalidKey(segments []string) string {
	return "!invalid:" + strings.Join(segments, "\x00")
}
