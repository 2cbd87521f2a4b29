package appstore

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-fitcircle/internal/domain"
)

const (
	// DefaultKey is the durable storage key the snapshot lives under.
	DefaultKey = "fitness-app-storage"
	// DefaultToastTTL is how long a toast stays before it expires.
	DefaultToastTTL = 3000 * time.Millisecond
	// DefaultActivityInterval is the period of simulated feed activity.
	DefaultActivityInterval = 15000 * time.Millisecond
)

type config struct {
	key      string
	sched    Scheduler
	log      zerolog.Logger
	toastTTL time.Duration
	activity time.Duration
	intn     func(n int) int
	def      func() domain.AppState
}

func defaults() config {
	return config{
		key:      DefaultKey,
		sched:    WallClock,
		log:      log.Logger,
		toastTTL: DefaultToastTTL,
		activity: DefaultActivityInterval,
		intn:     rand.IntN,
		def:      domain.DefaultState,
	}
}

// Option configures a Store.
type Option func(*config)

// WithKey sets the storage key.
func WithKey(k string) Option {
	return func(c *config) {
		if k != "" {
			c.key = k
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(c *config) {
		if s != nil {
			c.sched = s
		}
	}
}

func WithLogger(l zerolog.Logger) Option { return func(c *config) { c.log = l } }

// WithToastTTL overrides the toast lifetime. Non-positive values are ignored.
func WithToastTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.toastTTL = d
		}
	}
}

// WithActivityInterval overrides the simulated activity period. A negative
// value disables simulated activity.
func WithActivityInterval(d time.Duration) Option {
	return func(c *config) {
		if d != 0 {
			c.activity = d
		}
	}
}

// WithIntn replaces the random source used to pick posts and reactions.
// intn(n) must return a value in [0, n).
func WithIntn(intn func(n int) int) Option {
	return func(c *config) {
		if intn != nil {
			c.intn = intn
		}
	}
}

// WithDefault replaces the snapshot used on first start and after logout.
func WithDefault(def func() domain.AppState) Option {
	return func(c *config) {
		if def != nil {
			c.def = def
		}
	}
}
