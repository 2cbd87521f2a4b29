package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP charges the caller resolved by UserID, or the client IP when
// UserID did not run.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if s := c.GetString(userIDKey); s != "" {
			return "user:" + s
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token bucket. Idle buckets are swept every
// sweepEvery lookups.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	key   KeyFunc
	idle  time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups int
}

const sweepEvery = 5000

// NewRateLimiter builds a limiter allowing rps sustained and burst peak
// requests per key.
func NewRateLimiter(rps float64, burst int, key KeyFunc) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if key == nil {
		key = KeyByUserOrIP()
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		key:     key,
		idle:    10 * time.Minute,
		buckets: map[string]*bucket{},
	}
}

func (rl *RateLimiter) limiter(k string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.lookups++; rl.lookups >= sweepEvery {
		rl.lookups = 0
		for bk, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idle {
				delete(rl.buckets, bk)
			}
		}
	}
	b, ok := rl.buckets[k]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.rps, rl.burst)}
		rl.buckets[k] = b
	}
	b.lastSeen = now
	return b.lim
}

// Handler rejects over-limit requests with 429. Idempotent replays are
// not charged.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsReplay(c) {
			c.Next()
			return
		}
		if rl.limiter(rl.key(c), time.Now()).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
