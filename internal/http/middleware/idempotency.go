package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderIdempotencyKey is read on mutating requests.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderReplayed is set on responses served from a stored record.
	HeaderReplayed = "Idempotency-Replayed"

	idemKeyKey    = "idem.key"
	idemReplayKey = "idem.replay"
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyOptions bounds accepted keys. Zero values pick a 200 byte
// limit and a URL-safe character set.
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a live record exists for the triple.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error)

// IdempotencyScope identifies the operation a key applies to: the method
// and the concrete request path, so the same key on two posts does not
// collide.
func IdempotencyScope(c *gin.Context) string {
	return c.Request.Method + " " + c.Request.URL.Path
}

// GetIdempotencyKey returns the validated key, if the request carried one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(idemKeyKey)
	return s, s != ""
}

// IsReplay reports whether a stored response exists for this request.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(idemReplayKey)
}

// IdempotencyValidator validates Idempotency-Key and flags replays. Lookup
// errors are logged and the request proceeds as a first attempt.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(idemKeyKey, key)

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), CurrentUser(c), IdempotencyScope(c), key, time.Now().UTC())
			switch {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			case exists:
				c.Set(idemReplayKey, true)
			}
		}
		c.Next()
	}
}
