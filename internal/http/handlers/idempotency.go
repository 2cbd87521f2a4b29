package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/tbourn/go-fitcircle/internal/http/middleware"
	"github.com/tbourn/go-fitcircle/internal/services"
)

// replay writes the recorded response when the middleware flagged this
// request as a retry. It reports whether the request was answered.
func (h *Handlers) replay(c *gin.Context) bool {
	if h.idem == nil || !middleware.IsReplay(c) {
		return false
	}
	key, _ := middleware.GetIdempotencyKey(c)
	rec, err := h.idem.Lookup(c.Request.Context(), middleware.CurrentUser(c), middleware.IdempotencyScope(c), key)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency replay lookup")
		}
		return false
	}
	c.Header(middleware.HeaderReplayed, "true")
	if rec.Response == "" {
		c.Status(rec.Status)
		return true
	}
	c.Data(rec.Status, "application/json; charset=utf-8", []byte(rec.Response))
	return true
}

// respond writes body with status and, when the request carried an
// Idempotency-Key, records it. A nil body writes no content.
func (h *Handlers) respond(c *gin.Context, status int, body any) {
	var raw []byte
	if body != nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "encode response")
			return
		}
	}
	if key, ok := middleware.GetIdempotencyKey(c); ok && h.idem != nil {
		err := h.idem.Record(c.Request.Context(), middleware.CurrentUser(c), middleware.IdempotencyScope(c), key, string(raw), status)
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("record idempotency key")
		}
	}
	if raw == nil {
		c.Status(status)
		return
	}
	c.Data(status, "application/json; charset=utf-8", raw)
}
