// Package middleware contains the Gin middleware shared by the state,
// document and stream routes.
//
// This file holds the per-request context: a correlation id, the caller's
// user id, and a request-scoped logger that handlers retrieve with
// LoggerFrom.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey = "requestID"
	userIDKey    = "userID"
	loggerKey    = "logger"

	// HeaderRequestID carries the correlation id in both directions.
	HeaderRequestID = "X-Request-ID"
	// HeaderUserID names the caller in this demo deployment; there is no
	// authentication layer in front of it.
	HeaderUserID = "X-User-ID"
	// DefaultUserID is used when no identity is supplied.
	DefaultUserID = "demo-user"
)

// RequestID reuses an incoming X-Request-ID or generates one, stores it on
// the context and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

// UserID resolves the caller from X-User-ID, falling back to DefaultUserID.
// Rate limiting and idempotency records are keyed by it.
func UserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if uid == "" {
			uid = DefaultUserID
		}
		c.Set(userIDKey, uid)
		c.Next()
	}
}

// CurrentUser returns the id stored by UserID, or DefaultUserID.
func CurrentUser(c *gin.Context) string {
	if s := c.GetString(userIDKey); s != "" {
		return s
	}
	return DefaultUserID
}

// RequestIDFrom returns the correlation id of the request, if any.
func RequestIDFrom(c *gin.Context) string {
	if s := c.GetString(requestIDKey); s != "" {
		return s
	}
	return c.Writer.Header().Get(HeaderRequestID)
}

// LoggerFrom returns the request-scoped logger attached by AccessLog, or
// the global logger when none is attached.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// Recovery turns a panic into a JSON 500 carrying the request id, logging
// the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(HeaderRequestID, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}
