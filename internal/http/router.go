// Package httpapi wires the Gin engine: middleware, the state, document and
// stream routes, health, metrics and Swagger UI.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-fitcircle/docs"
	"github.com/tbourn/go-fitcircle/internal/config"
	"github.com/tbourn/go-fitcircle/internal/http/handlers"
	"github.com/tbourn/go-fitcircle/internal/http/middleware"
	"github.com/tbourn/go-fitcircle/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// Deps are the application dependencies behind the routes. A nil State or
// Docs leaves its route group unmounted; a nil Idem disables replay.
type Deps struct {
	State handlers.StateStore
	Docs  handlers.DocumentService
	Idem  *services.IdempotencyService
}

// RegisterRoutes attaches middleware and endpoints to r. Order matters:
//
//  1. otelgin traces everything
//  2. RequestID and UserID populate the request context
//  3. AccessLog attaches the request logger, so Recovery can use it
//  4. body limit, gzip (streams excluded) and metrics
//  5. idempotency before the rate limiter, so replays are not charged
//  6. CORS and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID(), middleware.UserID())
	r.Use(middleware.AccessLog(middleware.RedactOptions{MaskHeaders: []string{"X-API-Key"}}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/stream/`, `^/metrics$`})))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var lookup middleware.IdempotencyLookup
	var idem handlers.IdempotencyStore
	if deps.Idem != nil {
		lookup, idem = deps.Idem.Exists, deps.Idem
	}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, lookup))
	r.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).Handler())

	r.Use(corsHandlers(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		EnablePolicy:  true,
		ExposeHeaders: []string{"ETag", middleware.HeaderReplayed},
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.State, deps.Docs, idem)
	api := groupWithPrefix(r, cfg.APIBasePath)

	if h.HasState() {
		st := api.Group("/state")
		st.GET("", h.GetState)
		st.PATCH("/profile", h.UpdateProfile)
		st.PUT("/challenge", h.SetActiveChallenge)
		st.POST("/dark-mode", h.ToggleDarkMode)
		st.POST("/toasts", h.AddToast)
		st.DELETE("/toasts/:id", h.RemoveToast)
		st.PUT("/posts/:id", h.UpdatePost)
		st.POST("/posts/:id/reactions", h.ReactToPost)
		st.POST("/logout", h.Logout)
		api.GET("/stream/state", h.StreamState)
	}

	if h.HasDocuments() {
		api.GET("/docs/*path", h.GetDocuments)
		api.PUT("/docs/*path", h.PutDocument)
		api.POST("/docs/*path", h.AddDocument)
		api.DELETE("/docs/*path", h.DeleteDocument)
		api.GET("/stream/docs/*path", h.StreamDocuments)
	}
}

// corsHandlers allows every origin when none is configured, otherwise only
// the allowlist.
func corsHandlers(origins []string) []gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderUserID, middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{middleware.HeaderRequestID, "Content-Length", "ETag", middleware.HeaderReplayed},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		// cors only answers requests that carry Origin; plain clients and
		// health probes still see the wildcard.
		wildcard := func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		}
		return []gin.HandlerFunc{wildcard, cors.New(cc)}
	}
	cc.AllowOrigins = origins
	return []gin.HandlerFunc{cors.New(cc)}
}

func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
