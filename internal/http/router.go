// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// rate limiting, CORS, and security headers, and additionally owns the two
// Telegram-facing surfaces: the webhook intake and the WebApp fallback proxy.
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
	telebot "gopkg.in/telebot.v3"
	"gorm.io/gorm"

	_ "supportdesk/docs" // registers the generated swagger spec
	"supportdesk/internal/config"
	"supportdesk/internal/http/handlers"
	"supportdesk/internal/http/middleware"
	"supportdesk/internal/notify"
	"supportdesk/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, tgBot *telebot.Bot, notifier *notify.Notifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress JSON responses for the WebApp
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (allow all when no origins configured; the WebApp runs
	// inside Telegram's webview where the origin is not fixed)
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Method fallback
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health with breaker visibility
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if notifier != nil && notifier.Breaker != nil {
			status["telegram_breaker"] = notifier.Breaker.State()
		}
		c.JSON(http.StatusOK, status)
	})

	// Swagger UI (flag-gated)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Telegram webhook intake (root, outside the API base path)
	dedup := newUpdateDedup(cfg.WebhookDedupTTL)
	r.POST("/webhook", webhookHandler(tgBot, dedup))

	// Dependency injection: services ← db, handlers ← services
	ticketSvc := services.NewRequestService(db)
	logSvc := &services.LogService{DB: db}
	var notifIface handlers.Notifier
	if notifier != nil {
		notifIface = notifier
	}
	h := handlers.New(ticketSvc, logSvc, notifIface)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Requests
		api.POST("/support-request", h.CreateSupportRequest)
		api.GET("/requests", h.ListRequests)
		api.PUT("/requests/:id", h.UpdateRequest)

		// Conversations
		api.GET("/chat/:id", h.GetThread)
		api.GET("/chat/:id/messages", h.ListThreadMessages)
		api.POST("/chat/:id/messages", h.AppendThreadMessage)
		api.GET("/chats", h.ListChats)

		// Logs
		api.GET("/logs", h.ListLogs)
		api.GET("/logs/recent", h.ListRecentLogs)
		api.POST("/webapp-log", h.StoreWebAppLog)
	}

	// Everything else belongs to the static WebApp
	r.NoRoute(webAppProxy(cfg.WebAppBaseURL, cfg.APIBasePath))
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized bodies error on read downstream.
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
