// Package api wires together all HTTP routes for the Sniff gateway.
//
// Route grouping philosophy:
//   - The /v1 routes are intentionally unauthenticated: the gateway fronts
//     the upstream store with its own configured accounts, and its callers
//     (download pages, update checkers) fetch anonymously. Abuse control is
//     rate limiting, not credentials.
//   - System routes (/health, /ready, /version) sit outside the rate-limited
//     group so orchestrator probes are never throttled.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sniff-api/sniff-server/internal/api/apps"
	"github.com/sniff-api/sniff-server/internal/config"
	"github.com/sniff-api/sniff-server/internal/gateway"
	"github.com/sniff-api/sniff-server/internal/middleware"
	"github.com/sniff-api/sniff-server/internal/playstore"
)

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) is responsible for calling Shutdown()
// when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// buildClients constructs one upstream client per configured channel.
func buildClients(cfg *config.Config) map[gateway.Channel]playstore.Client {
	opts := playstore.Options{
		BaseURL:         cfg.Upstream.BaseURL,
		DeviceID:        cfg.Device.GSFID,
		UserAgent:       cfg.Device.UserAgent,
		APITimeout:      cfg.Upstream.APITimeout,
		DownloadTimeout: cfg.Upstream.DownloadTimeout,
	}

	creds := map[gateway.Channel]config.ChannelCredential{
		gateway.ChannelStable: cfg.Channels.Stable,
		gateway.ChannelBeta:   cfg.Channels.Beta,
		gateway.ChannelAlpha:  cfg.Channels.Alpha,
	}

	clients := make(map[gateway.Channel]playstore.Client)
	for ch, cred := range creds {
		if !cred.IsConfigured() {
			continue
		}
		clients[ch] = playstore.NewClient(
			playstore.Credentials{Email: cred.Email, AASToken: cred.AASToken},
			opts,
		)
	}
	return clients
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	svc := gateway.NewService(buildClients(cfg), cfg.Brand.Name, slog.Default())
	handler := apps.NewHandler(svc, slog.Default())

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Landing redirect for browsers hitting the bare host.
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, cfg.Server.LandingURL)
	})

	router.GET("/health", healthCheckHandler())
	router.GET("/ready", readinessHandler(svc))
	router.GET("/version", versionHandler())

	rateLimiter := middleware.NewRateLimiter(rateLimitConfig(cfg))

	v1 := router.Group("/v1")
	if cfg.Security.RateLimiting.Enabled {
		v1.Use(middleware.RateLimitMiddleware(rateLimiter))
	}
	{
		v1.GET("/details/:package_name", handler.DetailsMulti)
		v1.GET("/details/:package_name/:channel", handler.DetailsSingle)
		v1.GET("/download/:package_name/:channel", handler.DownloadInfo)
		v1.GET("/download/:package_name/:channel/:version_code", handler.DownloadInfo)
		v1.GET("/apk/:package_name/:channel", handler.StreamAPK)
		v1.GET("/apk/:package_name/:channel/:version_code", handler.StreamAPK)
	}

	bg := &BackgroundServices{
		rateLimiters: []*middleware.RateLimiter{rateLimiter},
	}
	return router, bg
}

// rateLimitConfig maps the configured limits onto the middleware config,
// falling back to the middleware defaults for unset values.
func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
		rl.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
	}
	if cfg.Security.RateLimiting.Burst > 0 {
		rl.BurstSize = cfg.Security.RateLimiting.Burst
	}
	return rl
}

// healthCheckHandler reports process liveness. The gateway holds no local
// state worth probing; a served response is the health signal.
func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readinessHandler reports whether the gateway can do useful work: at least
// one channel must have credentials configured. No upstream call is made;
// probing the real upstream from a readiness gate would turn an upstream
// blip into a rolling restart.
func readinessHandler(svc *gateway.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		configured := svc.Configured()
		if len(configured) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready": false,
				"error": "no channels configured",
			})
			return
		}

		names := make([]string, len(configured))
		for i, ch := range configured {
			names[i] = ch.String()
		}
		c.JSON(http.StatusOK, gin.H{
			"ready":    true,
			"channels": names,
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version.
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured request logging.
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.Any("request_id", requestID),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Requested-With")
			c.Header("Access-Control-Expose-Headers", "X-Available-Channels, Content-Disposition")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
