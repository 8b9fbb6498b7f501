// Package api wires together all HTTP routes for the DecoyDrop backend.
//
// Everything under /api/v1 except the login endpoint requires the operator
// session token. There is no public surface here on purpose: the decoy
// activity lives in the database, not behind HTTP routes, so the admin API can
// stay locked down without making the honeypot look guarded.
package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/decoydrop/decoydrop/internal/api/admin"
	"github.com/decoydrop/decoydrop/internal/audit"
	"github.com/decoydrop/decoydrop/internal/config"
	"github.com/decoydrop/decoydrop/internal/middleware"
	"github.com/decoydrop/decoydrop/internal/simulator"
)

// BackgroundServices holds resources created by the router that must be
// stopped during graceful shutdown. The caller (cmd/server) is responsible
// for calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping router background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB, engine *simulator.Simulator, shipper audit.Shipper) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Handlers
	authHandlers := admin.NewAuthHandlers(cfg)
	userHandlers := admin.NewUserHandlers(db)
	fileLinkHandlers := admin.NewFileLinkHandlers(db)
	eventHandlers := admin.NewEventHandlers(db)
	simHandlers := admin.NewSimulatorHandlers(engine)

	// Rate limiters
	authRateLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())
	generalRateLimiter := middleware.NewRateLimiter(rateLimitFromConfig(cfg))

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Health and version endpoints
	router.GET("/health", healthCheckHandler(db))
	router.GET("/ready", readinessHandler(db))
	router.GET("/version", versionHandler())

	apiV1 := router.Group("/api/v1")
	{
		// Login is the only unauthenticated endpoint, and it gets the strict
		// limiter: it is the obvious brute-force target.
		authGroup := apiV1.Group("/auth")
		authGroup.Use(middleware.RateLimitMiddleware(authRateLimiter))
		{
			authGroup.POST("/login", authHandlers.LoginHandler())
		}

		authed := apiV1.Group("")
		authed.Use(middleware.AuthMiddleware())
		authed.Use(middleware.RateLimitMiddleware(generalRateLimiter))
		authed.Use(middleware.OperatorAuditMiddleware(shipper))
		{
			authed.GET("/auth/me", authHandlers.MeHandler())

			// Decoy user management
			usersGroup := authed.Group("/users")
			{
				usersGroup.GET("", userHandlers.ListUsersHandler())
				usersGroup.GET("/:id", userHandlers.GetUserHandler())
				usersGroup.POST("", userHandlers.CreateUserHandler())
				usersGroup.PUT("/:id", userHandlers.UpdateUserHandler())
				usersGroup.DELETE("/:id", userHandlers.DeleteUserHandler())
			}

			// Bait file link management
			linksGroup := authed.Group("/file-links")
			{
				linksGroup.GET("", fileLinkHandlers.ListFileLinksHandler())
				linksGroup.GET("/:id", fileLinkHandlers.GetFileLinkHandler())
				linksGroup.POST("", fileLinkHandlers.CreateFileLinkHandler())
				linksGroup.PUT("/:id", fileLinkHandlers.UpdateFileLinkHandler())
				linksGroup.DELETE("/:id", fileLinkHandlers.DeleteFileLinkHandler())
			}

			// Synthetic audit trail, read-only
			authed.GET("/events", eventHandlers.ListEventsHandler())
			authed.GET("/events/stats", eventHandlers.StatsHandler())

			// Simulation control
			authed.GET("/admin/simulator/status", simHandlers.StatusHandler())
			authed.POST("/admin/simulate-attack", simHandlers.SimulateAttackHandler())
		}
	}

	bg := &BackgroundServices{
		rateLimiters: []*middleware.RateLimiter{authRateLimiter, generalRateLimiter},
	}

	return router, bg
}

// rateLimitFromConfig maps the config's rate limiting settings onto the
// middleware's general limiter, falling back to defaults for zero values.
func rateLimitFromConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
		rl.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
	}
	if cfg.Security.RateLimiting.Burst > 0 {
		rl.BurstSize = cfg.Security.RateLimiting.Burst
	}
	return rl
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      Readiness check
// @Description  Returns whether the service is ready to accept traffic.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "ready: false, error: database not ready"
// @Router       /ready [get]
// readinessHandler returns the readiness status of the service. The database
// is the only hard dependency; audit shippers are best-effort and do not gate
// readiness.
func readinessHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready": false,
				"error": "database not ready",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ready": true,
			"time":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured request logging through the global
// slog handler configured in telemetry.SetupLogger.
func LoggerMiddleware() gin.HandlerFunc {
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
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS for the operator UI
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
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
