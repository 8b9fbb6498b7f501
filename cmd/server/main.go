// @title           DecoyDrop API
// @version         1.0.0
// @description     Honeypot control plane: operator authentication, decoy data management, and the synthetic audit trail.
// @basePath        /
// @schemes         http https
// @securityDefinitions.apiKey  Bearer
// @in                          header
// @name                         Authorization
// @description                  "Operator JWT. Format: 'Bearer {token}'"
//
// @tag.name         System
// @tag.description  Health, readiness, and version endpoints.
//
// @tag.name         Observability
// @tag.description  Prometheus metrics and profiling are served on a dedicated side-channel port (default: 9090) separate from the main API listener, which keeps the scrape path off the operator ingress and away from rate limiting. Configure with DDP_TELEMETRY_METRICS_PROMETHEUS_PORT; the path is always GET /metrics. pprof (DDP_TELEMETRY_PROFILING_ENABLED=true) is served on DDP_TELEMETRY_PROFILING_PORT (default: 6060) at the standard /debug/pprof/ paths.

// Package main is the entry point for the DecoyDrop server binary. It
// dispatches three subcommands — serve, migrate, and version — via a simple
// switch on os.Args so the binary's full CLI surface is readable in one place
// without requiring a cobra dependency. The serve command runs auto-migration
// and decoy seeding on startup so freshly deployed containers need no separate
// provisioning step.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108 -- pprof is NOT served on the main API listener (Gin router).

	// It only serves on a dedicated internal port when cfg.Telemetry.Profiling.Enabled=true.
	// DefaultServeMux is never passed to the Gin HTTP server.
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/decoydrop/decoydrop/internal/api"
	"github.com/decoydrop/decoydrop/internal/audit"
	"github.com/decoydrop/decoydrop/internal/auth"
	"github.com/decoydrop/decoydrop/internal/config"
	"github.com/decoydrop/decoydrop/internal/db"
	"github.com/decoydrop/decoydrop/internal/db/repositories"
	"github.com/decoydrop/decoydrop/internal/simulator"
	"github.com/decoydrop/decoydrop/internal/telemetry"
)

const (
	version = "0.1.0"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	// Parse command from args
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Execute command
	switch command {
	case "serve":
		return serve(cfg)
	case "migrate":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: %s migrate <up|down>", os.Args[0])
		}
		return runMigrations(cfg, os.Args[2])
	case "version":
		fmt.Printf("DecoyDrop v%s\n", version)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\nAvailable commands: serve, migrate, version", command)
	}
}

func serve(cfg *config.Config) error {
	// Initialise structured logger as early as possible so all subsequent log output
	// uses the configured format (json / text) and level.
	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)

	// Set Gin mode
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Validate JWT secret configuration (fails in production if not set)
	if err := auth.ValidateJWTSecret(); err != nil {
		return fmt.Errorf("security configuration error: %w", err)
	}

	// The admin credential is the only real login in the system; refusing to
	// boot without it beats serving an API nobody can reach.
	if cfg.Auth.AdminPasswordHash == "" {
		return fmt.Errorf("auth.admin_password_hash is not set; generate one with: go run ./cmd/hash <password>")
	}

	slog.Info("database config",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"user", cfg.Database.User,
		"dbname", cfg.Database.Name,
		"sslmode", cfg.Database.SSLMode)

	// Connect to database
	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	slog.Info("connected to database")

	// Begin exporting DB pool statistics to Prometheus.
	telemetry.StartDBStatsCollector(database)

	// Run migrations automatically on startup
	if err := db.RunMigrations(database, "up"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	migVersion, dirty, err := db.GetMigrationVersion(database)
	if err != nil {
		slog.Warn("failed to get migration version", "error", err)
	} else {
		slog.Info("database schema ready", "version", migVersion, "dirty", dirty)
	}

	// Stamp this deployment with a stable instance identifier on first boot.
	sqlxDB := sqlx.NewDb(database, "postgres")
	settingsRepo := repositories.NewSettingsRepository(sqlxDB)
	instanceID, err := ensureInstanceID(settingsRepo)
	if err != nil {
		slog.Warn("instance identity handling failed", "error", err)
	} else {
		slog.Info("instance identity", "instance_id", instanceID)
	}

	// Populate decoy users and bait file links on an empty database. An empty
	// honeypot is a dead giveaway.
	if err := db.Seed(context.Background(), database); err != nil {
		return fmt.Errorf("failed to seed decoy data: %w", err)
	}

	// Build the audit shipping pipeline. Operator actions go only to the
	// shippers; synthetic events go to the database first and then out.
	shipper, err := audit.NewMultiShipper(shipperConfigs(cfg))
	if err != nil {
		return fmt.Errorf("failed to configure audit shippers: %w", err)
	}

	// Wrap the event repository so every fabricated event is also forwarded to
	// the configured external destinations.
	eventRepo := repositories.NewAuditEventRepository(database)
	eventStore := audit.NewShippingStore(eventRepo, shipper)

	userRepo := repositories.NewUserRepository(database)
	fileRepo := repositories.NewFileLinkRepository(database)

	// Start the activity simulation engine.
	engineCtx, engineCancel := context.WithCancel(context.Background())
	defer engineCancel()
	engine := simulator.New(userRepo, fileRepo, eventStore,
		cfg.Simulator.EventsPerSecond, cfg.Simulator.RetentionDays)
	engine.Start(engineCtx)

	// Start Prometheus metrics endpoint on a dedicated port so it is not reachable
	// through the operator API ingress path.
	if cfg.Telemetry.Metrics.Enabled {
		metricsAddr := fmt.Sprintf(":%d", cfg.Telemetry.Metrics.PrometheusPort)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			slog.Info("starting Prometheus metrics server", "addr", metricsAddr)
			// Use http.Server with timeouts (G114: bare http.ListenAndServe has no timeout support).
			srv := &http.Server{
				Addr:         metricsAddr,
				Handler:      mux,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	// Start pprof endpoint on its own port (disabled in production by default).
	if cfg.Telemetry.Profiling.Enabled {
		pprofAddr := fmt.Sprintf(":%d", cfg.Telemetry.Profiling.Port)
		go func() {
			slog.Info("starting pprof server", "addr", pprofAddr)
			// net/http/pprof registers its handlers on http.DefaultServeMux at init time.
			srv := &http.Server{ //nolint:gosec // #nosec G112 -- internal-only pprof port, long timeouts acceptable
				Addr:         pprofAddr,
				Handler:      http.DefaultServeMux, // #nosec G108 -- not the main listener; pprof-only internal port
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("pprof server error", "error", err)
			}
		}()
	}

	// Create router
	router, bgServices := api.NewRouter(cfg, database, engine, shipper)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("starting server",
			"addr", cfg.Server.GetAddress(),
			"base_url", cfg.Server.BaseURL,
			"events_per_second", cfg.Simulator.EventsPerSecond,
			"retention_days", cfg.Simulator.RetentionDays)

		var err error
		if cfg.Security.TLS.Enabled {
			slog.Info("TLS enabled", "cert", cfg.Security.TLS.CertFile, "key", cfg.Security.TLS.KeyFile)
			err = server.ListenAndServeTLS(cfg.Security.TLS.CertFile, cfg.Security.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Drain in order: rate limiter goroutines, then the simulation engine, then
	// the shippers (last, so the engine's final events still get forwarded).
	bgServices.Shutdown()
	engine.Stop()
	if err := shipper.Close(); err != nil {
		slog.Warn("audit shipper close failed", "error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// ensureInstanceID returns the deployment's stable identifier, generating and
// persisting one on first boot. The ID tags shipped audit records so a
// collector aggregating several honeypots can tell them apart.
func ensureInstanceID(repo *repositories.SettingsRepository) (string, error) {
	ctx := context.Background()

	id, err := repo.Get(ctx, repositories.SettingInstanceID)
	if err != nil {
		return "", fmt.Errorf("failed to read instance id: %w", err)
	}
	if id != "" {
		return id, nil
	}

	id = "ddp-" + uuid.New().String()
	if err := repo.Set(ctx, repositories.SettingInstanceID, id); err != nil {
		return "", fmt.Errorf("failed to store instance id: %w", err)
	}
	return id, nil
}

// shipperConfigs maps the loaded configuration onto the audit package's
// shipper settings.
func shipperConfigs(cfg *config.Config) []audit.ShipperConfig {
	configs := make([]audit.ShipperConfig, 0, len(cfg.Audit.Shippers))
	for _, s := range cfg.Audit.Shippers {
		configs = append(configs, audit.ShipperConfig{
			Enabled:       s.Enabled,
			Type:          s.Type,
			URL:           s.URL,
			Headers:       s.Headers,
			Timeout:       s.Timeout,
			BatchSize:     s.BatchSize,
			FlushInterval: s.FlushInterval,
			Path:          s.Path,
			MaxSizeMB:     s.MaxSizeMB,
			MaxBackups:    s.MaxBackups,
		})
	}
	return configs
}

func runMigrations(cfg *config.Config, direction string) error {
	// Connect to database
	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	log.Printf("Running migrations: %s", direction)

	// Run migrations
	if err := db.RunMigrations(database, direction); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Get current version
	migVersion, dirty, err := db.GetMigrationVersion(database)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	log.Printf("Migration completed successfully. Current version: %d (dirty: %v)", migVersion, dirty)
	return nil
}
