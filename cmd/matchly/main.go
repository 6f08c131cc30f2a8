package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/VivekRai-gif/matchly/internal/api"
	"github.com/VivekRai-gif/matchly/internal/audit"
	"github.com/VivekRai-gif/matchly/internal/cache"
	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/config"
	"github.com/VivekRai-gif/matchly/internal/credential"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"github.com/VivekRai-gif/matchly/internal/oracle"
	"github.com/VivekRai-gif/matchly/internal/privacy"
	"github.com/VivekRai-gif/matchly/internal/screening"
	"github.com/VivekRai-gif/matchly/internal/websocket"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		healthCheck = flag.Bool("health-check", false, "Perform health check and exit")
		healthURL   = flag.String("health-url", "http://localhost:8080/api/health", "Health check URL")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("matchly %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if *healthCheck {
		performHealthCheck(*healthURL)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting matchly",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)

	cat, err := loadCatalog(cfg.Privacy)
	if err != nil {
		var cfgErr *catalog.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Fatal("Invalid redaction catalog",
				zap.String("domain", string(cfgErr.Domain)),
				zap.String("category", cfgErr.Category),
				zap.Error(err))
		}
		log.Fatal("Failed to load redaction catalog", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := api.Dependencies{
		Catalog: cat,
		Issuer:  credential.NewIssuer(cfg.Credential.Issuer),
	}

	if cfg.Cache.Enabled {
		registry, err := cache.NewCredentialCache(&cache.Config{
			RedisURL:       cfg.Cache.RedisURL,
			MaxConnections: cfg.Cache.MaxConnections,
			MinIdleConns:   cfg.Cache.MinIdleConns,
			DefaultTTL:     cfg.Cache.CredentialTTL,
			KeyPrefix:      cfg.Cache.KeyPrefix,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			log.Warn("Credential registry unavailable, continuing without it", zap.Error(err))
		} else {
			defer registry.Close()
			deps.Credentials = registry
		}
	}

	if cfg.Audit.Enabled {
		store, err := audit.NewStore(&audit.Config{
			DatabaseURL:     cfg.Audit.DatabaseURL,
			MaxOpenConns:    cfg.Audit.MaxConnections,
			MaxIdleConns:    cfg.Audit.MaxIdleConns,
			ConnMaxLifetime: cfg.Audit.ConnMaxLifetime,
		}, log.WithComponent("audit").Logger)
		if err != nil {
			log.Warn("Audit store unavailable, continuing without it", zap.Error(err))
		} else {
			defer store.Close()
			deps.Audit = store
		}
	}

	analyzer := oracle.NewHTTPAnalyzer(oracle.Config{
		Endpoint: cfg.Oracle.Endpoint,
		APIKey:   cfg.Oracle.APIKey,
		Model:    cfg.Oracle.Model,
		Timeout:  cfg.Oracle.Timeout,
	}, log.WithComponent("oracle").Logger)
	if analyzer.Configured() {
		deps.Screening = screening.New(privacy.NewRedactor(cat, log), analyzer, log)
		deps.Oracle = analyzer
	} else {
		log.Info("No text analysis endpoint configured, screening endpoints disabled and ATS analysis rule-based only")
	}

	if cfg.WebSocket.Enabled {
		hub := websocket.NewHub(websocket.NewHubConfig(cfg.WebSocket), log.Logger)
		go hub.Run(ctx)
		deps.Hub = hub
	}

	server, err := api.New(cfg, log, deps)
	if err != nil {
		log.Fatal("Failed to create API server", zap.Error(err))
	}
	server.StartStatusBroadcast(ctx, 30*time.Second)

	watchConfig(*configPath, log)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", zap.Error(err))
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Stop(shutdownCtx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
		}
		cancel()

		log.Info("Server shutdown complete")
	}
}

func loadCatalog(cfg config.PrivacyConfig) (*catalog.Catalog, error) {
	var opts []catalog.Option
	if cfg.CatalogPath != "" {
		opts = append(opts, catalog.WithOverrideFile(cfg.CatalogPath))
	}
	if cfg.NamePattern != "" {
		opts = append(opts, catalog.WithNamePattern(cfg.NamePattern))
	}
	if cfg.MatchTimeout > 0 {
		opts = append(opts, catalog.WithMatchTimeout(cfg.MatchTimeout))
	}
	return catalog.Load(opts...)
}

// watchConfig applies log level changes from the config file without a restart
func watchConfig(configPath string, log *logger.Logger) {
	err := config.Watch(configPath, func(newCfg *config.Config) {
		if err := log.SetLevel(newCfg.Logging.Level); err != nil {
			log.Warn("Ignoring invalid log level from reloaded config", zap.Error(err))
			return
		}
		log.Info("Configuration reloaded", zap.String("log_level", newCfg.Logging.Level))
	}, func(err error) {
		log.Warn("Configuration reload failed", zap.Error(err))
	})
	if err != nil {
		log.Debug("Configuration watch disabled", zap.Error(err))
	}
}

// performHealthCheck performs a health check against the running server
func performHealthCheck(url string) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
	os.Exit(0)
}
