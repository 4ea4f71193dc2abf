package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fitlogapp/fitlog/internal/cache"
	"github.com/fitlogapp/fitlog/internal/config"
	"github.com/fitlogapp/fitlog/internal/ingest"
	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/metrics"
	"github.com/fitlogapp/fitlog/internal/queue"
	"github.com/fitlogapp/fitlog/internal/router"
	"github.com/fitlogapp/fitlog/internal/services"
	"github.com/fitlogapp/fitlog/internal/store"
	"github.com/fitlogapp/fitlog/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	runIngest := flag.Bool("ingest", true, "Consume the ingest queue in this process")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Analytics service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewManager("fitlog", "analytics", reg)

	// Record store
	logger.Info("Opening record store", "type", cfg.Store.Type)
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		logger.Fatal("Failed to open record store", "error", err)
	}
	defer func() { _ = st.Close() }()

	// Analytics cache
	c, err := cache.NewCache(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to create cache", "error", err)
	}
	defer func() { _ = c.Close() }()
	logger.Info("Cache initialized", "enabled", cfg.Cache.Enabled, "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL)

	// Connect to Queue (configurable backend)
	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	queueClient, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	defer func() { _ = queueClient.Close() }()
	logger.Info("Queue connection established")

	loc, err := cfg.Aggregation.LoadLocation()
	if err != nil {
		logger.Fatal("Invalid aggregation timezone", "timezone", cfg.Aggregation.Timezone, "error", err)
	}

	// Ingest consumer
	var consumer *ingest.Consumer
	if *runIngest {
		consumer = ingest.NewConsumer(st, c, m, logger, loc)
		if err := consumer.Start(queueClient); err != nil {
			logger.Fatal("Failed to start ingest consumer", "error", err)
		}
	} else if cfg.Queue.Type == string(utils.QueueTypeMemory) {
		logger.Warn("Ingest disabled with the memory queue - submitted records will never be stored")
	}

	analytics, err := services.NewAnalyticsService(logger, st, c, queueClient, m, cfg.Aggregation)
	if err != nil {
		logger.Fatal("Failed to create analytics service", "error", err)
	}

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, analytics, m, reg, *cfg)

	// Start server in goroutine
	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if consumer != nil {
		consumer.Stop()
	}

	logger.Info("Server exited")
}
