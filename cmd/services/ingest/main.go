package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fitlogapp/fitlog/internal/cache"
	"github.com/fitlogapp/fitlog/internal/config"
	"github.com/fitlogapp/fitlog/internal/ingest"
	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/metrics"
	"github.com/fitlogapp/fitlog/internal/queue"
	"github.com/fitlogapp/fitlog/internal/store"
	"github.com/fitlogapp/fitlog/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	metricsAddr := flag.String("metrics-addr", ":5581", "Address of the /metrics endpoint (empty to disable)")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Queue.Type == string(utils.QueueTypeMemory) {
		fmt.Fprintln(os.Stderr, "The ingest worker needs a shared queue (nats, redis or kafka), got memory")
		os.Exit(1)
	}

	// 2. Initialize logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Ingest worker starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// 3. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewManager("fitlog", "ingest", reg)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logger.Info("Metrics listening", "address", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("Metrics server stopped", "error", err)
			}
		}()
	}

	// 4. Store, cache and queue
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		logger.Fatal("Failed to open record store", "error", err)
	}
	defer func() { _ = st.Close() }()

	if cfg.Cache.Enabled && cfg.Cache.Type != "redis" {
		logger.Warn("Cache is process local - the analytics service will not see invalidations from this worker",
			"type", cfg.Cache.Type)
	}
	c, err := cache.NewCache(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to create cache", "error", err)
	}
	defer func() { _ = c.Close() }()

	queueClient, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	defer func() { _ = queueClient.Close() }()

	loc, err := cfg.Aggregation.LoadLocation()
	if err != nil {
		logger.Fatal("Invalid aggregation timezone", "timezone", cfg.Aggregation.Timezone, "error", err)
	}

	// 5. Consume
	consumer := ingest.NewConsumer(st, c, m, logger, loc)
	if err := consumer.Start(queueClient); err != nil {
		logger.Fatal("Failed to start ingest consumer", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down ingest worker...")
	consumer.Stop()
	logger.Info("Ingest worker exited")
}
