package main

import (
	"context"
	"flag"
	"fmt"
	"fraud_screener/internal/api"
	"fraud_screener/internal/config"
	"fraud_screener/internal/ingest"
	"fraud_screener/internal/processor"
	"fraud_screener/internal/telemetry"
	"fraud_screener/pkg/metrics"
	"fraud_screener/pkg/validator"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

const (
	appName = "fraud_screener"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)
	logger.Info("Starting application",
		slog.String("name", appName))

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), cfg.Tracing, logger)
	if err != nil {
		logger.Error("Tracing setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rules, err := processor.ConfiguredRuleSet(cfg.Rules.Disabled)
	if err != nil {
		logger.Error("Invalid rule configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Rules loaded", slog.Any("rules", rules.IDs()))

	metricsCollector := metrics.NewMetricsCollector(logger)
	evaluator := processor.NewEvaluator(rules,
		processor.WithMetrics(metricsCollector),
		processor.WithLogger(logger))
	batchProcessor := processor.NewBatchProcessor(evaluator, cfg.Batch.Workers, logger)
	txValidator := validator.NewTransactionValidator()
	loader := ingest.NewLoader(txValidator, logger)

	apiHandler := api.NewAPIHandler(evaluator, batchProcessor, txValidator, loader, metricsCollector, logger, api.HandlerConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		SamplePath:     cfg.Batch.SamplePath,
	})

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = metricsCollector.StartMetricsServer(cfg.Metrics.Addr)
	}
	httpServer := startHTTPServer(cfg.Server, apiHandler, logger)
	waitForShutdown(logger, cfg.Server, httpServer, metricsServer, shutdownTracing)
	logger.Info("Application shutdown complete")
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func startHTTPServer(cfg config.ServerConfig, apiHandler *api.APIHandler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	apiHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name": "%s", "status": "ok"}`, appName)
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(
	logger *slog.Logger,
	cfg config.ServerConfig,
	httpServer *http.Server,
	metricsServer *http.Server,
	shutdownTracing telemetry.ShutdownFunc,
) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Tracer provider shutdown failed", slog.String("error", err.Error()))
	}
}
