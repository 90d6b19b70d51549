package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulsestack/pulse-sentinel/internal/api"
	"github.com/pulsestack/pulse-sentinel/internal/cache"
	"github.com/pulsestack/pulse-sentinel/internal/config"
	"github.com/pulsestack/pulse-sentinel/internal/engine"
	"github.com/pulsestack/pulse-sentinel/internal/metrics"
	"github.com/pulsestack/pulse-sentinel/internal/models"
	"github.com/pulsestack/pulse-sentinel/internal/services"
	"github.com/pulsestack/pulse-sentinel/internal/source"
	"github.com/pulsestack/pulse-sentinel/internal/utils"
	memcache "github.com/pulsestack/pulse-sentinel/pkg/cache"
)

func main() {
	var (
		configPath string
		inputPath  string
		pull       bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&inputPath, "input", "", "Analyze a JSON events file and print the report instead of serving")
	flag.BoolVar(&pull, "pull", false, "Fetch one batch from the configured source, print the report, and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider = memcache.NewMemory()
	var redisCloser cache.Provider
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewRedisProvider(cache.RedisConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			MaxRetries:   cfg.Cache.MaxRetries,
			TLS:          cfg.Cache.TLS,
		})
		if err != nil {
			logger.Warn("redis cache unavailable, using in-memory cache", slog.Any("error", err))
		} else {
			cacheProvider = provider
			redisCloser = provider
		}
	}
	if redisCloser != nil {
		defer redisCloser.Close()
	}

	overrides, err := engine.LoadOverrides(cfg.Overrides.Path, logger)
	if err != nil {
		logger.Error("failed to load override rules", slog.String("path", cfg.Overrides.Path), slog.Any("error", err))
		os.Exit(1)
	}

	analyzer := engine.NewAnalyzer(logger, overrides)
	pipeline := engine.NewPipeline(logger, analyzer)
	analysisService := services.NewAnalysisService(logger, pipeline, cacheProvider, cfg.Cache.ReportTTL)

	if inputPath != "" || pull {
		os.Exit(runOnce(logger, cfg, analysisService, inputPath, cacheProvider))
	}

	logger.Info("starting pulse-sentinel", slog.String("address", cfg.Server.Address))

	handler := api.NewHandler(logger, analysisService, cfg.Analysis)
	server, err := api.NewServer(cfg.Server, handler)
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("pulse-sentinel stopped")
}

// runOnce performs a single analysis from a file or the configured remote
// source and prints the JSON report on stdout.
func runOnce(logger *slog.Logger, cfg *config.Config, svc *services.AnalysisService, inputPath string, provider cache.Provider) int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		records []any
		err     error
	)
	if inputPath != "" {
		records, err = source.LoadFile(inputPath)
	} else {
		client := source.NewClient(cfg.Source.BaseURL, cfg.Source.EventsPath, cfg.Source.Timeout, provider, cfg.Source.BatchTTL)
		records, err = client.FetchBatch(ctx)
	}
	if err != nil {
		logger.Error("failed to load events", slog.Any("error", err))
		return 1
	}

	analysisCfg := models.AnalysisConfig{
		ExpectedIntervalSeconds: cfg.Analysis.IntervalSeconds,
		AllowedMisses:           cfg.Analysis.AllowedMisses,
		PageSize:                cfg.Analysis.PageSize,
	}
	if cfg.Analysis.TrailingCutoff {
		analysisCfg.Now = time.Now().UTC()
	}

	rep, err := svc.Analyze(ctx, records, analysisCfg)
	if err != nil {
		logger.Error("analysis failed", slog.Any("error", err))
		return 1
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rep); err != nil {
		logger.Error("failed to encode report", slog.Any("error", err))
		return 1
	}
	return 0
}
