package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pulsestack/pulse-sentinel/internal/cache"
	"github.com/pulsestack/pulse-sentinel/internal/engine"
	"github.com/pulsestack/pulse-sentinel/internal/metrics"
	"github.com/pulsestack/pulse-sentinel/internal/models"
)

// AnalysisService fronts the pipeline for the HTTP and CLI callers: it
// validates configuration, serves cached reports, and records metrics.
type AnalysisService struct {
	logger    *slog.Logger
	pipeline  *engine.Pipeline
	cache     cache.Provider
	reportTTL time.Duration
	latencies *latencyTracker
}

// NewAnalysisService constructs the analysis facade. A nil cache provider
// disables report caching.
func NewAnalysisService(logger *slog.Logger, pipeline *engine.Pipeline, provider cache.Provider, reportTTL time.Duration) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if pipeline == nil {
		pipeline = engine.NewPipeline(logger, nil)
	}
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	return &AnalysisService{
		logger:    logger,
		pipeline:  pipeline,
		cache:     provider,
		reportTTL: reportTTL,
		latencies: newLatencyTracker(1024),
	}
}

// Analyze runs one gap analysis over the raw record batch. Config errors and
// input-shape errors are fatal for the call; bad records only lower the
// valid-event count.
func (s *AnalysisService) Analyze(ctx context.Context, records []any, cfg models.AnalysisConfig) (models.AnalysisReport, error) {
	if err := cfg.Validate(); err != nil {
		metrics.ObserveAnalysis(0, metrics.OutcomeError)
		return models.AnalysisReport{}, err
	}

	key, cacheable := s.cacheKey(records, cfg)
	if cacheable {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var cached models.AnalysisReport
			if err := json.Unmarshal(data, &cached); err == nil {
				s.logger.Debug("report served from cache", slog.String("key", key))
				return cached, nil
			}
		}
	}

	start := time.Now()
	rep, err := s.pipeline.Run(records, cfg)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveAnalysis(duration, metrics.OutcomeError)
		s.logger.Error("analysis failed", slog.Any("error", err))
		return models.AnalysisReport{}, err
	}

	s.latencies.observe(duration)
	metrics.ObserveAnalysis(duration, metrics.OutcomeSuccess)
	metrics.ObserveReport(rep)
	if count := s.latencies.count(); count >= 20 && count%20 == 0 {
		s.logger.Info("analysis latency",
			slog.Duration("p95", s.latencies.percentile(95)),
			slog.Int("samples", count))
	}

	if cacheable && s.reportTTL > 0 {
		if data, err := json.Marshal(rep); err == nil {
			if err := s.cache.Set(ctx, key, data, s.reportTTL); err != nil {
				s.logger.Warn("report cache write failed", slog.Any("error", err))
			}
		}
	}

	return rep, nil
}

// cacheKey hashes the canonical request. Page size is excluded since it never
// changes the produced alerts, and runs with a trailing cutoff are not cached
// because their result depends on the supplied now.
func (s *AnalysisService) cacheKey(records []any, cfg models.AnalysisConfig) (string, bool) {
	if !cfg.Now.IsZero() {
		return "", false
	}
	payload, err := json.Marshal(struct {
		Records  []any   `json:"records"`
		Interval float64 `json:"interval"`
		Misses   int     `json:"misses"`
	}{records, cfg.ExpectedIntervalSeconds, cfg.AllowedMisses})
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(payload)
	return "report:" + hex.EncodeToString(sum[:]), true
}
