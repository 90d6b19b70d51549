package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pulsestack/pulse-sentinel/internal/models"
)

func rawBatch() []any {
	return []any{
		map[string]any{"service": "A", "timestamp": "2025-08-04T10:00:00Z"},
		map[string]any{"service": "A", "timestamp": "2025-08-04T10:01:00Z"},
		map[string]any{"service": "A", "timestamp": "2025-08-04T10:05:00Z"},
		map[string]any{"service": "B", "timestamp": "2025-08-04T10:00:00Z"},
		map[string]any{"timestamp": "2025-08-04T10:00:00Z"},
		"garbage",
	}
}

func TestPipelineRun(t *testing.T) {
	pipeline := NewPipeline(nil, nil)
	cfg := models.AnalysisConfig{ExpectedIntervalSeconds: 60, AllowedMisses: 1, PageSize: 10}

	rep, err := pipeline.Run(rawBatch(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.AnalysisID == "" {
		t.Fatalf("expected an analysis id")
	}
	if rep.Summary.ValidEvents != 4 || rep.Summary.InvalidEvents != 2 {
		t.Fatalf("unexpected summary counts: %+v", rep.Summary)
	}
	if rep.Summary.TotalServices != 2 {
		t.Fatalf("expected 2 services, got %d", rep.Summary.TotalServices)
	}
	if rep.Summary.TotalAlerts != 1 || rep.Alerts[0].Service != "A" {
		t.Fatalf("unexpected alerts: %+v", rep.Alerts)
	}
}

func TestPipelineRejectsInvalidConfig(t *testing.T) {
	pipeline := NewPipeline(nil, nil)

	bad := []models.AnalysisConfig{
		{ExpectedIntervalSeconds: 0, AllowedMisses: 1, PageSize: 10},
		{ExpectedIntervalSeconds: -5, AllowedMisses: 1, PageSize: 10},
		{ExpectedIntervalSeconds: 7200, AllowedMisses: 1, PageSize: 10},
		{ExpectedIntervalSeconds: 60, AllowedMisses: -1, PageSize: 10},
		{ExpectedIntervalSeconds: 60, AllowedMisses: 11, PageSize: 10},
		{ExpectedIntervalSeconds: 60, AllowedMisses: 1, PageSize: 0},
	}
	for _, cfg := range bad {
		_, err := pipeline.Run(rawBatch(), cfg)
		var cfgErr *models.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError for %+v, got %v", cfg, err)
		}
	}
}

func TestPipelineIdempotent(t *testing.T) {
	pipeline := NewPipeline(nil, nil)
	cfg := models.AnalysisConfig{ExpectedIntervalSeconds: 60, AllowedMisses: 1, PageSize: 10}

	first, err := pipeline.Run(rawBatch(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := pipeline.Run(rawBatch(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Summary != second.Summary {
		t.Fatalf("summaries differ: %+v vs %+v", first.Summary, second.Summary)
	}
	if len(first.Alerts) != len(second.Alerts) {
		t.Fatalf("alert counts differ")
	}
	for i := range first.Alerts {
		if first.Alerts[i] != second.Alerts[i] {
			t.Fatalf("alert %d differs: %+v vs %+v", i, first.Alerts[i], second.Alerts[i])
		}
	}
}

func TestPipelineOrderInsensitive(t *testing.T) {
	pipeline := NewPipeline(nil, nil)
	cfg := models.AnalysisConfig{ExpectedIntervalSeconds: 60, AllowedMisses: 1, PageSize: 10}

	baseline, err := pipeline.Run(rawBatch(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 5; run++ {
		shuffled := rawBatch()
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		rep, err := pipeline.Run(shuffled, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rep.Alerts) != len(baseline.Alerts) {
			t.Fatalf("shuffled input changed the alert count")
		}
		for i := range rep.Alerts {
			if rep.Alerts[i] != baseline.Alerts[i] {
				t.Fatalf("shuffled input changed alert %d: %+v vs %+v", i, rep.Alerts[i], baseline.Alerts[i])
			}
		}
	}
}
