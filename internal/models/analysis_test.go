package models

import (
	"errors"
	"testing"
)

func TestMaxGapSeconds(t *testing.T) {
	cases := []struct {
		interval float64
		misses   int
		want     float64
	}{
		{60, 1, 120},
		{60, 0, 60},
		{30, 3, 120},
		{0.5, 9, 5},
	}
	for _, tc := range cases {
		cfg := AnalysisConfig{ExpectedIntervalSeconds: tc.interval, AllowedMisses: tc.misses, PageSize: 1}
		if got := cfg.MaxGapSeconds(); got != tc.want {
			t.Fatalf("MaxGapSeconds(%v, %d) = %v, want %v", tc.interval, tc.misses, got, tc.want)
		}
	}
}

func TestAnalysisConfigValidate(t *testing.T) {
	valid := AnalysisConfig{ExpectedIntervalSeconds: 60, AllowedMisses: 0, PageSize: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := []struct {
		name  string
		cfg   AnalysisConfig
		field string
	}{
		{"zero interval", AnalysisConfig{AllowedMisses: 1, PageSize: 1}, "expected_interval_seconds"},
		{"huge interval", AnalysisConfig{ExpectedIntervalSeconds: 3601, AllowedMisses: 1, PageSize: 1}, "expected_interval_seconds"},
		{"negative misses", AnalysisConfig{ExpectedIntervalSeconds: 60, AllowedMisses: -1, PageSize: 1}, "allowed_misses"},
		{"too many misses", AnalysisConfig{ExpectedIntervalSeconds: 60, AllowedMisses: 11, PageSize: 1}, "allowed_misses"},
		{"zero page size", AnalysisConfig{ExpectedIntervalSeconds: 60, AllowedMisses: 1}, "page_size"},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected ConfigError, got %v", tc.name, err)
		}
		if cfgErr.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", tc.name, tc.field, cfgErr.Field)
		}
	}
}
