package models

import "time"

// AnalysisConfig controls one gap-detection run.
type AnalysisConfig struct {
	// ExpectedIntervalSeconds is how often a healthy service should emit.
	ExpectedIntervalSeconds float64 `json:"expected_interval_seconds"`
	// AllowedMisses is the number of consecutive expected intervals a
	// service may skip before its gap is flagged.
	AllowedMisses int `json:"allowed_misses"`
	// PageSize only shapes how callers paginate the alert list; it never
	// changes which alerts are produced.
	PageSize int `json:"page_size"`
	// Now, when non-zero, closes each timeline against this cutoff so a
	// service that stopped emitting before the end of the batch is flagged
	// with an open alert. Zero disables trailing-gap evaluation.
	Now time.Time `json:"-"`
}

// MaxGapSeconds returns the alert threshold derived from the config. A gap
// strictly greater than this value constitutes an alert.
func (c AnalysisConfig) MaxGapSeconds() float64 {
	return c.ExpectedIntervalSeconds * float64(c.AllowedMisses+1)
}

// Validate rejects configs that must never reach the analyzer. The bounds on
// interval and misses match the collector's accepted operating range.
func (c AnalysisConfig) Validate() error {
	if c.ExpectedIntervalSeconds <= 0 {
		return &ConfigError{Field: "expected_interval_seconds", Reason: "must be positive"}
	}
	if c.ExpectedIntervalSeconds > 3600 {
		return &ConfigError{Field: "expected_interval_seconds", Reason: "cannot exceed 3600 seconds"}
	}
	if c.AllowedMisses < 0 {
		return &ConfigError{Field: "allowed_misses", Reason: "cannot be negative"}
	}
	if c.AllowedMisses > 10 {
		return &ConfigError{Field: "allowed_misses", Reason: "cannot exceed 10"}
	}
	if c.PageSize <= 0 {
		return &ConfigError{Field: "page_size", Reason: "must be positive"}
	}
	return nil
}
