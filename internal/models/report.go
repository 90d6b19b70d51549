package models

import "time"

// Alert reports a heartbeat gap exceeding the configured tolerance.
type Alert struct {
	Service     string    `json:"service"`
	GapStart    time.Time `json:"gap_start"`
	GapEnd      time.Time `json:"gap_end"`
	GapSeconds  float64   `json:"gap_seconds"`
	MissedCount int       `json:"missed_count"`
	// Open marks a trailing gap measured against the analysis cutoff
	// rather than a later heartbeat.
	Open bool `json:"open,omitempty"`
}

// Summary carries the aggregate counts for one analysis run.
type Summary struct {
	TotalServices int `json:"total_services"`
	ValidEvents   int `json:"valid_events"`
	InvalidEvents int `json:"invalid_events"`
	TotalAlerts   int `json:"total_alerts"`
}

// ServiceStats aggregates per-service counts for display.
type ServiceStats struct {
	Service string `json:"service"`
	Events  int    `json:"events"`
	Alerts  int    `json:"alerts"`
}

// AnalysisReport is the full output of one analysis run. Alerts are ordered
// by service name, then by gap start; the order is stable across repeated
// runs on identical input.
type AnalysisReport struct {
	AnalysisID   string            `json:"analysis_id"`
	Alerts       []Alert           `json:"alerts"`
	Summary      Summary           `json:"summary"`
	ServiceStats []ServiceStats    `json:"service_stats,omitempty"`
	Discarded    []DiscardedRecord `json:"discarded,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// AlertPage is a zero-based pagination view over a report's alerts.
type AlertPage struct {
	Page        int     `json:"page"`
	PageSize    int     `json:"page_size"`
	TotalAlerts int     `json:"total_alerts"`
	TotalPages  int     `json:"total_pages"`
	Alerts      []Alert `json:"alerts"`
	HasNext     bool    `json:"has_next"`
	HasPrevious bool    `json:"has_previous"`
}
