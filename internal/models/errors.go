package models

import "fmt"

// ConfigError reports an invalid AnalysisConfig value. It is fatal: analysis
// never starts with a bad config, and callers should re-validate before
// retrying.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// InputShapeError reports a top-level input that is not a sequence of
// heartbeat records at all. Unlike per-record failures it aborts the run.
type InputShapeError struct {
	Detail string
}

func (e *InputShapeError) Error() string {
	if e.Detail == "" {
		return "input is not a sequence of heartbeat records"
	}
	return "input is not a sequence of heartbeat records: " + e.Detail
}
