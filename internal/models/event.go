package models

import "time"

// HeartbeatEvent is a validated liveness signal from a monitored service.
// Timestamps are always normalised to UTC at the normaliser boundary.
type HeartbeatEvent struct {
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// DiscardReason enumerates why a raw record was excluded from analysis.
type DiscardReason string

const (
	ReasonMissingService   DiscardReason = "missing service"
	ReasonInvalidTimestamp DiscardReason = "invalid timestamp"
	ReasonMalformedRecord  DiscardReason = "malformed record"
)

// DiscardedRecord identifies a rejected input record by its position in the
// original batch.
type DiscardedRecord struct {
	Index  int           `json:"index"`
	Reason DiscardReason `json:"reason"`
}
