package normalize

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/pulsestack/pulse-sentinel/internal/models"
	"github.com/pulsestack/pulse-sentinel/internal/utils"
)

const (
	// maxServiceNameLen bounds trimmed service identifiers.
	maxServiceNameLen = 100
	// maxFutureSkew is how far ahead of the reference time an event may sit
	// before it is treated as an invalid timestamp.
	maxFutureSkew = 24 * time.Hour
)

// Result carries the two outputs of normalising one raw batch.
type Result struct {
	Events    []models.HeartbeatEvent
	Discarded []models.DiscardedRecord
}

// DecodeBatch parses raw JSON into a record sequence. A top level that is not
// a JSON array is an InputShapeError; the contents are validated later, per
// record, by Normalize.
func DecodeBatch(data []byte) ([]any, error) {
	// A bare null unmarshals into a nil slice without error; it is not a
	// sequence and must not pass as an empty batch.
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, &models.InputShapeError{Detail: "expected a JSON array"}
	}
	var batch []any
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, &models.InputShapeError{Detail: "expected a JSON array"}
	}
	return batch, nil
}

// Normalize validates raw records into typed events. Individual bad records
// are discarded with a reason and never abort the batch. The now reference is
// only used to reject far-future timestamps; a zero now disables that check.
func Normalize(records []any, now time.Time) Result {
	res := Result{Events: make([]models.HeartbeatEvent, 0, len(records))}

	for i, raw := range records {
		record, ok := raw.(map[string]any)
		if !ok {
			res.Discarded = append(res.Discarded, models.DiscardedRecord{Index: i, Reason: models.ReasonMalformedRecord})
			continue
		}

		service := strings.TrimSpace(stringField(record, "service"))
		if service == "" {
			res.Discarded = append(res.Discarded, models.DiscardedRecord{Index: i, Reason: models.ReasonMissingService})
			continue
		}
		if len(service) > maxServiceNameLen {
			res.Discarded = append(res.Discarded, models.DiscardedRecord{Index: i, Reason: models.ReasonMalformedRecord})
			continue
		}

		ts, err := utils.ParseTimestamp(stringField(record, "timestamp"))
		if err != nil {
			res.Discarded = append(res.Discarded, models.DiscardedRecord{Index: i, Reason: models.ReasonInvalidTimestamp})
			continue
		}
		if !now.IsZero() && ts.After(now.Add(maxFutureSkew)) {
			res.Discarded = append(res.Discarded, models.DiscardedRecord{Index: i, Reason: models.ReasonInvalidTimestamp})
			continue
		}

		res.Events = append(res.Events, models.HeartbeatEvent{Service: service, Timestamp: ts})
	}

	return res
}

func stringField(record map[string]any, key string) string {
	value, ok := record[key].(string)
	if !ok {
		return ""
	}
	return value
}
