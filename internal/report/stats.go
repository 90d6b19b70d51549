package report

import (
	"sort"

	"github.com/pulsestack/pulse-sentinel/internal/models"
)

// buildStats aggregates per-service event and alert counts, ordered by
// service name to match the alert ordering.
func buildStats(events []models.HeartbeatEvent, alerts []models.Alert) []models.ServiceStats {
	index := make(map[string]*models.ServiceStats)

	ensure := func(service string) *models.ServiceStats {
		stats, ok := index[service]
		if !ok {
			stats = &models.ServiceStats{Service: service}
			index[service] = stats
		}
		return stats
	}

	for _, ev := range events {
		ensure(ev.Service).Events++
	}
	for _, alert := range alerts {
		ensure(alert.Service).Alerts++
	}

	out := make([]models.ServiceStats, 0, len(index))
	for _, stats := range index {
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}
