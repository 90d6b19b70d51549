package report

import (
	"sort"

	"github.com/pulsestack/pulse-sentinel/internal/models"
)

// Build shapes alerts and normaliser outputs into the final report. Alerts
// are ordered by service name ascending, then by gap start ascending; the
// ordering is stable, so repeated runs on identical input produce identical
// reports.
func Build(events []models.HeartbeatEvent, discarded []models.DiscardedRecord, alerts []models.Alert) models.AnalysisReport {
	sorted := append([]models.Alert(nil), alerts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Service != sorted[j].Service {
			return sorted[i].Service < sorted[j].Service
		}
		return sorted[i].GapStart.Before(sorted[j].GapStart)
	})

	stats := buildStats(events, sorted)

	return models.AnalysisReport{
		Alerts: sorted,
		Summary: models.Summary{
			TotalServices: len(stats),
			ValidEvents:   len(events),
			InvalidEvents: len(discarded),
			TotalAlerts:   len(sorted),
		},
		ServiceStats: stats,
		Discarded:    discarded,
	}
}

// Paginate returns the zero-based page over the report's alerts. A page index
// beyond the last page yields an empty slice, not an error.
func Paginate(rep models.AnalysisReport, page, size int) models.AlertPage {
	if size <= 0 {
		size = 1
	}
	total := len(rep.Alerts)
	pages := (total + size - 1) / size

	view := models.AlertPage{
		Page:        page,
		PageSize:    size,
		TotalAlerts: total,
		TotalPages:  pages,
		Alerts:      []models.Alert{},
	}
	if page < 0 || page >= pages {
		// Only the page immediately past the end still has a real
		// predecessor; anything further out has no neighbours at all.
		view.HasPrevious = page > 0 && page <= pages
		return view
	}

	start := page * size
	end := start + size
	if end > total {
		end = total
	}
	view.Alerts = append([]models.Alert(nil), rep.Alerts[start:end]...)
	view.HasNext = end < total
	view.HasPrevious = page > 0
	return view
}
