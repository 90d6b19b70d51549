package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulsestack/pulse-sentinel/internal/models"
)

const (
	// OutcomeSuccess labels completed analysis runs.
	OutcomeSuccess = "success"
	// OutcomeError labels runs rejected or failed before producing a report.
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse_sentinel",
			Name:      "analyses_total",
			Help:      "Total number of analysis runs handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pulse_sentinel",
			Name:      "analysis_seconds",
			Help:      "Analysis latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	eventsDiscardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse_sentinel",
			Name:      "events_discarded_total",
			Help:      "Raw records excluded from analysis, partitioned by reason.",
		},
		[]string{"reason"},
	)

	alertsEmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pulse_sentinel",
			Name:      "alerts_emitted_total",
			Help:      "Gap alerts emitted across all analysis runs.",
		},
	)
)

// Register attaches pulse-sentinel collectors to the supplied Prometheus
// registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		eventsDiscardedTotal,
		alertsEmittedTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// ObserveReport records discard and alert counters for a completed report.
func ObserveReport(rep models.AnalysisReport) {
	for _, discarded := range rep.Discarded {
		eventsDiscardedTotal.WithLabelValues(string(discarded.Reason)).Inc()
	}
	alertsEmittedTotal.Add(float64(rep.Summary.TotalAlerts))
}
