package engine

import (
	"log/slog"
	"math"
	"sort"

	"github.com/pulsestack/pulse-sentinel/internal/models"
)

// serviceTimeline holds one service's events prior to gap analysis.
type serviceTimeline struct {
	service string
	events  []models.HeartbeatEvent
}

// Analyzer computes gap alerts over normalised heartbeat batches. It holds no
// state between runs; every Detect call operates on its own local data.
type Analyzer struct {
	logger    *slog.Logger
	overrides *OverrideSet
}

// NewAnalyzer constructs an Analyzer. The override set may be nil.
func NewAnalyzer(logger *slog.Logger, overrides *OverrideSet) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger, overrides: overrides}
}

// Detect walks each service timeline in first-appearance order and emits an
// alert for every inter-arrival gap strictly greater than the effective
// tolerance, interval * (allowedMisses + 1) seconds. Services are processed
// independently; a single-event timeline produces no alert. When cfg.Now is
// non-zero the trailing gap between the last heartbeat and the cutoff is
// evaluated the same way and flagged as an open alert.
func (a *Analyzer) Detect(events []models.HeartbeatEvent, cfg models.AnalysisConfig) []models.Alert {
	alerts := make([]models.Alert, 0)

	for _, tl := range groupByService(events) {
		interval, allowed := a.overrides.Lookup(tl.service, cfg.ExpectedIntervalSeconds, cfg.AllowedMisses)
		maxGap := interval * float64(allowed+1)

		// Ties keep original input order; identical timestamps yield a
		// zero-length gap which can never exceed a positive threshold.
		sort.SliceStable(tl.events, func(i, j int) bool {
			return tl.events[i].Timestamp.Before(tl.events[j].Timestamp)
		})

		for i := 1; i < len(tl.events); i++ {
			prev, next := tl.events[i-1], tl.events[i]
			gap := next.Timestamp.Sub(prev.Timestamp).Seconds()
			if gap <= maxGap {
				continue
			}
			alerts = append(alerts, models.Alert{
				Service:     tl.service,
				GapStart:    prev.Timestamp,
				GapEnd:      next.Timestamp,
				GapSeconds:  gap,
				MissedCount: missedIntervals(gap, interval),
			})
		}

		if !cfg.Now.IsZero() {
			last := tl.events[len(tl.events)-1]
			gap := cfg.Now.UTC().Sub(last.Timestamp).Seconds()
			if gap > maxGap {
				alerts = append(alerts, models.Alert{
					Service:     tl.service,
					GapStart:    last.Timestamp,
					GapEnd:      cfg.Now.UTC(),
					GapSeconds:  gap,
					MissedCount: missedIntervals(gap, interval),
					Open:        true,
				})
			}
		}
	}

	return alerts
}

// missedIntervals counts whole expected-interval periods actually skipped
// inside a gap.
func missedIntervals(gapSeconds, intervalSeconds float64) int {
	missed := int(math.Floor(gapSeconds/intervalSeconds)) - 1
	if missed < 0 {
		missed = 0
	}
	return missed
}

// groupByService partitions events per service, preserving the order in which
// each service first appears so iteration stays deterministic.
func groupByService(events []models.HeartbeatEvent) []*serviceTimeline {
	index := make(map[string]*serviceTimeline)
	order := make([]*serviceTimeline, 0)
	for _, ev := range events {
		tl, ok := index[ev.Service]
		if !ok {
			tl = &serviceTimeline{service: ev.Service}
			index[ev.Service] = tl
			order = append(order, tl)
		}
		tl.events = append(tl.events, ev)
	}
	return order
}
