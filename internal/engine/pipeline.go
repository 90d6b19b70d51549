package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pulsestack/pulse-sentinel/internal/models"
	"github.com/pulsestack/pulse-sentinel/internal/normalize"
	"github.com/pulsestack/pulse-sentinel/internal/report"
)

// Pipeline wires normalisation, gap analysis, and report shaping into the
// single analysis operation exposed to callers.
type Pipeline struct {
	logger   *slog.Logger
	analyzer *Analyzer
}

// NewPipeline constructs a Pipeline around the supplied analyzer.
func NewPipeline(logger *slog.Logger, analyzer *Analyzer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if analyzer == nil {
		analyzer = NewAnalyzer(logger, nil)
	}
	return &Pipeline{logger: logger, analyzer: analyzer}
}

// Run executes one analysis over a raw record batch and returns the report by
// value; the pipeline retains no reference to it. The only fatal outcome is
// an invalid config; bad records are discarded and counted, never fatal.
func (p *Pipeline) Run(records []any, cfg models.AnalysisConfig) (models.AnalysisReport, error) {
	if err := cfg.Validate(); err != nil {
		return models.AnalysisReport{}, err
	}

	refNow := cfg.Now
	if refNow.IsZero() {
		refNow = time.Now().UTC()
	}

	res := normalize.Normalize(records, refNow)
	alerts := p.analyzer.Detect(res.Events, cfg)

	rep := report.Build(res.Events, res.Discarded, alerts)
	rep.AnalysisID = uuid.NewString()
	rep.CreatedAt = time.Now().UTC()

	p.logger.Debug("analysis complete",
		slog.String("analysis_id", rep.AnalysisID),
		slog.Int("valid_events", rep.Summary.ValidEvents),
		slog.Int("invalid_events", rep.Summary.InvalidEvents),
		slog.Int("alerts", rep.Summary.TotalAlerts),
	)
	return rep, nil
}
