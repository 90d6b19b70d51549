package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pulsestack/pulse-sentinel/internal/config"
	"github.com/pulsestack/pulse-sentinel/internal/models"
	"github.com/pulsestack/pulse-sentinel/internal/normalize"
	"github.com/pulsestack/pulse-sentinel/internal/report"
	"github.com/pulsestack/pulse-sentinel/internal/services"
)

// Handler exposes the analysis API over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *services.AnalysisService
	defaults config.AnalysisConfig
	started  time.Time
}

// NewHandler constructs the HTTP handler set. The defaults fill request
// fields the caller leaves unset.
func NewHandler(logger *slog.Logger, service *services.AnalysisService, defaults config.AnalysisConfig) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		defaults: defaults,
		started:  time.Now().UTC(),
	}
}

// Register mounts the API routes on the router.
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/api/v1/analyze", h.Analyze).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/health", h.Health).Methods(http.MethodGet)
}

// AnalyzeRequest is the JSON body for POST /api/v1/analyze. Threshold fields
// left unset fall back to the server defaults; page is zero-based.
type AnalyzeRequest struct {
	Events                  json.RawMessage `json:"events"`
	ExpectedIntervalSeconds *float64        `json:"expected_interval_seconds"`
	AllowedMisses           *int            `json:"allowed_misses"`
	Page                    int             `json:"page"`
	PageSize                *int            `json:"page_size"`
}

// PaginationMeta describes the returned alert page.
type PaginationMeta struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalAlerts int  `json:"total_alerts"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// AnalyzeResponse pairs the requested alert page with the run summary.
type AnalyzeResponse struct {
	AnalysisID   string                   `json:"analysis_id"`
	Alerts       []models.Alert           `json:"alerts"`
	Pagination   PaginationMeta           `json:"pagination"`
	Summary      models.Summary           `json:"summary"`
	ServiceStats []models.ServiceStats    `json:"service_stats,omitempty"`
	Discarded    []models.DiscardedRecord `json:"discarded,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Analyze runs one gap analysis over the posted event batch and returns the
// requested page of alerts.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Events) == 0 {
		h.writeError(w, http.StatusBadRequest, "events are required")
		return
	}

	records, err := normalize.DecodeBatch(req.Events)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := models.AnalysisConfig{
		ExpectedIntervalSeconds: h.defaults.IntervalSeconds,
		AllowedMisses:           h.defaults.AllowedMisses,
		PageSize:                h.defaults.PageSize,
	}
	if req.ExpectedIntervalSeconds != nil {
		cfg.ExpectedIntervalSeconds = *req.ExpectedIntervalSeconds
	}
	if req.AllowedMisses != nil {
		cfg.AllowedMisses = *req.AllowedMisses
	}
	if req.PageSize != nil {
		cfg.PageSize = *req.PageSize
	}
	if h.defaults.TrailingCutoff {
		cfg.Now = time.Now().UTC()
	}

	rep, err := h.service.Analyze(r.Context(), records, cfg)
	if err != nil {
		var cfgErr *models.ConfigError
		var shapeErr *models.InputShapeError
		switch {
		case errors.As(err, &cfgErr):
			h.writeError(w, http.StatusBadRequest, cfgErr.Error())
		case errors.As(err, &shapeErr):
			h.writeError(w, http.StatusBadRequest, shapeErr.Error())
		default:
			h.logger.Error("analysis request failed", slog.Any("error", err))
			h.writeError(w, http.StatusInternalServerError, "analysis failed")
		}
		return
	}

	page := report.Paginate(rep, req.Page, cfg.PageSize)
	h.writeJSON(w, http.StatusOK, AnalyzeResponse{
		AnalysisID: rep.AnalysisID,
		Alerts:     page.Alerts,
		Pagination: PaginationMeta{
			Page:        page.Page,
			PageSize:    page.PageSize,
			TotalAlerts: page.TotalAlerts,
			TotalPages:  page.TotalPages,
			HasNext:     page.HasNext,
			HasPrevious: page.HasPrevious,
		},
		Summary:      rep.Summary,
		ServiceStats: rep.ServiceStats,
		Discarded:    rep.Discarded,
	})
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"time":           time.Now().UTC(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("response encode failed", slog.Any("error", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}
