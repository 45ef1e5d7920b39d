package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"sales-report/internal/model"
	"sales-report/internal/pipeline"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AggregateRowResponse is one ranked group with money rendered to two decimals
type AggregateRowResponse struct {
	Key       string `json:"key"`
	UnitsSold int64  `json:"units_sold"`
	Revenue   string `json:"revenue"`
}

// SummaryResponse is the JSON form of a summary
type SummaryResponse struct {
	RunID        string                 `json:"run_id"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Currency     string                 `json:"currency"`
	TotalUnits   int64                  `json:"total_units"`
	TotalRevenue string                 `json:"total_revenue"`
	ByArtisan    []AggregateRowResponse `json:"by_artisan"`
	ByProduct    []AggregateRowResponse `json:"by_product"`
}

// ReportResponse is returned after a report file has been written
type ReportResponse struct {
	Path    string          `json:"path"`
	Bytes   int             `json:"bytes"`
	Summary SummaryResponse `json:"summary"`
}

// ErrorResponse carries a human-readable failure
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"` // not_found, parse_error, io_error, internal
}

// ReportHandler serves summaries and reports for a fixed job
type ReportHandler struct {
	job        model.ReportJobSpec
	runTimeout time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportHandler creates a handler running job with each request bounded by runTimeout
func NewReportHandler(job model.ReportJobSpec, runTimeout time.Duration, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{
		job:        job,
		runTimeout: runTimeout,
		logger:     logger,
		now:        time.Now,
	}
}

// Health reports liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *ReportHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSummary aggregates the configured input without writing a report
// @Summary Get sales summary
// @Description Load the configured sales input and return totals and ranked tables
// @Tags reports
// @Produce json
// @Success 200 {object} SummaryResponse
// @Failure 404 {object} ErrorResponse "Input file not found"
// @Failure 422 {object} ErrorResponse "Malformed input"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /summary [get]
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.runTimeout)
	defer cancel()

	summary, err := pipeline.Summarize(ctx, h.job.Source, h.logger)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSummaryResponse(uuid.New().String(), h.now().UTC(), summary))
}

// CreateReport runs the full pipeline and writes a report file
// @Summary Generate a report
// @Description Load, aggregate and write a timestamped text report to the output directory
// @Tags reports
// @Produce json
// @Success 201 {object} ReportResponse
// @Failure 404 {object} ErrorResponse "Input file not found"
// @Failure 422 {object} ErrorResponse "Malformed input"
// @Failure 500 {object} ErrorResponse "Write failure or internal error"
// @Router /reports [post]
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.runTimeout)
	defer cancel()

	out, err := pipeline.Run(ctx, h.job, pipeline.Options{Logger: h.logger, Now: h.now})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ReportResponse{
		Path:    out.Export.Path,
		Bytes:   out.Export.Bytes,
		Summary: newSummaryResponse(out.Run.RunID, out.Run.GeneratedAt, out.Summary),
	})
}

func newSummaryResponse(runID string, generatedAt time.Time, s model.SummaryResult) SummaryResponse {
	return SummaryResponse{
		RunID:        runID,
		GeneratedAt:  generatedAt,
		Currency:     "INR",
		TotalUnits:   s.TotalUnits,
		TotalRevenue: s.TotalRevenue.StringFixed(2),
		ByArtisan:    newRowResponses(s.ByArtisan),
		ByProduct:    newRowResponses(s.ByProduct),
	}
}

func newRowResponses(rows []model.AggregateRow) []AggregateRowResponse {
	out := make([]AggregateRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, AggregateRowResponse{
			Key:       row.Key,
			UnitsSold: row.UnitsSold,
			Revenue:   row.Revenue.StringFixed(2),
		})
	}
	return out
}

func (h *ReportHandler) writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, pipeline.ErrParse):
		status, kind = http.StatusUnprocessableEntity, "parse_error"
	case errors.Is(err, pipeline.ErrIO):
		kind = "io_error"
	}

	h.logger.Warn("request failed", zap.String("kind", kind), zap.Error(err))
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
