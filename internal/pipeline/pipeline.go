package pipeline

import (
	"context"
	"io"
	"time"

	"sales-report/internal/model"
	"sales-report/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunContext holds the values fixed at the start of a run: its ID, the report
// timestamp and the report path derived from it.
type RunContext struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	ReportPath  string    `json:"path"`
}

// NewRunContext stamps a new run at now (converted to UTC) writing under export.Dir
func NewRunContext(now time.Time, export model.Export) RunContext {
	now = now.UTC()
	return RunContext{
		RunID:       uuid.New().String(),
		GeneratedAt: now,
		ReportPath:  utils.NewOutputManager(export.Dir).ReportFilePath(now),
	}
}

// Options tune a run. Zero values are usable: no console echo, a no-op logger
// and the wall clock.
type Options struct {
	Console io.Writer
	Logger  *zap.Logger
	Now     func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Outcome is what a completed run produced
type Outcome struct {
	Run     RunContext          `json:"run"`
	Summary model.SummaryResult `json:"summary"`
	Export  model.ExportResult  `json:"export"`
	Metrics model.RunMetrics    `json:"metrics"`
}

// ------------------- Pipeline Runner -------------------

// Run loads the source, aggregates it and writes the report, one stage after another
func Run(ctx context.Context, job model.ReportJobSpec, opts Options) (out *Outcome, err error) {
	opts = opts.withDefaults()
	run := NewRunContext(opts.Now(), job.Export)
	logger := opts.Logger.With(zap.String("run_id", run.RunID))

	tracker := NewRunTracker(run.RunID, logger)
	defer func() {
		if err != nil {
			tracker.Fail(err)
		}
	}()

	logger.Info("starting report run",
		zap.String("input", job.Source.Path),
		zap.String("output_dir", job.Export.Dir))

	summary, err := buildSummary(ctx, job.Source, logger, tracker)
	if err != nil {
		return nil, err
	}

	// --- EXPORT STAGE ---
	tracker.StartStage(StageExport)
	exporter := NewExportManager(run.RunID, job.Export, opts.Console, logger)
	report := FormatReport(summary, run.GeneratedAt)
	result, err := exporter.ExportReport(ctx, report, run.ReportPath)
	if err != nil {
		return nil, err
	}
	tracker.EndStage(StageExport, int64(result.Bytes))

	tracker.Complete()
	return &Outcome{
		Run:     run,
		Summary: summary,
		Export:  result,
		Metrics: tracker.Metrics(),
	}, nil
}

// Summarize loads the source and aggregates it without writing anything
func Summarize(ctx context.Context, source model.Source, logger *zap.Logger) (model.SummaryResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tracker := NewRunTracker(uuid.New().String(), logger)
	summary, err := buildSummary(ctx, source, logger, tracker)
	if err != nil {
		tracker.Fail(err)
		return model.SummaryResult{}, err
	}
	tracker.Complete()
	return summary, nil
}

func buildSummary(ctx context.Context, source model.Source, logger *zap.Logger, tracker *RunTracker) (model.SummaryResult, error) {
	// --- INGESTION STAGE ---
	tracker.StartStage(StageIngestion)
	records, err := LoadRecords(ctx, source, logger)
	if err != nil {
		return model.SummaryResult{}, err
	}
	tracker.EndStage(StageIngestion, int64(len(records)))

	// --- AGGREGATION STAGE ---
	tracker.StartStage(StageAggregation)
	summary := AggregateRecords(records)
	tracker.EndStage(StageAggregation, int64(len(summary.ByArtisan)+len(summary.ByProduct)))

	return summary, nil
}
