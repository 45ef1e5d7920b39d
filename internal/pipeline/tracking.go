package pipeline

import (
	"time"

	"sales-report/internal/model"

	"go.uber.org/zap"
)

// Stage names recorded by the tracker
const (
	StageIngestion   = "ingestion"
	StageAggregation = "aggregation"
	StageExport      = "export"
)

// RunTracker records stage timings and counts for a single run
type RunTracker struct {
	metrics model.RunMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewRunTracker creates a tracker for runID
func NewRunTracker(runID string, logger *zap.Logger) *RunTracker {
	return &RunTracker{
		metrics: model.RunMetrics{
			RunID:     runID,
			StartTime: time.Now(),
			Status:    "running",
			Stages:    make(map[string]model.StageMetrics),
		},
		logger: logger,
		now:    time.Now,
	}
}

// StartStage marks the start of a stage
func (rt *RunTracker) StartStage(stage string) {
	rt.metrics.Stages[stage] = model.StageMetrics{
		StageName: stage,
		StartTime: rt.now(),
		Status:    "running",
	}
	rt.logger.Debug("stage started", zap.String("run_id", rt.metrics.RunID), zap.String("stage", stage))
}

// EndStage marks the end of a stage and the number of items it produced
func (rt *RunTracker) EndStage(stage string, recordsProcessed int64) {
	sm := rt.metrics.Stages[stage]
	sm.StageName = stage
	sm.EndTime = rt.now()
	sm.Duration = sm.EndTime.Sub(sm.StartTime)
	sm.RecordsProcessed = recordsProcessed
	sm.Status = "completed"
	rt.metrics.Stages[stage] = sm

	rt.logger.Debug("stage completed",
		zap.String("run_id", rt.metrics.RunID),
		zap.String("stage", stage),
		zap.Int64("records", recordsProcessed),
		zap.Duration("duration", sm.Duration))
}

// Complete marks the run as completed
func (rt *RunTracker) Complete() {
	rt.finish("completed")
	rt.logger.Info("run completed",
		zap.String("run_id", rt.metrics.RunID),
		zap.Duration("duration", rt.metrics.Duration),
		zap.Int64("records", rt.metrics.Stages[StageIngestion].RecordsProcessed))
}

// Fail marks the run and any stage still running as failed
func (rt *RunTracker) Fail(err error) {
	for name, sm := range rt.metrics.Stages {
		if sm.Status == "running" {
			sm.EndTime = rt.now()
			sm.Duration = sm.EndTime.Sub(sm.StartTime)
			sm.Status = "failed"
			rt.metrics.Stages[name] = sm
		}
	}
	rt.metrics.ErrorMessage = err.Error()
	rt.finish("failed")
	rt.logger.Warn("run failed",
		zap.String("run_id", rt.metrics.RunID),
		zap.Duration("duration", rt.metrics.Duration),
		zap.Error(err))
}

// Metrics returns a copy of the current metrics
func (rt *RunTracker) Metrics() model.RunMetrics {
	m := rt.metrics
	m.Stages = make(map[string]model.StageMetrics, len(rt.metrics.Stages))
	for k, v := range rt.metrics.Stages {
		m.Stages[k] = v
	}
	return m
}

func (rt *RunTracker) finish(status string) {
	rt.metrics.EndTime = rt.now()
	rt.metrics.Duration = rt.metrics.EndTime.Sub(rt.metrics.StartTime)
	rt.metrics.Status = status
}
