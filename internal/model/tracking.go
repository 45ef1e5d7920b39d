package model

import "time"

// StageMetrics represents metrics for a specific run stage
type StageMetrics struct {
	StageName        string        `json:"stage_name"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int64         `json:"records_processed"`
	Status           string        `json:"status"` // "running", "completed", "failed"
}

// RunMetrics represents overall metrics for one report run
type RunMetrics struct {
	RunID        string                  `json:"run_id"`
	StartTime    time.Time               `json:"start_time"`
	EndTime      time.Time               `json:"end_time"`
	Duration     time.Duration           `json:"duration"`
	Status       string                  `json:"status"`
	Stages       map[string]StageMetrics `json:"stages"`
	ErrorMessage string                  `json:"error_message,omitempty"`
}
