package model

import "time"

// ExportResult represents the result of writing a report
type ExportResult struct {
	Type       string    `json:"type"` // "text"
	Path       string    `json:"path"` // file path
	Bytes      int       `json:"bytes"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	ExportedAt time.Time `json:"exported_at"`
}
