package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ReportTimestampLayout is the UTC stamp embedded in report file names
const ReportTimestampLayout = "20060102T150405Z"

// OutputManager handles output file organization and path management
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// ReportFilePath returns the report path for a run started at ts.
// It does not touch the filesystem.
func (om *OutputManager) ReportFilePath(ts time.Time) string {
	name := fmt.Sprintf("sales_report_%s.txt", ts.UTC().Format(ReportTimestampLayout))
	return filepath.Join(om.BaseOutputDir, name)
}

// EnsureOutputDirExists ensures the base output directory exists
func (om *OutputManager) EnsureOutputDirExists() error {
	return os.MkdirAll(om.BaseOutputDir, 0755)
}
