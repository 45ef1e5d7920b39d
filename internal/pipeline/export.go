package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"sales-report/internal/model"
	"sales-report/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	currency = "INR"
	// GeneratedAtLayout is the header timestamp to the second, always rendered in UTC
	GeneratedAtLayout = "2006-01-02T15:04:05"
)

// FormatGeneratedAt renders t in UTC as ISO-8601. A microsecond fraction is
// appended only when it is non-zero.
func FormatGeneratedAt(t time.Time) string {
	t = t.UTC()
	s := t.Format(GeneratedAtLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

// FormatReport renders summary as the plain-text report. Lines are joined with "\n"
// and there is no trailing newline.
func FormatReport(summary model.SummaryResult, generatedAt time.Time) string {
	lines := []string{
		fmt.Sprintf("Sales Summary Report - generated at %s UTC", FormatGeneratedAt(generatedAt)),
		strings.Repeat("=", 60),
		fmt.Sprintf("Total units sold: %d", summary.TotalUnits),
		fmt.Sprintf("Total revenue: %s", formatMoney(summary.TotalRevenue)),
		"",
		"Revenue by artisan:",
	}
	lines = append(lines, formatRows(summary.ByArtisan)...)
	lines = append(lines, "", "Revenue by product:")
	lines = append(lines, formatRows(summary.ByProduct)...)

	return strings.Join(lines, "\n")
}

func formatRows(rows []model.AggregateRow) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, fmt.Sprintf(" - %s: units=%d, revenue=%s", row.Key, row.UnitsSold, formatMoney(row.Revenue)))
	}
	return out
}

func formatMoney(d decimal.Decimal) string {
	return currency + " " + d.StringFixed(2)
}

// ExportManager writes the text report for one run and echoes it to a console
type ExportManager struct {
	RunID   string
	Output  *utils.OutputManager
	Console io.Writer // nil disables the echo
	logger  *zap.Logger
}

// NewExportManager creates an export manager writing under spec.Dir
func NewExportManager(runID string, spec model.Export, console io.Writer, logger *zap.Logger) *ExportManager {
	return &ExportManager{
		RunID:   runID,
		Output:  utils.NewOutputManager(spec.Dir),
		Console: console,
		logger:  logger,
	}
}

// ExportReport echoes the report, creates the output directory if needed and writes
// the report to path. Filesystem failures are returned as *IOError.
func (em *ExportManager) ExportReport(ctx context.Context, report, path string) (model.ExportResult, error) {
	result := model.ExportResult{
		Type: "text",
		Path: path,
	}

	if em.Console != nil {
		fmt.Fprintln(em.Console, report)
	}

	if err := ctx.Err(); err != nil {
		return em.failed(result, err), err
	}

	if err := em.Output.EnsureOutputDirExists(); err != nil {
		ioErr := &IOError{Op: "create directory", Path: em.Output.BaseOutputDir, Err: err}
		return em.failed(result, ioErr), ioErr
	}

	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		ioErr := &IOError{Op: "write report", Path: path, Err: err}
		return em.failed(result, ioErr), ioErr
	}

	result.Bytes = len(report)
	result.Success = true
	result.ExportedAt = time.Now().UTC()

	if em.Console != nil {
		fmt.Fprintf(em.Console, "\nSaved report to: %s\n", path)
	}
	em.logger.Info("report exported",
		zap.String("run_id", em.RunID),
		zap.String("path", path),
		zap.Int("bytes", result.Bytes))

	return result, nil
}

func (em *ExportManager) failed(result model.ExportResult, err error) model.ExportResult {
	result.Error = err.Error()
	result.ExportedAt = time.Now().UTC()
	em.logger.Error("report export failed",
		zap.String("run_id", em.RunID),
		zap.String("path", result.Path),
		zap.Error(err))
	return result
}
