package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sales-report/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = `artisan,product,units_sold,unit_price
A,X,2,10.0
B,X,1,5.0
A,Y,1,3.0
`

// setupWorkspace points the CLI at a temp input file and output directory
func setupWorkspace(t *testing.T, csvContent string) (input, outDir string) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	input = filepath.Join(dir, "sales_data.csv")
	outDir = filepath.Join(dir, "report")
	if csvContent != "" {
		require.NoError(t, os.WriteFile(input, []byte(csvContent), 0644))
	}
	t.Setenv("SALES_REPORT_INPUT_PATH", input)
	t.Setenv("SALES_REPORT_OUTPUT_DIR", outDir)
	t.Setenv("SALES_REPORT_LOG_LEVEL", "error")
	return input, outDir
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	// cobra falls back to os.Args when given a nil slice
	code := execute(context.Background(), append([]string{}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecuteSuccess(t *testing.T) {
	_, outDir := setupWorkspace(t, salesCSV)

	code, stdout, stderr := run()
	require.Equal(t, exitOK, code, stderr)

	assert.True(t, strings.HasPrefix(stdout, "Sales Summary Report - generated at "))
	assert.Contains(t, stdout, "Total units sold: 4")
	assert.Contains(t, stdout, " - A: units=3, revenue=INR 23.00")
	assert.Contains(t, stdout, "\n\nSaved report to: "+outDir)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^sales_report_\d{8}T\d{6}Z\.txt$`, entries[0].Name())

	written, err := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, string(written)+"\n"), "stdout must echo the saved report")
}

func TestExecuteMissingInput(t *testing.T) {
	input, outDir := setupWorkspace(t, "")

	code, stdout, stderr := run()

	assert.Equal(t, exitNotFound, code)
	assert.Equal(t, fmt.Sprintf("ERROR: input file %s not found\n", input), stderr)
	assert.Empty(t, stdout)
	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteMalformedInput(t *testing.T) {
	_, outDir := setupWorkspace(t, "artisan,product,units_sold,unit_price\nA,X,2,ten\n")

	code, _, stderr := run()

	assert.Equal(t, exitFailure, code)
	assert.True(t, strings.HasPrefix(stderr, "UNEXPECTED ERROR: "), stderr)
	assert.Contains(t, stderr, "unit_price")
	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteInvalidConfig(t *testing.T) {
	setupWorkspace(t, salesCSV)
	t.Setenv("SALES_REPORT_LOG_LEVEL", "shouty")

	code, _, stderr := run()

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "invalid log level")
}

func TestExecuteMissingConfigFile(t *testing.T) {
	setupWorkspace(t, salesCSV)

	code, _, stderr := run("--config", "nope.yaml")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "UNEXPECTED ERROR")
}

func TestExecuteVersion(t *testing.T) {
	setupWorkspace(t, "")

	code, stdout, _ := run("version")

	assert.Equal(t, exitOK, code)
	assert.Equal(t, "sales-report dev\n", stdout)
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"not found", &pipeline.NotFoundError{Path: "x.csv"}, exitNotFound},
		{"wrapped not found", fmt.Errorf("run: %w", &pipeline.NotFoundError{Path: "x.csv"}), exitNotFound},
		{"parse", &pipeline.ParseError{Source: "x.csv", Row: 2, Column: "units_sold"}, exitFailure},
		{"io", &pipeline.IOError{Op: "write report", Path: "r.txt", Err: errors.New("disk full")}, exitFailure},
		{"other", errors.New("boom"), exitFailure},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, exitCode(tc.err), tc.name)
	}
}
