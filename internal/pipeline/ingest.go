package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"sales-report/internal/model"
	"sales-report/internal/store"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ------------------- Ingestion -------------------

// LoadRecords reads every sale line of source into memory. A missing file yields a
// *NotFoundError and any header or field that cannot be coerced yields a *ParseError.
func LoadRecords(ctx context.Context, source model.Source, logger *zap.Logger) ([]model.Record, error) {
	if _, err := os.Stat(source.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: source.Path}
		}
		return nil, fmt.Errorf("failed to stat input %s: %w", source.Path, err)
	}

	sourceType := ResolveSourceType(source)
	logger.Debug("starting ingestion",
		zap.String("path", source.Path),
		zap.String("type", sourceType))

	var (
		records []model.Record
		err     error
	)
	switch sourceType {
	case model.SourceCSV:
		records, err = ingestCSV(ctx, source.Path, ',')
	case model.SourceTSV:
		records, err = ingestCSV(ctx, source.Path, '\t')
	case model.SourceJSON:
		records, err = ingestJSON(ctx, source.Path)
	case model.SourceXLSX:
		records, err = ingestXLSX(ctx, source.Path, source.Sheet)
	case model.SourceSQLite:
		records, err = ingestSQLite(ctx, source.Path, source.Table)
	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("ingestion done",
		zap.String("path", source.Path),
		zap.Int("records", len(records)))
	return records, nil
}

// ResolveSourceType returns the explicit source type, or infers it from the file
// extension when the type is empty or "auto". Unknown extensions are read as CSV.
func ResolveSourceType(source model.Source) string {
	t := strings.ToLower(strings.TrimSpace(source.Type))
	if t != "" && t != model.SourceAuto {
		return t
	}

	switch strings.ToLower(filepath.Ext(source.Path)) {
	case ".tsv":
		return model.SourceTSV
	case ".json":
		return model.SourceJSON
	case ".xlsx":
		return model.SourceXLSX
	case ".db", ".sqlite", ".sqlite3":
		return model.SourceSQLite
	default:
		return model.SourceCSV
	}
}

// ------------------- CSV Ingestion -------------------
func ingestCSV(ctx context.Context, path string, delimiter rune) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	csvReader := csv.NewReader(file)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err == io.EOF {
		// No header at all: nothing to report
		return []model.Record{}, nil
	} else if err != nil {
		return nil, &ParseError{Source: path, Err: fmt.Errorf("failed to read CSV header: %w", err)}
	}

	idx, err := validateHeader(path, headers)
	if err != nil {
		return nil, err
	}

	records := []model.Record{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := csvReader.Read()
		if err == io.EOF {
			return records, nil
		} else if err != nil {
			return nil, &ParseError{Source: path, Err: fmt.Errorf("CSV read error: %w", err)}
		}

		line, _ := csvReader.FieldPos(0)
		rec, err := coerceRecord(path, line, idx, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// ------------------- JSON Ingestion -------------------

// ingestJSON accepts an array of objects, or a single object, keyed by the column names
func ingestJSON(ctx context.Context, path string) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber()

	var raw interface{}
	if err := decoder.Decode(&raw); err == io.EOF {
		return []model.Record{}, nil
	} else if err != nil {
		return nil, &ParseError{Source: path, Err: fmt.Errorf("failed to decode JSON: %w", err)}
	}

	var items []interface{}
	switch data := raw.(type) {
	case []interface{}:
		items = data
	case map[string]interface{}:
		items = []interface{}{data}
	default:
		return nil, &ParseError{Source: path, Err: errors.New("unexpected JSON structure")}
	}

	idx := columnIndex{}
	for i, col := range model.RequiredColumns {
		idx[col] = i
	}

	records := make([]model.Record, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, &ParseError{Source: path, Row: i + 1, Err: errors.New("element is not an object")}
		}

		row := make([]string, len(model.RequiredColumns))
		for j, col := range model.RequiredColumns {
			v, ok := obj[col]
			if !ok {
				return nil, &ParseError{Source: path, Row: i + 1, Err: fmt.Errorf("missing field %q", col)}
			}
			row[j] = jsonText(v)
		}

		rec, err := coerceRecord(path, i+1, idx, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func jsonText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ------------------- XLSX Ingestion -------------------
func ingestXLSX(ctx context.Context, path, sheet string) ([]model.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: fmt.Errorf("failed to open workbook: %w", err)}
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	// Raw values, so number formats such as #,##0.00 do not leak into the cells
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Source: path, Err: fmt.Errorf("failed to read sheet %q: %w", sheet, err)}
	}
	return recordsFromRows(ctx, path, rows)
}

// ------------------- SQLite Ingestion -------------------
func ingestSQLite(ctx context.Context, path, table string) ([]model.Record, error) {
	if table == "" {
		table = "sales"
	}

	db, err := store.OpenSalesDB(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	headers, rows, err := db.ReadTable(ctx, table)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}

	idx, err := validateHeader(path, headers)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := coerceRecord(path, i+1, idx, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// recordsFromRows handles grid sources whose first row is the header. Row numbers
// are 1-based with the header on row 1; empty rows are skipped.
func recordsFromRows(ctx context.Context, source string, rows [][]string) ([]model.Record, error) {
	if len(rows) == 0 {
		return []model.Record{}, nil
	}

	idx, err := validateHeader(source, rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}
		rec, err := coerceRecord(source, i+2, idx, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
