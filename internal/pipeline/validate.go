package pipeline

import (
	"errors"
	"strconv"
	"strings"

	"sales-report/internal/model"

	"github.com/shopspring/decimal"
)

// columnIndex maps each required column to its position in a row
type columnIndex map[string]int

// cleanHeader trims whitespace and removes quotes and a leading byte order mark
func cleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, `"`, "")
}

// validateHeader checks that every required column is present. Extra columns are ignored
// and the first occurrence of a duplicated name wins.
func validateHeader(source string, headers []string) (columnIndex, error) {
	idx := make(columnIndex, len(model.RequiredColumns))
	for i, h := range headers {
		name := cleanHeader(h)
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}

	for _, field := range model.RequiredColumns {
		if _, ok := idx[field]; !ok {
			return nil, &ParseError{Source: source, Column: field}
		}
	}
	return idx, nil
}

// value returns the cell for column, or "" when the row is short
func (ci columnIndex) value(row []string, column string) string {
	i := ci[column]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// coerceRecord turns one raw row into a typed record. Only the two numeric
// columns are coerced; no other validation is applied.
func coerceRecord(source string, rowNum int, idx columnIndex, row []string) (model.Record, error) {
	rec := model.Record{
		Artisan: idx.value(row, model.ColumnArtisan),
		Product: idx.value(row, model.ColumnProduct),
	}

	rawUnits := idx.value(row, model.ColumnUnitsSold)
	units, err := strconv.ParseInt(strings.TrimSpace(rawUnits), 10, 64)
	if err != nil {
		return model.Record{}, &ParseError{
			Source: source, Row: rowNum, Column: model.ColumnUnitsSold, Value: rawUnits,
			Err: unwrapNumError(err),
		}
	}
	rec.UnitsSold = units

	rawPrice := idx.value(row, model.ColumnUnitPrice)
	price, err := decimal.NewFromString(strings.TrimSpace(rawPrice))
	if err != nil {
		return model.Record{}, &ParseError{
			Source: source, Row: rowNum, Column: model.ColumnUnitPrice, Value: rawPrice,
			Err: errors.New("not a decimal number"),
		}
	}
	rec.UnitPrice = price

	return rec, nil
}

func unwrapNumError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}
