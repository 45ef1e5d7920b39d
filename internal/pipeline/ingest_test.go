package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sales-report/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const scenarioCSV = `artisan,product,units_sold,unit_price
A,X,2,10.0
B,X,1,5.0
A,Y,1,3.0
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func load(t *testing.T, source model.Source) ([]model.Record, error) {
	t.Helper()
	return LoadRecords(context.Background(), source, zap.NewNop())
}

func TestLoadRecordsCSV(t *testing.T) {
	path := writeFile(t, "sales_data.csv", scenarioCSV)

	records, err := load(t, model.Source{Path: path})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "A", records[0].Artisan)
	assert.Equal(t, "X", records[0].Product)
	assert.Equal(t, int64(2), records[0].UnitsSold)
	assert.Equal(t, "10.00", records[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "Y", records[2].Product)
}

func TestLoadRecordsCSVHeaderVariants(t *testing.T) {
	content := "\ufeff\"unit_price\", region ,artisan,units_sold,product\n" +
		"12.50,north,Meera,4,Shawl\n" +
		"\n" +
		"1,south,Ola, 7 ,Cup\n"
	path := writeFile(t, "sales.csv", content)

	records, err := load(t, model.Source{Path: path})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, model.Record{Artisan: "Meera", Product: "Shawl", UnitsSold: 4, UnitPrice: records[0].UnitPrice}, records[0])
	assert.Equal(t, "12.50", records[0].UnitPrice.StringFixed(2))
	assert.Equal(t, int64(7), records[1].UnitsSold)
}

func TestLoadRecordsTSV(t *testing.T) {
	path := writeFile(t, "sales.tsv", "artisan\tproduct\tunits_sold\tunit_price\nA\tX\t2\t1.25\n")

	records, err := load(t, model.Source{Path: path})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2.50", records[0].Revenue().StringFixed(2))
}

func TestLoadRecordsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales_data.csv")

	_, err := load(t, model.Source{Path: path})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, path, notFound.Path)
	assert.Contains(t, err.Error(), path)
}

func TestLoadRecordsMalformedFields(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		row    int
		column string
		value  string
	}{
		{"non-numeric units", "A,X,two,5.0\n", 3, model.ColumnUnitsSold, "two"},
		{"fractional units", "A,X,2.5,5.0\n", 3, model.ColumnUnitsSold, "2.5"},
		{"non-numeric price", "A,X,2,cheap\n", 3, model.ColumnUnitPrice, "cheap"},
		{"empty price", "A,X,2,\n", 3, model.ColumnUnitPrice, ""},
		{"short row", "A,X,2\n", 3, model.ColumnUnitPrice, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "sales.csv", "artisan,product,units_sold,unit_price\nB,Y,1,1\n"+tc.body)

			_, err := load(t, model.Source{Path: path})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tc.row, parseErr.Row)
			assert.Equal(t, tc.column, parseErr.Column)
			assert.Equal(t, tc.value, parseErr.Value)
		})
	}
}

func TestLoadRecordsMissingColumn(t *testing.T) {
	path := writeFile(t, "sales.csv", "artisan,product,units_sold\nA,X,1\n")

	_, err := load(t, model.Source{Path: path})

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 0, parseErr.Row)
	assert.Equal(t, model.ColumnUnitPrice, parseErr.Column)
	assert.Contains(t, err.Error(), `missing required column "unit_price"`)
}

func TestLoadRecordsEmptyInputs(t *testing.T) {
	for name, content := range map[string]string{
		"empty file":  "",
		"header only": "artisan,product,units_sold,unit_price\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "sales.csv", content)

			records, err := load(t, model.Source{Path: path})
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestLoadRecordsCancelled(t *testing.T) {
	path := writeFile(t, "sales.csv", scenarioCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadRecords(ctx, model.Source{Path: path}, zap.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadRecordsJSON(t *testing.T) {
	path := writeFile(t, "sales.json", `[
		{"artisan": "A", "product": "X", "units_sold": 2, "unit_price": 10.0},
		{"artisan": "B", "product": "X", "units_sold": "1", "unit_price": "5.00", "note": "gift"}
	]`)

	records, err := load(t, model.Source{Path: path})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].UnitsSold)
	assert.Equal(t, "20.00", records[0].Revenue().StringFixed(2))
	assert.Equal(t, "B", records[1].Artisan)
}

func TestLoadRecordsJSONErrors(t *testing.T) {
	cases := map[string]string{
		"missing field": `[{"artisan": "A", "product": "X", "units_sold": 2}]`,
		"bad units":     `[{"artisan": "A", "product": "X", "units_sold": "lots", "unit_price": 1}]`,
		"not an object": `[42]`,
		"scalar":        `"sales"`,
		"broken":        `[{"artisan": `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "sales.json", body)

			_, err := load(t, model.Source{Path: path})
			assert.True(t, errors.Is(err, ErrParse), "got %v", err)
		})
	}
}

func TestLoadRecordsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"artisan", "product", "units_sold", "unit_price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"A", "X", 2, 10.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"B", "Y", 1, 3}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := load(t, model.Source{Path: path})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "21.00", records[0].Revenue().StringFixed(2))
	assert.Equal(t, "B", records[1].Artisan)
}

func TestLoadRecordsXLSXFormattedNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"artisan", "product", "units_sold", "unit_price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"A", "X", 1200, 1234.5}))
	// #,##0.00 displays 1200 as "1,200.00"
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C2", "D2", style))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := load(t, model.Source{Path: path})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1200), records[0].UnitsSold)
	assert.Equal(t, "1234.50", records[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "1481400.00", records[0].Revenue().StringFixed(2))
}

func TestLoadRecordsXLSXBadCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"artisan", "product", "units_sold", "unit_price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"A", "X", "n/a", 1}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := load(t, model.Source{Path: path})

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Row)
	assert.Equal(t, model.ColumnUnitsSold, parseErr.Column)
}

func TestLoadRecordsSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER PRIMARY KEY, artisan TEXT, product TEXT, units_sold INTEGER, unit_price REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders (artisan, product, units_sold, unit_price) VALUES ('A','X',2,10.0), ('B','X',1,5.0), ('A','Y',1,3.0)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	records, err := load(t, model.Source{Path: path, Table: "orders"})
	require.NoError(t, err)
	require.Len(t, records, 3)

	got := AggregateRecords(records)
	assert.Equal(t, int64(4), got.TotalUnits)
	assert.Equal(t, "28.00", got.TotalRevenue.StringFixed(2))
}

func TestLoadRecordsSQLiteMissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (x TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = load(t, model.Source{Path: path})
	assert.True(t, errors.Is(err, ErrParse))
}

func TestResolveSourceType(t *testing.T) {
	cases := []struct {
		source model.Source
		want   string
	}{
		{model.Source{Path: "sales_data.csv"}, model.SourceCSV},
		{model.Source{Path: "export.TSV"}, model.SourceTSV},
		{model.Source{Path: "sales.json", Type: "auto"}, model.SourceJSON},
		{model.Source{Path: "book.xlsx"}, model.SourceXLSX},
		{model.Source{Path: "shop.sqlite"}, model.SourceSQLite},
		{model.Source{Path: "shop.db"}, model.SourceSQLite},
		{model.Source{Path: "sales.txt"}, model.SourceCSV},
		{model.Source{Path: "sales.txt", Type: "TSV"}, model.SourceTSV},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveSourceType(tc.source), tc.source.Path)
	}
}
