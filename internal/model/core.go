package model

// Required input columns, in the order they are selected from tabular sources
const (
	ColumnArtisan   = "artisan"
	ColumnProduct   = "product"
	ColumnUnitsSold = "units_sold"
	ColumnUnitPrice = "unit_price"
)

// RequiredColumns lists the header names every source must provide
var RequiredColumns = []string{ColumnArtisan, ColumnProduct, ColumnUnitsSold, ColumnUnitPrice}

// Source types understood by the loader
const (
	SourceAuto   = "auto"
	SourceCSV    = "csv"
	SourceTSV    = "tsv"
	SourceJSON   = "json"
	SourceXLSX   = "xlsx"
	SourceSQLite = "sqlite"
)

// Source describes where the sales records come from
type Source struct {
	Type  string `json:"type"`            // csv, tsv, json, xlsx, sqlite or auto
	Path  string `json:"path"`            // file path
	Table string `json:"table,omitempty"` // sqlite table name
	Sheet string `json:"sheet,omitempty"` // xlsx sheet name, first sheet when empty
}

// Export defines where the text report is written
type Export struct {
	Dir string `json:"dir"` // e.g., report
}

// ReportJobSpec is everything one report run needs
type ReportJobSpec struct {
	Source Source `json:"source"`
	Export Export `json:"export"`
}
