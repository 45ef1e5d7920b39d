package model

import "github.com/shopspring/decimal"

// Record represents a single sale line read from the input table
type Record struct {
	Artisan   string          `json:"artisan"`
	Product   string          `json:"product"`
	UnitsSold int64           `json:"units_sold"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Revenue is units sold times unit price. It is never read from input.
func (r Record) Revenue() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(r.UnitsSold))
}

// AggregateRow is one entry of a ranked group-by table
type AggregateRow struct {
	Key       string          `json:"key"`       // artisan or product name
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SummaryResult holds the totals and both ranked tables for one run
type SummaryResult struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalUnits   int64           `json:"total_units"`
	ByArtisan    []AggregateRow  `json:"by_artisan"` // revenue descending
	ByProduct    []AggregateRow  `json:"by_product"` // revenue descending
}
