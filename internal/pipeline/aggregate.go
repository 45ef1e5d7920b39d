package pipeline

import (
	"sort"

	"sales-report/internal/model"

	"github.com/shopspring/decimal"
)

// groupAccumulator sums units and revenue per key, remembering first-seen key order
type groupAccumulator struct {
	order   []string
	results map[string]*model.AggregateRow
}

func newGroupAccumulator() *groupAccumulator {
	return &groupAccumulator{results: make(map[string]*model.AggregateRow)}
}

func (g *groupAccumulator) add(key string, units int64, revenue decimal.Decimal) {
	result, exists := g.results[key]
	if !exists {
		result = &model.AggregateRow{Key: key, Revenue: decimal.Zero}
		g.results[key] = result
		g.order = append(g.order, key)
	}
	result.UnitsSold += units
	result.Revenue = result.Revenue.Add(revenue)
}

// ranked returns the groups sorted by revenue, highest first
func (g *groupAccumulator) ranked() []model.AggregateRow {
	rows := make([]model.AggregateRow, 0, len(g.order))
	for _, key := range g.order {
		rows = append(rows, *g.results[key])
	}
	return SortAggregatedResults(rows)
}

// AggregateRecords computes totals and the per-artisan and per-product tables.
// It performs no I/O and leaves records untouched.
func AggregateRecords(records []model.Record) model.SummaryResult {
	totalRevenue := decimal.Zero
	var totalUnits int64
	byArtisan := newGroupAccumulator()
	byProduct := newGroupAccumulator()

	for _, rec := range records {
		revenue := rec.Revenue()
		totalRevenue = totalRevenue.Add(revenue)
		totalUnits += rec.UnitsSold
		byArtisan.add(rec.Artisan, rec.UnitsSold, revenue)
		byProduct.add(rec.Product, rec.UnitsSold, revenue)
	}

	return model.SummaryResult{
		TotalRevenue: totalRevenue,
		TotalUnits:   totalUnits,
		ByArtisan:    byArtisan.ranked(),
		ByProduct:    byProduct.ranked(),
	}
}

// SortAggregatedResults sorts rows by revenue descending in place. Equal revenues keep
// their incoming order.
func SortAggregatedResults(rows []model.AggregateRow) []model.AggregateRow {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Revenue.GreaterThan(rows[j].Revenue)
	})
	return rows
}
