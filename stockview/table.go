package stockview

import (
	"strconv"

	"stock-dashboard/models"
)

// Row is one table line: the record plus its close minus open.
type Row struct {
	models.StockRecord
	Diff float64
}

// BuildTable returns one row per record, in order.
func BuildTable(records []models.StockRecord) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{StockRecord: r, Diff: r.Close - r.Open}
	}
	return rows
}

// Fixed2 formats a price with two decimals, the way the tables show them.
func Fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
