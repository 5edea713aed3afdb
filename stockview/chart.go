package stockview

import (
	"time"

	"stock-dashboard/models"
)

// LabelLayout is how chart x-axis labels are written.
const LabelLayout = "2006-01-02 15:04"

// Chart is a label/series pair for a line chart. Labels[i] and Series[i]
// describe the same record.
type Chart struct {
	Labels []string  `json:"labels"`
	Series []float64 `json:"series"`
}

// ProjectChart maps records to timestamp labels in loc and closing prices.
// Empty input gives empty, non-nil slices.
func ProjectChart(records []models.StockRecord, loc *time.Location) Chart {
	if loc == nil {
		loc = time.UTC
	}
	c := Chart{
		Labels: make([]string, len(records)),
		Series: make([]float64, len(records)),
	}
	for i, r := range records {
		c.Labels[i] = r.Datetime.In(loc).Format(LabelLayout)
		c.Series[i] = r.Close
	}
	return c
}
