package models

import "time"

// StockRecord is one OHLCV observation for a ticker. The same shape is
// stored in the stocks table, served by the API and decoded by the dashboard.
type StockRecord struct {
	Datetime    time.Time `json:"datetime" gorm:"primaryKey;column:datetime"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      int64     `json:"volume"`
	Dividends   float64   `json:"dividends"`
	StockSplits float64   `json:"stock_splits" gorm:"column:stock_splits"`
	Ticker      string    `json:"ticker" gorm:"primaryKey;index"`
}

func (StockRecord) TableName() string {
	return "stocks"
}
