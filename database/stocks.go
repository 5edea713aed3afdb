package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"stock-dashboard/models"
)

// StockStore reads the stocks table.
type StockStore interface {
	All(ctx context.Context) ([]models.StockRecord, error)
	Latest(ctx context.Context) ([]models.StockRecord, error)
	ByTicker(ctx context.Context, ticker string) ([]models.StockRecord, error)
}

type stockStore struct {
	db *gorm.DB
}

func NewStockStore(db *gorm.DB) StockStore {
	return &stockStore{db: db}
}

func (s *stockStore) All(ctx context.Context) ([]models.StockRecord, error) {
	stocks := []models.StockRecord{}
	if err := s.db.WithContext(ctx).Order("ticker, datetime").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	return stocks, nil
}

// Latest returns the most recent row of every ticker.
func (s *stockStore) Latest(ctx context.Context) ([]models.StockRecord, error) {
	query := `
		SELECT DISTINCT ON (ticker) *
		FROM stocks
		ORDER BY ticker, datetime DESC
	`

	stocks := []models.StockRecord{}
	if err := s.db.WithContext(ctx).Raw(query).Scan(&stocks).Error; err != nil {
		return nil, fmt.Errorf("query latest stocks: %w", err)
	}
	return stocks, nil
}

func (s *stockStore) ByTicker(ctx context.Context, ticker string) ([]models.StockRecord, error) {
	stocks := []models.StockRecord{}
	err := s.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("datetime").
		Find(&stocks).Error
	if err != nil {
		return nil, fmt.Errorf("query stocks for %s: %w", ticker, err)
	}
	return stocks, nil
}

// StockWriter appends loaded records to the stocks table.
type StockWriter struct {
	db        *gorm.DB
	batchSize int
}

func NewStockWriter(db *gorm.DB, batchSize int) *StockWriter {
	return &StockWriter{db: db, batchSize: batchSize}
}

func (w *StockWriter) Append(ctx context.Context, records []models.StockRecord) error {
	return CreateInBatches(w.db.WithContext(ctx), records, w.batchSize)
}
