package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock-dashboard/models"
)

var (
	ErrInvalidBatchSize = errors.New("invalid batch size")
	ErrNotFound         = errors.New("record not found")
)

// AutoMigrate creates or updates the tables the API and loader use.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.StockRecord{}, &models.User{})
}

// CreateInBatches inserts rows in chunks of batchSize inside one
// transaction. Rows whose primary key already exists are skipped, so a
// reload of an overlapping window only appends what is new.
func CreateInBatches[T any](db *gorm.DB, rows []T, batchSize int) error {
	if batchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if len(rows) == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < len(rows); i += batchSize {
			end := i + batchSize
			if end > len(rows) {
				end = len(rows)
			}

			chunk := rows[i:end]
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&chunk).Error; err != nil {
				return fmt.Errorf("batch insert failed at row %d: %w", i, err)
			}
		}
		return nil
	})
}
