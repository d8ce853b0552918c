package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Wikid82/autosource/backend/internal/models"
)

// Connect opens the SQLite catalog store at dbPath. WAL and a busy timeout
// let the public catalog read while admin mutations commit.
func Connect(dbPath string) (*gorm.DB, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql db: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Listing{},
		&models.ListingImage{},
		&models.Lead{},
		&models.AuditLog{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := backfillSearchFolds(db); err != nil {
		return fmt.Errorf("backfill search columns: %w", err)
	}
	return nil
}

// backfillSearchFolds fills the folded search columns on rows written before
// those columns existed. UpdateColumns skips hooks and leaves updated_at alone.
func backfillSearchFolds(db *gorm.DB) error {
	var listings []models.Listing
	err := db.Where("brand_fold IS NULL").FindInBatches(&listings, 200, func(_ *gorm.DB, _ int) error {
		for i := range listings {
			l := &listings[i]
			if err := db.Model(l).UpdateColumns(map[string]interface{}{
				"title_fold": models.FoldText(l.Title),
				"brand_fold": models.FoldText(l.Brand),
				"model_fold": models.FoldText(l.Model),
			}).Error; err != nil {
				return err
			}
		}
		return nil
	}).Error
	if err != nil {
		return err
	}

	var leads []models.Lead
	return db.Where("contact_fold IS NULL").FindInBatches(&leads, 200, func(_ *gorm.DB, _ int) error {
		for i := range leads {
			l := &leads[i]
			if err := db.Model(l).UpdateColumns(map[string]interface{}{
				"vehicle_interest_fold": models.FoldText(l.VehicleInterest),
				"contact_fold":          models.FoldText(l.Contact),
			}).Error; err != nil {
				return err
			}
		}
		return nil
	}).Error
}
