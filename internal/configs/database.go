package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	model "task-marketplace.com/task-marketplace/internal/models"
)

func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer; serializing connections keeps
		// concurrent transitions from failing with SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Task{},
		&model.TaskAssignment{},
		&model.Dispute{},
		&model.CreditBalance{},
		&model.PaymentLog{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
