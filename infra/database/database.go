// Package database opens the gorm connection and runs migrations.
package database

import (
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/walletguard/walletd/infra/repository/model"
	"github.com/walletguard/walletd/pkg/config"
)

// Connect opens a Postgres connection and migrates the schema.
func Connect(cfg *config.DB, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Url), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.Account{}, &model.Transaction{}); err != nil {
		return nil, err
	}
	log.Info("database connected and migrated")
	return db, nil
}
