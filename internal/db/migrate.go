package db

import (
	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/pkg/logger"
)

// Migrate runs database migrations.
func Migrate() error {
	logger.Info("Running database migrations...")

	if err := DB.AutoMigrate(&model.Product{}); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}
