package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clockert/fram-backend/internal/app/service"
	"github.com/clockert/fram-backend/pkg/logger"
)

// NutritionScheduler refreshes the nutrition cache for the whole catalog so
// product pages rarely hit the upstream API cold.
type NutritionScheduler struct {
	cron             *cron.Cron
	nutritionService service.NutritionService
}

func NewNutritionScheduler(nutritionService service.NutritionService) *NutritionScheduler {
	return &NutritionScheduler{
		cron:             cron.New(),
		nutritionService: nutritionService,
	}
}

// Start schedules a daily warm-up at 05:00, before the morning traffic.
func (s *NutritionScheduler) Start() error {
	_, err := s.cron.AddFunc("0 5 * * *", func() {
		logger.Info("Starting scheduled nutrition cache warm-up", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := s.nutritionService.WarmCatalog(ctx); err != nil {
			logger.Error("Failed to warm nutrition cache from scheduler", err)
			return
		}

		logger.Info("Nutrition cache warm-up completed", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for nutrition warm-up", err)
		return err
	}

	s.cron.Start()
	logger.Info("Nutrition scheduler started successfully (daily at 5:00 AM)", nil)

	return nil
}

// Stop halts the scheduler
func (s *NutritionScheduler) Stop() {
	logger.Info("Stopping nutrition scheduler...", nil)
	s.cron.Stop()
	logger.Info("Nutrition scheduler stopped", nil)
}
