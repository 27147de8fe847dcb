package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/internal/app/repository"
	"github.com/clockert/fram-backend/internal/nutrition"
	"github.com/clockert/fram-backend/pkg/logger"
)

var ErrNutritionUnavailable = errors.New("nutrition data unavailable")

type NutritionService interface {
	GetNutrition(ctx context.Context, productName string) (json.RawMessage, error)
	WarmCatalog(ctx context.Context) error
	ClearCache(ctx context.Context)
}

type nutritionService struct {
	cache       *nutrition.Cache
	productRepo repository.ProductRepository
}

func NewNutritionService(cache *nutrition.Cache, productRepo repository.ProductRepository) NutritionService {
	return &nutritionService{
		cache:       cache,
		productRepo: productRepo,
	}
}

// GetNutrition returns the raw FoodData Central payload for a product name,
// served from cache when possible. A payload without any foods counts as
// unavailable; the payload is otherwise passed through untouched.
func (s *nutritionService) GetNutrition(ctx context.Context, productName string) (json.RawMessage, error) {
	data := s.cache.GetNutrition(ctx, productName)
	if data == nil {
		return nil, ErrNutritionUnavailable
	}

	var payload model.FDCPayload
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Foods) == 0 {
		logger.Warn("Nutrition payload contains no foods", map[string]interface{}{
			"product": productName,
		})
		return nil, ErrNutritionUnavailable
	}

	return data, nil
}

// WarmCatalog refreshes the cache for every catalog product so product pages
// hit fresh entries. Failures for individual products are logged and
// skipped; the cache's own fallback handling covers them at request time.
func (s *nutritionService) WarmCatalog(ctx context.Context) error {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return err
	}

	warmed := 0
	for _, p := range products {
		if data := s.cache.GetNutrition(ctx, p.Name); data != nil {
			warmed++
		}
	}

	logger.Info("Nutrition cache warmed", map[string]interface{}{
		"products": len(products),
		"warmed":   warmed,
	})
	return nil
}

func (s *nutritionService) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx)
}
