package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clockert/fram-backend/internal/app/service"
	apperrors "github.com/clockert/fram-backend/internal/errors"
	"github.com/clockert/fram-backend/internal/middleware"
)

type NutritionController struct {
	nutritionService service.NutritionService
}

func NewNutritionController(nutritionService service.NutritionService) *NutritionController {
	return &NutritionController{
		nutritionService: nutritionService,
	}
}

// GetNutrition returns nutrition facts for a food query, served from cache
// when fresh
// GET /api/nutrition/:query
func (ctrl *NutritionController) GetNutrition(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Param("query")
	if query == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "A food name is required")
		return
	}

	payload, err := ctrl.nutritionService.GetNutrition(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrNutritionUnavailable) {
			log.Warn("Nutrition data unavailable", map[string]interface{}{
				"query": query,
			})
			apperrors.ServiceUnavailable(c, apperrors.NutritionUnavailable, "Couldn't load nutrition information right now")
			return
		}
		log.Error("Failed to fetch nutrition data", err, map[string]interface{}{
			"query": query,
		})
		apperrors.InternalError(c, "Failed to fetch nutrition data")
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}
