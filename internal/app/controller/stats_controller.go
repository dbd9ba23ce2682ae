package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoreau/taskhive-backend/internal/app/service"
	apperrors "github.com/jmoreau/taskhive-backend/internal/errors"
	"github.com/jmoreau/taskhive-backend/internal/middleware"
)

type StatsController struct {
	statsService service.StatsService
}

func NewStatsController(statsService service.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// GetStats returns the authenticated user's dashboard stats
// GET /api/v1/stats
func (ctrl *StatsController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	stats, err := ctrl.statsService.GetUserStats(userID)
	if err != nil {
		log.Error("Failed to compute user stats", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "user stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
