package handlers

import (
	"net/http"

	"foosilator/packages/core/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats retrieves league statistics
// @Summary League statistics
// @Description Active players, matches, and matches of the last two weeks
// @Tags stats
// @Produce json
// @Param league path string true "League short name"
// @Success 200 {object} models.Stats
// @Failure 401 {object} map[string]string
// @Router /leagues/{league}/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetLeagueStats(c.Request.Context(), CurrentLeague(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
