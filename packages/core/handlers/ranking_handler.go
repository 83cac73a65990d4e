package handlers

import (
	"net/http"

	"foosilator/packages/core/services"

	"github.com/gin-gonic/gin"
)

type RankingHandler struct {
	rankingService *services.RankingService
}

func NewRankingHandler(rankingService *services.RankingService) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
	}
}

// GetRankings returns standings, rating history and win gauges of a league
// @Summary League rankings
// @Tags rankings
// @Produce json
// @Param league path string true "League short name"
// @Param days query int false "History window in days (default: 14, max: 365)"
// @Success 200 {object} models.Rankings
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /leagues/{league}/rankings [get]
func (h *RankingHandler) GetRankings(c *gin.Context) {
	days, ok := parseIntQuery(c, "days", maxHistoryDays)
	if !ok {
		return
	}

	rankings, err := h.rankingService.GetRankings(c.Request.Context(), CurrentLeague(c), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rankings)
}
