package handlers

import (
	"net/http"

	"foosilator/packages/core/models"
	"foosilator/packages/core/services"

	"github.com/gin-gonic/gin"
)

const maxRecentMatches = 100

type MatchHandler struct {
	matchService *services.MatchService
}

func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// GetRecentMatches lists the latest matches of a league
// @Summary Recent matches
// @Description Newest first, with winner and loser
// @Tags matches
// @Produce json
// @Param league path string true "League short name"
// @Param limit query int false "Number of matches (default: 15, max: 100)"
// @Success 200 {array} models.Match
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /leagues/{league}/matches [get]
func (h *MatchHandler) GetRecentMatches(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", maxRecentMatches)
	if !ok {
		return
	}

	matches, err := h.matchService.GetRecentMatches(c.Request.Context(), CurrentLeague(c).ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// RecordMatch records a game and updates both ratings
// @Summary Record a match
// @Description The winner score is the league max score
// @Tags matches
// @Accept json
// @Produce json
// @Param league path string true "League short name"
// @Param match body models.RecordMatchRequest true "Match"
// @Success 201 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /leagues/{league}/matches [post]
func (h *MatchHandler) RecordMatch(c *gin.Context) {
	var req models.RecordMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.matchService.RecordMatch(c.Request.Context(), CurrentLeague(c).ID, req.WinnerID, req.LoserID, *req.LoserScore)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// ReverseMatch deletes the latest match of a league and restores the ratings
// @Summary Reverse the latest match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param league path string true "League short name"
// @Param id path int true "Match ID"
// @Success 200 {object} models.Match
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /leagues/{league}/matches/{id} [delete]
func (h *MatchHandler) ReverseMatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	match, err := h.matchService.GetMatch(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	// Match ids are global, do not let an owner reverse another league's match.
	if match.LeagueID != CurrentLeague(c).ID {
		respondError(c, &services.NotFoundError{Resource: "match", ID: id})
		return
	}

	reversed, err := h.matchService.ReverseMatch(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reversed)
}
