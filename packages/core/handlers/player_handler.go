package handlers

import (
	"net/http"

	"foosilator/packages/core/models"
	"foosilator/packages/core/services"

	"github.com/gin-gonic/gin"
)

const maxHistoryDays = 365

type PlayerHandler struct {
	playerService  *services.PlayerService
	historyService *services.EloHistoryService
}

func NewPlayerHandler(playerService *services.PlayerService, historyService *services.EloHistoryService) *PlayerHandler {
	return &PlayerHandler{
		playerService:  playerService,
		historyService: historyService,
	}
}

// GetPlayers lists the players of a league
// @Summary List players
// @Tags players
// @Produce json
// @Param league path string true "League short name"
// @Success 200 {object} models.PlayersResponse
// @Failure 404 {object} map[string]string
// @Router /leagues/{league}/players [get]
func (h *PlayerHandler) GetPlayers(c *gin.Context) {
	players, err := h.playerService.ListPlayers(c.Request.Context(), CurrentLeague(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

// GetPlayer returns one player
// @Summary Get a player
// @Tags players
// @Produce json
// @Param league path string true "League short name"
// @Param id path int true "Player ID"
// @Success 200 {object} models.Player
// @Failure 404 {object} map[string]string
// @Router /leagues/{league}/players/{id} [get]
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	player, err := h.playerService.GetPlayer(c.Request.Context(), CurrentLeague(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// CreatePlayer adds a player to a league
// @Summary Create a player
// @Description The new player starts at the rounded average rating of the league
// @Tags players
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param league path string true "League short name"
// @Param player body models.CreatePlayerRequest true "Player"
// @Success 201 {object} models.Player
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /leagues/{league}/players [post]
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	var req models.CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.playerService.CreatePlayer(c.Request.Context(), CurrentLeague(c).ID, req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

// UpdatePlayer renames a player or changes its color
// @Summary Update a player
// @Tags players
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param league path string true "League short name"
// @Param id path int true "Player ID"
// @Param player body models.UpdatePlayerRequest true "Player"
// @Success 200 {object} models.Player
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /leagues/{league}/players/{id} [put]
func (h *PlayerHandler) UpdatePlayer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.playerService.UpdatePlayer(c.Request.Context(), CurrentLeague(c).ID, id, req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// DeactivatePlayer
// @Summary Deactivate a player
// @Tags players
// @Security BearerAuth
// @Produce json
// @Param league path string true "League short name"
// @Param id path int true "Player ID"
// @Success 200 {object} models.Player
// @Router /leagues/{league}/players/{id}/deactivate [post]
func (h *PlayerHandler) DeactivatePlayer(c *gin.Context) {
	h.setActive(c, false)
}

// ReactivatePlayer
// @Summary Reactivate a player
// @Tags players
// @Security BearerAuth
// @Produce json
// @Param league path string true "League short name"
// @Param id path int true "Player ID"
// @Success 200 {object} models.Player
// @Router /leagues/{league}/players/{id}/reactivate [post]
func (h *PlayerHandler) ReactivatePlayer(c *gin.Context) {
	h.setActive(c, true)
}

func (h *PlayerHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	player, err := h.playerService.SetPlayerActive(c.Request.Context(), CurrentLeague(c).ID, id, active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// GetEloHistory returns the rating trend line of a player
// @Summary Player rating history
// @Description Rating points oldest first, from the window start to now
// @Tags players
// @Produce json
// @Param league path string true "League short name"
// @Param id path int true "Player ID"
// @Param days query int false "Window in days (default: 14, max: 365)"
// @Success 200 {object} models.PlayerEloSeries
// @Failure 404 {object} map[string]string
// @Router /leagues/{league}/players/{id}/history [get]
func (h *PlayerHandler) GetEloHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	days, ok := parseIntQuery(c, "days", maxHistoryDays)
	if !ok {
		return
	}

	series, err := h.historyService.ProjectRatingHistory(c.Request.Context(), id, CurrentLeague(c).ID, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}
