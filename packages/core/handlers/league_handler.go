package handlers

import (
	"net/http"

	authMiddleware "foosilator/packages/auth/middleware"
	"foosilator/packages/core/models"
	"foosilator/packages/core/services"

	"github.com/gin-gonic/gin"
)

type LeagueHandler struct {
	leagueService *services.LeagueService
	accessService *services.LeagueAccessService
	secureCookies bool
}

func NewLeagueHandler(leagueService *services.LeagueService, accessService *services.LeagueAccessService, secureCookies bool) *LeagueHandler {
	return &LeagueHandler{
		leagueService: leagueService,
		accessService: accessService,
		secureCookies: secureCookies,
	}
}

// ListOwned lists the leagues of the authenticated user
// @Summary List owned leagues
// @Tags leagues
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.OwnedLeaguesResponse
// @Failure 401 {object} map[string]string
// @Router /leagues [get]
func (h *LeagueHandler) ListOwned(c *gin.Context) {
	userID, _ := authMiddleware.GetUserID(c)
	leagues, err := h.leagueService.ListOwnedLeagues(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, leagues)
}

// Create creates a league owned by the authenticated user
// @Summary Create a league
// @Tags leagues
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param league body models.CreateLeagueRequest true "League"
// @Success 201 {object} models.League
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /leagues [post]
func (h *LeagueHandler) Create(c *gin.Context) {
	var req models.CreateLeagueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := authMiddleware.GetUserID(c)
	league, err := h.leagueService.CreateLeague(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, league)
}

// Get returns a league
// @Summary Get a league
// @Tags leagues
// @Produce json
// @Param league path string true "League short name"
// @Success 200 {object} models.League
// @Failure 404 {object} map[string]string
// @Router /leagues/{league} [get]
func (h *LeagueHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentLeague(c))
}

// Update renames a league or changes its max score
// @Summary Update a league
// @Tags leagues
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param league path string true "League short name"
// @Param body body models.UpdateLeagueRequest true "League"
// @Success 200 {object} models.League
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /leagues/{league} [put]
func (h *LeagueHandler) Update(c *gin.Context) {
	var req models.UpdateLeagueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	league, err := h.leagueService.UpdateLeague(c.Request.Context(), CurrentLeague(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, league)
}

// Deactivate closes a league to new matches
// @Summary Deactivate a league
// @Tags leagues
// @Security BearerAuth
// @Produce json
// @Param league path string true "League short name"
// @Success 200 {object} models.League
// @Failure 403 {object} map[string]string
// @Router /leagues/{league}/deactivate [post]
func (h *LeagueHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Reactivate reopens a league
// @Summary Reactivate a league
// @Tags leagues
// @Security BearerAuth
// @Produce json
// @Param league path string true "League short name"
// @Success 200 {object} models.League
// @Failure 403 {object} map[string]string
// @Router /leagues/{league}/reactivate [post]
func (h *LeagueHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *LeagueHandler) setActive(c *gin.Context, active bool) {
	league, err := h.leagueService.SetActive(c.Request.Context(), CurrentLeague(c).ID, active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, league)
}

// ChangePassword sets, replaces or removes the league password
// @Summary Change the league password
// @Tags leagues
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param league path string true "League short name"
// @Param body body models.ChangeLeaguePasswordRequest true "Passwords"
// @Success 200 {object} models.League
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /leagues/{league}/password [post]
func (h *LeagueHandler) ChangePassword(c *gin.Context) {
	var req models.ChangeLeaguePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	league, err := h.leagueService.ChangePassword(c.Request.Context(), CurrentLeague(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, league)
}

// TransferOwnership hands the league to another user
// @Summary Transfer a league
// @Tags leagues
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param league path string true "League short name"
// @Param body body models.TransferLeagueRequest true "New owner"
// @Success 200 {object} models.League
// @Failure 404 {object} map[string]string
// @Router /leagues/{league}/owner [post]
func (h *LeagueHandler) TransferOwnership(c *gin.Context) {
	var req models.TransferLeagueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	league, err := h.leagueService.TransferOwnership(c.Request.Context(), CurrentLeague(c).ID, req.OwnerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, league)
}

// Reset deletes all matches and resets every rating
// @Summary Reset a league
// @Tags leagues
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param league path string true "League short name"
// @Param body body models.ResetLeagueRequest true "Short name confirmation"
// @Success 204
// @Failure 400 {object} map[string]string
// @Router /leagues/{league}/reset [post]
func (h *LeagueHandler) Reset(c *gin.Context) {
	var req models.ResetLeagueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.leagueService.ResetLeague(c.Request.Context(), CurrentLeague(c).ID, req.ShortName); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GrantAccess exchanges the league password for an access cookie
// @Summary Unlock a password protected league
// @Tags leagues
// @Accept json
// @Produce json
// @Param league path string true "League short name"
// @Param body body models.LeagueAccessRequest true "Password"
// @Success 200 {object} models.LeagueAccessGrant
// @Failure 401 {object} map[string]string
// @Router /leagues/{league}/access [post]
func (h *LeagueHandler) GrantAccess(c *gin.Context) {
	var req models.LeagueAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grant, err := h.accessService.GrantAccess(c.Request.Context(), CurrentLeague(c).ShortName, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	// Scoped to the league so grants of several leagues can coexist.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookieName, grant.Token, int(h.accessService.TTL().Seconds()), "/leagues/"+CurrentLeague(c).ShortName, "", h.secureCookies, true)
	c.JSON(http.StatusOK, grant)
}
