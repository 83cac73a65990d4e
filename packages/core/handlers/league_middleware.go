package handlers

import (
	"net/http"

	authMiddleware "foosilator/packages/auth/middleware"
	"foosilator/packages/core/models"
	"foosilator/packages/core/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	AccessCookieName = "league_access"
	AccessHeaderName = "X-League-Access"

	leagueKey = "league"
)

// LeagueMiddleware resolves the :league short name and guards league routes.
type LeagueMiddleware struct {
	leagues *services.LeagueService
	access  *services.LeagueAccessService
	db      *gorm.DB
}

func NewLeagueMiddleware(leagues *services.LeagueService, access *services.LeagueAccessService, db *gorm.DB) *LeagueMiddleware {
	return &LeagueMiddleware{
		leagues: leagues,
		access:  access,
		db:      db,
	}
}

// LoadLeague stores the league named by the :league parameter in the context.
func (m *LeagueMiddleware) LoadLeague() gin.HandlerFunc {
	return func(c *gin.Context) {
		league, err := m.leagues.GetLeagueByShortName(c.Request.Context(), c.Param("league"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(leagueKey, league)
		c.Next()
	}
}

// RequireAccess lets the request through for public leagues, for the owner, and for holders of a
// live access grant sent as cookie or header.
func (m *LeagueMiddleware) RequireAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		league := CurrentLeague(c)
		if userID, ok := authMiddleware.GetUserID(c); ok && userID == league.OwnerID {
			c.Next()
			return
		}

		token, err := c.Cookie(AccessCookieName)
		if err != nil || token == "" {
			token = c.GetHeader(AccessHeaderName)
		}

		if err := m.access.CheckAccess(c.Request.Context(), league, token); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

// RequireOwner aborts unless the authenticated user owns the league or is an admin.
// It must run after the JWT middleware.
func (m *LeagueMiddleware) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authMiddleware.GetUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		league := CurrentLeague(c)
		isAdmin := league.OwnerID != userID && authMiddleware.IsAdmin(c, m.db)
		if err := m.leagues.CheckOwner(league, userID, isAdmin); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

// CurrentLeague returns the league loaded by LoadLeague.
func CurrentLeague(c *gin.Context) *models.League {
	return c.MustGet(leagueKey).(*models.League)
}
