package core

import (
	"net/http"
	"time"

	"foosilator/packages/auth"
	authModels "foosilator/packages/auth/models"
	"foosilator/packages/core/cron"
	"foosilator/packages/core/handlers"
	"foosilator/packages/core/services"
	"foosilator/packages/core/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Options carries the settings of the core module.
type Options struct {
	KFactor           float64
	DefaultRating     float64
	HistoryWindowDays int
	LeagueAccessTTL   time.Duration
	BcryptCost        int
	SecureCookies     bool
	// Redis, when set, stores league access grants instead of the database.
	Redis *redis.Client
}

type Module struct {
	LeagueService      *services.LeagueService
	PlayerService      *services.PlayerService
	MatchService       *services.MatchService
	EloHistoryService  *services.EloHistoryService
	RankingService     *services.RankingService
	StatsService       *services.StatsService
	AccessService      *services.LeagueAccessService
	MaintenanceService *services.MaintenanceService

	LeagueHandler  *handlers.LeagueHandler
	PlayerHandler  *handlers.PlayerHandler
	MatchHandler   *handlers.MatchHandler
	RankingHandler *handlers.RankingHandler
	StatsHandler   *handlers.StatsHandler
	Leagues        *handlers.LeagueMiddleware

	Scheduler *cron.Scheduler
	auth      *auth.Module
}

func NewModule(db *gorm.DB, authModule *auth.Module, opts Options) *Module {
	leagueService := services.NewLeagueService(db, opts.DefaultRating, opts.BcryptCost)
	playerService := services.NewPlayerService(db, opts.DefaultRating)
	matchService := services.NewMatchService(db, utils.NewEloEngine(opts.KFactor))
	historyService := services.NewEloHistoryService(db, opts.HistoryWindowDays)
	rankingService := services.NewRankingService(db, historyService)
	statsService := services.NewStatsService(db)

	var store services.AccessStore = services.NewGormAccessStore(db)
	if opts.Redis != nil {
		store = services.NewRedisAccessStore(opts.Redis)
	}
	accessService := services.NewLeagueAccessService(leagueService, store, opts.LeagueAccessTTL)
	maintenanceService := services.NewMaintenanceService(accessService)

	return &Module{
		LeagueService:      leagueService,
		PlayerService:      playerService,
		MatchService:       matchService,
		EloHistoryService:  historyService,
		RankingService:     rankingService,
		StatsService:       statsService,
		AccessService:      accessService,
		MaintenanceService: maintenanceService,

		LeagueHandler:  handlers.NewLeagueHandler(leagueService, accessService, opts.SecureCookies),
		PlayerHandler:  handlers.NewPlayerHandler(playerService, historyService),
		MatchHandler:   handlers.NewMatchHandler(matchService),
		RankingHandler: handlers.NewRankingHandler(rankingService),
		StatsHandler:   handlers.NewStatsHandler(statsService),
		Leagues:        handlers.NewLeagueMiddleware(leagueService, accessService, db),

		Scheduler: cron.NewScheduler(maintenanceService),
		auth:      authModule,
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	jwt := m.auth.JWTMiddleware()

	leagues := r.Group("/leagues")
	{
		leagues.GET("", jwt, m.LeagueHandler.ListOwned)
		leagues.POST("", jwt, m.LeagueHandler.Create)
	}

	league := leagues.Group("/:league", m.auth.OptionalJWT(), m.Leagues.LoadLeague())
	owner := []gin.HandlerFunc{jwt, m.Leagues.RequireOwner()}
	access := m.Leagues.RequireAccess()
	{
		league.GET("", m.LeagueHandler.Get)
		league.PUT("", append(owner, m.LeagueHandler.Update)...)
		league.POST("/deactivate", append(owner, m.LeagueHandler.Deactivate)...)
		league.POST("/reactivate", append(owner, m.LeagueHandler.Reactivate)...)
		league.POST("/password", append(owner, m.LeagueHandler.ChangePassword)...)
		league.POST("/owner", append(owner, m.LeagueHandler.TransferOwnership)...)
		league.POST("/reset", append(owner, m.LeagueHandler.Reset)...)
		league.POST("/access", m.LeagueHandler.GrantAccess)

		league.GET("/players", m.PlayerHandler.GetPlayers)
		league.POST("/players", append(owner, m.PlayerHandler.CreatePlayer)...)
		league.GET("/players/:id", m.PlayerHandler.GetPlayer)
		league.PUT("/players/:id", append(owner, m.PlayerHandler.UpdatePlayer)...)
		league.POST("/players/:id/deactivate", append(owner, m.PlayerHandler.DeactivatePlayer)...)
		league.POST("/players/:id/reactivate", append(owner, m.PlayerHandler.ReactivatePlayer)...)
		league.GET("/players/:id/history", access, m.PlayerHandler.GetEloHistory)

		league.GET("/matches", access, m.MatchHandler.GetRecentMatches)
		league.POST("/matches", access, m.MatchHandler.RecordMatch)
		league.DELETE("/matches/:id", append(owner, m.MatchHandler.ReverseMatch)...)

		league.GET("/rankings", access, m.RankingHandler.GetRankings)
		league.GET("/stats", access, m.StatsHandler.GetStats)
	}

	admin := r.Group("/admin", jwt, m.auth.RequireRole(authModels.RoleAdmin))
	{
		admin.POST("/maintenance/run", m.runMaintenance)
	}
}

// runMaintenance triggers the scheduled jobs immediately
// @Summary Run maintenance jobs now
// @Tags admin
// @Security BearerAuth
// @Success 202
// @Failure 403 {object} map[string]string
// @Router /admin/maintenance/run [post]
func (m *Module) runMaintenance(c *gin.Context) {
	m.Scheduler.RunNow()
	c.Status(http.StatusAccepted)
}

func (m *Module) StartScheduler() error {
	return m.Scheduler.Start()
}

func (m *Module) StopScheduler() {
	log.Info().Msg("Stopping core module scheduler")
	m.Scheduler.Stop()
}
