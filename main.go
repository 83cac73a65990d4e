package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"foosilator/config"
	_ "foosilator/docs" // Swagger docs
	"foosilator/logging"
	"foosilator/packages/auth"
	"foosilator/packages/core"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// @title           Foosilator API
// @version         1.0
// @description     Foosball leagues with Elo ratings, match history and rankings.

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.IsDevelopment())

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	rdb, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger())
	if !cfg.IsDevelopment() && slices.Contains(cfg.CORSOrigins, "*") {
		log.Warn().Msg("CORS_ORIGINS is a wildcard, cross-origin requests will not carry credentials")
	}
	r.Use(cors.New(corsConfig(cfg.CORSOrigins, cfg.IsDevelopment())))

	authModule := auth.NewModule(db, cfg.JWTSecret, cfg.BcryptCost)
	authModule.SetupRoutes(r)

	coreModule := core.NewModule(db, authModule, core.Options{
		KFactor:           cfg.KFactor,
		DefaultRating:     cfg.DefaultRating,
		HistoryWindowDays: cfg.HistoryWindowDays,
		LeagueAccessTTL:   cfg.LeagueAccessTTL,
		BcryptCost:        cfg.BcryptCost,
		SecureCookies:     !cfg.IsDevelopment(),
		Redis:             rdb,
	})
	coreModule.SetupRoutes(r)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", healthHandler(db))

	if err := coreModule.StartScheduler(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	coreModule.StopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// corsConfig allows credentialed requests from the configured origins. A wildcard reflects every
// origin with credentials in development only; elsewhere it allows any origin without credentials.
func corsConfig(origins []string, development bool) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-League-Access"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	wildcard := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	switch {
	case wildcard && development:
		// Credentials cannot be combined with a literal "*".
		c.AllowOriginFunc = func(string) bool { return true }
	case wildcard:
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	default:
		c.AllowOrigins = origins
	}
	return c
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Message  string `json:"message" example:"Server is running"`
	Database string `json:"database" example:"connected"`
}

// @Summary Health Check
// @Description Check if the server is running and database is connected
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Message: "Server is running", Database: "unreachable"})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{Message: "Server is running", Database: "connected"})
	}
}
