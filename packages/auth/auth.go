package auth

import (
	"foosilator/packages/auth/handlers"
	"foosilator/packages/auth/middleware"
	"foosilator/packages/auth/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Module struct {
	Handler *handlers.AuthHandler
	Tokens  *utils.TokenIssuer
	db      *gorm.DB
}

func NewModule(db *gorm.DB, jwtSecret string, bcryptCost int) *Module {
	tokens := utils.NewTokenIssuer(jwtSecret, utils.AccessTokenExpiry)
	return &Module{
		Handler: handlers.NewAuthHandler(db, tokens, bcryptCost),
		Tokens:  tokens,
		db:      db,
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", m.Handler.Register)
		auth.POST("/login", m.Handler.Login)
	}

	users := r.Group("/users", m.JWTMiddleware())
	{
		users.GET("/me", m.Handler.Profile)
	}
}

func (m *Module) JWTMiddleware() gin.HandlerFunc {
	return middleware.JWTMiddleware(m.Tokens)
}

func (m *Module) OptionalJWT() gin.HandlerFunc {
	return middleware.OptionalJWT(m.Tokens)
}

func (m *Module) RequireRole(role string) gin.HandlerFunc {
	return middleware.RequireRole(m.db, role)
}

func (m *Module) IsAdmin(c *gin.Context) bool {
	return middleware.IsAdmin(c, m.db)
}

func GetUserID(c *gin.Context) (uint, bool) {
	return middleware.GetUserID(c)
}

func GetUserEmail(c *gin.Context) (string, bool) {
	return middleware.GetUserEmail(c)
}
