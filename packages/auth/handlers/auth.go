package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"foosilator/packages/auth/middleware"
	"foosilator/packages/auth/models"
	"foosilator/packages/auth/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB         *gorm.DB
	Tokens     *utils.TokenIssuer
	BcryptCost int
}

func NewAuthHandler(db *gorm.DB, tokens *utils.TokenIssuer, bcryptCost int) *AuthHandler {
	return &AuthHandler{
		DB:         db,
		Tokens:     tokens,
		BcryptCost: bcryptCost,
	}
}

// @Summary Owner registration
// @Description Register a league owner account and get an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// The email binding already rejects surrounding whitespace.
	req.Email = strings.ToLower(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	db := h.DB.WithContext(c.Request.Context())

	var existing models.User
	err := db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error
	switch {
	case err == nil:
		if existing.Email == req.Email {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		} else {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		}
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to look up existing user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing user"})
		return
	}

	hashed, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
		return
	}

	now := time.Now()
	user := models.User{
		Email:       req.Email,
		Username:    req.Username,
		Password:    hashed,
		Enabled:     true,
		Roles:       models.GetDefaultRoles(),
		LastLogin:   &now,
		NbConnexion: 1,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// @Summary Owner login
// @Description Login with email and password to get an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.DB.WithContext(c.Request.Context())

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !user.Enabled || !utils.CheckPassword(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// nb_connexion counts days with a login, not logins.
	now := time.Now()
	if user.LastLogin == nil || user.LastLogin.Format(time.DateOnly) != now.Format(time.DateOnly) {
		user.NbConnexion++
	}
	user.LastLogin = &now

	err := db.Model(&user).Updates(map[string]any{
		"last_login":   user.LastLogin,
		"nb_connexion": user.NbConnexion,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user login info"})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// @Summary Current user
// @Description Get the authenticated user's profile
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/me [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user models.User) {
	token, err := h.Tokens.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(status, models.AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(h.Tokens.Expiry().Seconds()),
		TokenType:   "Bearer",
		User:        user,
	})
}
