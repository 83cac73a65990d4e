package middleware

import (
	"net/http"

	"foosilator/packages/auth/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireRole aborts unless the authenticated user has role. It must run after JWTMiddleware.
func RequireRole(db *gorm.DB, role string) gin.HandlerFunc {
	return RequireAnyRole(db, role)
}

// RequireAnyRole aborts unless the authenticated user has at least one of roles.
func RequireAnyRole(db *gorm.DB, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		for _, role := range roles {
			if user.HasRole(role) {
				c.Set("user_roles", user.Roles)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":          "Insufficient permissions",
			"required_roles": roles,
		})
	}
}

// IsAdmin reports whether the authenticated user of the request has the admin role.
func IsAdmin(c *gin.Context, db *gorm.DB) bool {
	userID, ok := GetUserID(c)
	if !ok {
		return false
	}
	var user models.User
	if err := db.WithContext(c.Request.Context()).Select("id", "roles").First(&user, userID).Error; err != nil {
		return false
	}
	return user.HasRole(models.RoleAdmin)
}
