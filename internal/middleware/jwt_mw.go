package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"tam_website/internal/model"
	"tam_website/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey  = "authUser"
	AuthRolesKey = "authRoles"
)

const msgNoPermission = "You do not have permission to perform this action."

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// UserLoader returns the stored user, or nil when it does not exist.
type UserLoader interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
}

// JWTAuthMiddleware creates a middleware for JWT authentication.
// The token only names the user; active state and roles come from users on every request.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString, utils.TokenTypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "failed to load token user",
				slog.Int("user_id", claims.UserID), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found or inactive"})
			return
		}

		// Set user information in context
		c.Set(AuthUserKey, user.ID)
		c.Set(AuthRolesKey, user.Roles())

		c.Next()
	}
}

// GuestOnlyMiddleware rejects requests that carry a valid access token.
func GuestOnlyMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if _, err := jwtUtil.ValidateToken(tokenString, utils.TokenTypeAccess); err == nil {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgNoPermission})
				return
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id set by JWTAuthMiddleware.
func UserID(c *gin.Context) (int, bool) {
	v, ok := c.Get(AuthUserKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

func Roles(c *gin.Context) []string {
	v, ok := c.Get(AuthRolesKey)
	if !ok {
		return nil
	}
	roles, _ := v.([]string)
	return roles
}
