package middleware

import (
	"net/http"

	"tam_website/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware lets the request through when the caller's stored roles include any of allowedRoles
func RoleMiddleware(message string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rolesVal, exists := c.Get(AuthRolesKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Roles not found, ensure JWT middleware runs first"})
			return
		}

		userRoles, ok := rolesVal.([]string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid roles type"})
			return
		}

		isAllowed := false
		for _, role := range userRoles {
			for _, allowedRole := range allowedRoles {
				if role == allowedRole {
					isAllowed = true
					break
				}
			}
		}

		if !isAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": message})
			return
		}

		c.Next()
	}
}

// SuperuserMiddleware guards user management
func SuperuserMiddleware() gin.HandlerFunc {
	return RoleMiddleware(msgNoPermission, model.PermissionAdmin)
}

// ContentManagerMiddleware allows superusers and authors into the content admin
func ContentManagerMiddleware() gin.HandlerFunc {
	return RoleMiddleware(msgNoPermission, model.PermissionAdmin, model.PermissionAuthor)
}

// AuthorMiddleware guards the author article endpoints
func AuthorMiddleware() gin.HandlerFunc {
	return RoleMiddleware("You must be an authenticated author to perform this action.", model.PermissionAuthor)
}
