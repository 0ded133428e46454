package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce/internal/models"
)

var ErrResourceNotFound = errors.New("resource not found")

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "request is not authorized"})
			return
		}
		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(models.UserRoleAdmin, models.UserRoleSuperAdmin)
}

// CanAccess reports whether user may act on a resource owned by ownerID.
func CanAccess(user models.User, ownerID string) bool {
	return user.IsAdmin() || (ownerID != "" && user.ID == ownerID)
}

// OwnerResolver returns the ID of the user owning the resource a request targets.
// Wrap ErrResourceNotFound when the resource does not exist.
type OwnerResolver func(c *gin.Context) (string, error)

// OwnerParam resolves the owner straight from a path parameter holding a user ID.
func OwnerParam(name string) OwnerResolver {
	return func(c *gin.Context) (string, error) {
		return c.Param(name), nil
	}
}

func RequireOwnerOrAdmin(resolve OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "request is not authorized"})
			return
		}

		if user.IsAdmin() {
			c.Next()
			return
		}

		ownerID, err := resolve(c)
		if err != nil {
			if errors.Is(err, ErrResourceNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !CanAccess(user, ownerID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
