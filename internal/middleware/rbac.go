package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mentor-site-api/internal/models"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

// RequireCapability rejects callers whose role lacks any of caps.
func RequireCapability(caps ...models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		for _, capability := range caps {
			if !claims.Can(capability) {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "missing capability "+string(capability)))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// RequireRoles admits only the listed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
