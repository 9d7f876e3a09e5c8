package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/strack-api/internal/models"
	"github.com/noah-isme/strack-api/internal/service"
	appErrors "github.com/noah-isme/strack-api/pkg/errors"
	"github.com/noah-isme/strack-api/pkg/response"
)

// Capability names one roster mutation a session may perform.
type Capability string

const (
	CapabilityAdd    Capability = "add"
	CapabilityEdit   Capability = "edit"
	CapabilityDelete Capability = "delete"
)

// Allows reports whether perms grants the capability.
func (c Capability) Allows(perms models.Permissions) bool {
	switch c {
	case CapabilityAdd:
		return perms.CanAdd
	case CapabilityEdit:
		return perms.CanEdit
	case CapabilityDelete:
		return perms.CanDelete
	}
	return false
}

// Session derives the caller's session from stored claims.
func Session(c *gin.Context) models.Session {
	return service.SessionFrom(Claims(c))
}

// RequireCapability rejects anonymous callers with 401 and signed-in callers
// lacking the capability with 403.
func RequireCapability(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := Session(c)
		if !session.Authenticated {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !capability.Allows(models.PermissionsFor(session)) {
			response.Error(c, appErrors.ErrAdminModeRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles restricts a route to the given roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
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
