package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nova-events/backend/internal/models"
	"github.com/nova-events/backend/pkg/response"
)

// UserResolver re-resolves an identity against the credential store.
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireRole returns a middleware that allows only the given roles, trusting
// the role encoded in the token (token-only freshness policy).
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if _, ok := allowed[models.Role(role)]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireFreshRole is RequireRole with a re-resolve freshness policy: the
// user is looked up in the store and the stored role decides, so a role
// revoked after token issuance is honored immediately. A deleted user is
// rejected the same way.
func RequireFreshRole(resolver UserResolver, roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		idVal, ok := c.Get(ContextUserID)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		userID, _ := idVal.(uuid.UUID)
		user, err := resolver.GetByID(c.Request.Context(), userID)
		if err != nil || user == nil {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		// Keep downstream handlers in sync with the stored role.
		c.Set(ContextUserRole, string(user.Role))
		c.Next()
	}
}

// RequireNonAdmin rejects admin identities. Admins are categorically barred
// from registering for events; the token's encoded role is trusted here.
func RequireNonAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if role, _ := roleVal.(string); models.Role(role) == models.RoleAdmin {
			response.Forbidden(c, "admins are not allowed to register for events")
			c.Abort()
			return
		}
		c.Next()
	}
}
