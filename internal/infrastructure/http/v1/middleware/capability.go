package middleware

import (
	"github.com/gin-gonic/gin"

	"wareflow/internal/core/apperror"
	appctx "wareflow/internal/core/context"
	"wareflow/internal/core/security"
)

// RequireCapability checks the actor's role against the capability table.
// Access is decided once here; handlers and services trust the context.
func RequireCapability(capability security.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := appctx.GetActor(c.Request.Context())
		if actor == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if !security.Can(actor.Role, capability) {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("required_capability", string(capability)),
			)
			c.Abort()
			return
		}

		c.Next()
	}
}
