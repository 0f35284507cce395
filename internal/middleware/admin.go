package middleware

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/skmtks/taskboard-api/internal/errors"
)

// RequireAdmin rejects requests whose principal does not hold the admin
// role. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !principal.IsAdmin() {
			apierrors.Forbidden(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
