package middlewares

import (
	"net/http"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/gin-gonic/gin"
)

// RequireAnyRole rejects actors whose role is not in allowed. Run it after
// the gatekeeper.
func RequireAnyRole(allowed ...access.Role) gin.HandlerFunc {
	set := make(map[access.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}
		if _, ok := set[actor.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Your role does not allow this action.",
				},
			})
			return
		}
		c.Next()
	}
}
