package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowHeaders = "Content-Type,Accept,X-Request-Id"
	corsMaxAge       = "600"
)

// CORSMiddleware lets allow-listed browser origins call the API with the
// session cookie attached. Origins are compared case-insensitively and
// without a trailing slash. Preflights always end here.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[normalizeOrigin(origin)] = struct{}{}
	}

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		preflight := ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != ""

		if origin != "" {
			ctx.Header("Vary", "Origin")

			if _, ok := allowed[normalizeOrigin(origin)]; ok {
				ctx.Header("Access-Control-Allow-Origin", origin)
				ctx.Header("Access-Control-Allow-Credentials", "true")
				ctx.Header("Access-Control-Expose-Headers", "ETag,Content-Disposition,Retry-After,X-Request-Id")

				if preflight {
					ctx.Header("Access-Control-Allow-Methods", corsAllowMethods)
					ctx.Header("Access-Control-Allow-Headers", corsAllowHeaders)
					ctx.Header("Access-Control-Max-Age", corsMaxAge)
				}
			}
		}

		if preflight {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}
