package middlewares

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps the request body. Reads past the cap fail with
// *http.MaxBytesError, which handlers turn into 400 or 413.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

// RequireContentType rejects write requests whose media type is not one of
// allowed with 415. Parameters such as charset or boundary are ignored.
func RequireContentType(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if err == nil {
			for _, a := range allowed {
				if strings.EqualFold(mediaType, a) {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
			"error": gin.H{
				"code":      "unsupported_media_type",
				"message":   "Content-Type must be " + strings.Join(allowed, " or "),
				"requestId": c.GetString(CtxRequestID),
			},
		})
	}
}

func RequireJSON() gin.HandlerFunc {
	return RequireContentType("application/json")
}

func RequireMultipart() gin.HandlerFunc {
	return RequireContentType("multipart/form-data")
}
