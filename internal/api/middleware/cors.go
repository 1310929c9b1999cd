package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// streamHeaders are the response headers the browser needs to read off the
// chat event stream.
var streamHeaders = []string{"Content-Type", "Cache-Control", "X-Accel-Buffering"}

// CORS returns a CORS middleware for the widget front end. An empty allow
// list allows any origin. Requests from other origins are served without CORS
// headers, so the browser blocks them; preflights from them get 403.
func CORS(allowOrigins []string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowAny := len(allowOrigins) == 0
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, o := range allowOrigins {
		if o == "*" {
			allowAny = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	exposed := strings.Join(streamHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		preflight := c.Request.Method == http.MethodOptions

		_, ok := allowed[origin]
		switch {
		case origin == "":
			// same-origin or non-browser client
		case allowAny || ok:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Expose-Headers", exposed)
			c.Header("Vary", "Origin")
			if preflight {
				c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
				c.Header("Access-Control-Max-Age", "86400")
			}
		default:
			logger.Debug("Rejected cross-origin request",
				zap.String("origin", origin),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}

		if preflight {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
