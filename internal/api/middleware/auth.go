package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/liliang-cn/qualia/internal/domain"
)

// AuthConfig configures the API key gate for one route group
type AuthConfig struct {
	// APIKey is the shared key. Empty disables the key check.
	APIKey string
	// Methods lists the HTTP methods the group serves. Empty allows all.
	Methods []string
}

// Auth returns a middleware that restricts a route group to its methods and,
// when a key is configured, to callers presenting it through X-API-Key or a
// bearer token. Keys are never logged.
func Auth(cfg AuthConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	allow := strings.Join(cfg.Methods, ", ")

	return func(c *gin.Context) {
		if len(cfg.Methods) > 0 && !slices.Contains(cfg.Methods, c.Request.Method) {
			c.Header("Allow", allow)
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
			return
		}
		if cfg.APIKey == "" {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		source := "x-api-key"
		if key == "" {
			if bearer, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
				key = bearer
			}
			source = "bearer"
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1 {
			logger.Warn("Rejected admin request",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Bool("key_present", key != ""),
				zap.String("key_source", source),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthorized.Error()})
			return
		}

		c.Next()
	}
}
