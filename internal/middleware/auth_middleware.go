package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ArowuTest/homeradio-cashout/pkg/jwt"
	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/exp/slog"
)

// Context keys set by the middleware
const (
	ContextOperator  = "operator"
	ContextRole      = "role"
	ContextRequestID = "RequestID"
)

// JWTAuthMiddleware creates a gin middleware for operator token authentication.
// With roles given, the token's role must be one of them.
func JWTAuthMiddleware(tokens *jwt.TokenService, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const bearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(authHeader[len(bearerSchema):]))
		if err != nil {
			slog.Warn("JWTAuthMiddleware: token rejected", "error", err, "path", c.FullPath())
			if errors.Is(err, jwtlib.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		if len(roles) > 0 && !hasRole(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}

		c.Set(ContextOperator, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func hasRole(allowed []string, role string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
