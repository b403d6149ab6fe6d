package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/infra/security"
)

const (
	contextUserIDKey   = "auth_user_id"
	contextUsernameKey = "auth_username"
	contextEmailKey    = "auth_email"
)

// RequireAuth validates the bearer session token and stores the asserted
// identity on the gin context.
func RequireAuth(issuer *security.SessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := issuer.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session token"})
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Set(contextUsernameKey, claims.Username)
		c.Set(contextEmailKey, claims.Email)

		c.Next()
	}
}

// GetAuthenticatedUserID returns the user id asserted by the session token.
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	return getString(c, contextUserIDKey)
}

// GetAuthenticatedUsername returns the username asserted by the session token.
func GetAuthenticatedUsername(c *gin.Context) (string, bool) {
	return getString(c, contextUsernameKey)
}

func getString(c *gin.Context, key string) (string, bool) {
	value, ok := c.Get(key)
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	if !ok || str == "" {
		return "", false
	}
	return str, true
}
