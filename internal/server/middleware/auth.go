// Package middleware holds the session guard and request-scoped plumbing.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gemini-chat/backend/internal/security"
)

const bearerPrefix = "bearer "

const usernameKey = "auth.username"

// RequireAuth validates the Bearer (access) token from the Authorization
// header and stores the token's subject in the gin context for protected
// routes. The check is per-request and stateless. Every failure (missing
// header, malformed scheme, bad signature, expiry) gets the same 401 so the
// response reveals nothing about why the token was rejected.
func RequireAuth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}

		subject, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}

		c.Set(usernameKey, subject)
		c.Next()
	}
}

// UsernameFromContext returns the authenticated username set by RequireAuth.
func UsernameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(usernameKey)
	if !ok {
		return "", false
	}
	username, ok := v.(string)
	return username, ok
}

// extractBearer returns the Bearer token from an Authorization header value,
// or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
