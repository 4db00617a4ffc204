package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edustore/edustore-backend/internal/models"
	"github.com/edustore/edustore-backend/internal/sessions"
	"github.com/edustore/edustore-backend/internal/tokens"
	"github.com/edustore/edustore-backend/pkg/logger"
)

const (
	claimsContextKey = "claims"
	tokenContextKey  = "rawToken"
)

// RequireAuth verifies the request's bearer token and stores the claims in
// the context. Missing, malformed, expired and revoked tokens all produce
// the same 401; the specific cause is only logged.
func RequireAuth(mgr *tokens.Manager, bl *sessions.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims, err := mgr.Parse(raw)
		if err != nil {
			logger.Debugf("rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		revoked, err := bl.IsRevoked(c.Request.Context(), raw)
		if err != nil {
			logger.Warnf("blacklist check failed: %v", err)
		}
		if revoked {
			logger.Debugf("rejected revoked token for %q", claims.Username)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Set(tokenContextKey, raw)
		c.Next()
	}
}

// RequireAdmin composes after RequireAuth and rejects non-admin identities.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if claims.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the verified claims stored by RequireAuth.
func ClaimsFrom(c *gin.Context) (*tokens.Claims, bool) {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*tokens.Claims)
	return claims, ok
}

// RawToken returns the bearer token stored by RequireAuth, or "".
func RawToken(c *gin.Context) string {
	return c.GetString(tokenContextKey)
}
