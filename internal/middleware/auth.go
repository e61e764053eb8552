package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"systrack/console/internal/config"
	"systrack/console/internal/models"
	"systrack/console/internal/security"
	"systrack/console/internal/session"
)

const (
	ctxSession = "session"
	ctxClaims  = "access_claims"
)

// Auth resolves the presented gateway token to its session record.
// Restore always completes before any gate runs; an absent or expired
// session answers with a login redirect, never a bare failure.
func Auth(cfg *config.AppConfig, sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token", "redirect": "/login"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "redirect": "/login"})
			return
		}

		sess, err := sessions.Restore(c.Request.Context(), claims.SessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session_store_unavailable"})
			return
		}
		if sess.Empty() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_expired", "redirect": "/login"})
			return
		}
		if sess.UserID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_mismatch", "redirect": "/login"})
			return
		}

		c.Set(ctxClaims, *claims)
		c.Set(ctxSession, sess)

		c.Next()
	}
}

// SessionFrom returns the restored session placed by Auth.
func SessionFrom(c *gin.Context) (models.Session, bool) {
	value, exists := c.Get(ctxSession)
	if !exists {
		return models.Session{}, false
	}
	sess, ok := value.(models.Session)
	return sess, ok
}
