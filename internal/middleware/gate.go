package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"systrack/console/internal/models"
	"systrack/console/internal/session"
	"systrack/console/internal/upstream"
)

// GateState is the per-request access decision. A request enters
// Unresolved, moves to Checking once a session is present, and ends
// Authorized, Denied or Redirected.
type GateState int

const (
	GateUnresolved GateState = iota
	GateChecking
	GateAuthorized
	GateDenied
	GateRedirected
)

// RoleVerifier confirms a bearer token's role against the upstream
// service. Satisfied by *upstream.Client.
type RoleVerifier interface {
	VerifyRole(ctx context.Context, token string, required models.Role) (models.Role, error)
}

// Decide runs the gate state machine for one request. The verify
// round-trip is skipped when the session was already verified for the
// required role on this mount: a single verification per top-level
// mount is sufficient, sub-routes gate structurally.
func Decide(ctx context.Context, sess models.Session, required models.Role, verifier RoleVerifier) (GateState, error) {
	if sess.Empty() {
		return GateRedirected, nil
	}
	if sess.VerifiedRole == required {
		return GateAuthorized, nil
	}

	// Checking: the server's answer decides, never local storage.
	role, err := verifier.VerifyRole(ctx, sess.Token, required)
	if err != nil {
		var authErr *upstream.AuthError
		if errors.As(err, &authErr) {
			return GateRedirected, err
		}
		return GateDenied, err
	}
	if role != required {
		return GateDenied, nil
	}
	return GateAuthorized, nil
}

// Gate enforces the required role for a route group. Redirected
// destroys the session; Denied renders the unauthorized message and
// keeps the session intact.
func Gate(required models.Role, verifier RoleVerifier, sessions *session.Store, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			// Gate placed before Auth; treat as an absent session.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "redirect": "/login"})
			return
		}

		state, err := Decide(c.Request.Context(), sess, required, verifier)
		switch state {
		case GateAuthorized:
			if sess.VerifiedRole != required {
				if err := sessions.MarkVerified(c.Request.Context(), sess.ID, required); err != nil {
					log.Warn().Err(err).Str("session_id", sess.ID).Msg("mark verified failed")
				}
			}
			c.Next()
		case GateRedirected:
			if err := sessions.Destroy(c.Request.Context(), sess.ID); err != nil {
				log.Warn().Err(err).Str("session_id", sess.ID).Msg("destroy session failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth_rejected", "redirect": "/login"})
		default:
			if err != nil {
				log.Warn().Err(err).Str("required_role", string(required)).Msg("role verification failed")
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Unauthorized access"})
		}
	}
}
