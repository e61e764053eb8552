package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"systrack/console/internal/middleware"
	"systrack/console/internal/upstream"
)

// renderError maps an upstream failure to the console's response
// contract. An auth rejection ends the session on the spot; a
// validation failure keeps per-field messages; not-found is a distinct
// body rather than an error notice; transport failures stay generic.
func (h HandlerSet) renderError(c *gin.Context, err error) {
	var (
		authErr  *upstream.AuthError
		valErr   *upstream.ValidationError
		conflict *upstream.ConflictError
		notFound *upstream.NotFoundError
		netErr   *upstream.NetworkError
		apiErr   *upstream.APIError
	)

	switch {
	case errors.As(err, &authErr):
		if sess, ok := middleware.SessionFrom(c); ok {
			if derr := h.sessions.Destroy(c.Request.Context(), sess.ID); derr != nil {
				h.log.Warn().Err(derr).Str("session_id", sess.ID).Msg("destroy session failed")
			}
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth_rejected", "redirect": "/login"})
	case errors.As(err, &valErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": valErr.Fields})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"message": conflict.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"notFound": true, "message": notFound.Message})
	case errors.As(err, &netErr):
		h.log.Error().Err(err).Msg("upstream unreachable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream_unreachable"})
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"message": apiErr.Message})
	default:
		h.log.Error().Err(err).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
