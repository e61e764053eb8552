package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"systrack/console/internal/ids"
	"systrack/console/internal/middleware"
	"systrack/console/internal/models"
	"systrack/console/internal/security"
	"systrack/console/internal/upstream"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type credentialsResponse struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.api.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// A rejected credential pair is an answer for the login form,
		// not a session teardown.
		var authErr *upstream.AuthError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": authErr.Message})
			return
		}
		h.renderError(c, err)
		return
	}

	h.openSession(c, creds)
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := h.api.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.openSession(c, creds)
}

// openSession turns upstream credentials into a stored session and a
// gateway access token.
func (h HandlerSet) openSession(c *gin.Context, creds upstream.Credentials) {
	sess := models.Session{
		ID:        ids.New(),
		Token:     creds.Token,
		Role:      models.Role(creds.Role),
		UserID:    creds.ID,
		Name:      creds.Name,
		CreatedAt: time.Now(),
	}
	if sess.Empty() {
		h.log.Error().Str("user_id", creds.ID).Msg("upstream credentials incomplete")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream_response_incomplete"})
		return
	}

	if err := h.sessions.Create(c.Request.Context(), sess); err != nil {
		h.log.Error().Err(err).Msg("create session failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session_store_unavailable"})
		return
	}

	token, err := security.GenerateAccessToken(
		h.cfg.Security.JWTSecret, sess.UserID, sess.ID, creds.Role, h.cfg.Security.JWTAccessTTL)
	if err != nil {
		h.log.Error().Err(err).Msg("sign access token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, credentialsResponse{
		Token:   token,
		Role:    creds.Role,
		ID:      creds.ID,
		Name:    creds.Name,
		Message: creds.Message,
	})
}

// Logout drops the stored session. The upstream token simply ages out;
// there is no upstream invalidation call to make.
func (h HandlerSet) Logout(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.sessions.Destroy(c.Request.Context(), sess.ID); err != nil {
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("destroy session failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session_store_unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Session answers the restore call the console makes on load.
func (h HandlerSet) Session(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session_expired", "redirect": "/login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           sess.UserID,
		"name":         sess.Name,
		"role":         sess.Role,
		"verifiedRole": sess.VerifiedRole,
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.engine.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
