package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"systrack/console/internal/middleware"
	"systrack/console/internal/models"
	"systrack/console/internal/upstream"
)

func (h HandlerSet) ListParts(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	page, err := h.engine.ListParts(c.Request.Context(), sess.Token, h.listQueryFrom(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h HandlerSet) FreeParts(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	parts, err := h.engine.FreeParts(c.Request.Context(), sess.Token)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

func (h HandlerSet) UnusableParts(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	parts, err := h.engine.UnusableParts(c.Request.Context(), sess.Token)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

func (h HandlerSet) CreatePart(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	var input upstream.PartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Status == models.PartStatusUnusable && input.UnusableReason == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": gin.H{"unusableReason": "Reason is required for unusable parts"},
		})
		return
	}
	for _, entry := range input.Specs {
		if !validSpecText(entry.Key) || !validSpecText(entry.Value) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"errors": gin.H{"specs": "Spec entries allow letters, numbers and spaces only"},
			})
			return
		}
	}

	part, message, err := h.engine.CreatePart(c.Request.Context(), sess.Token, input)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message, "part": part})
}

// diffUpdateRequest carries the form values next to the snapshot they
// were edited from; only changed fields travel upstream.
type diffUpdateRequest struct {
	Original map[string]string `json:"original" binding:"required"`
	Updated  map[string]string `json:"updated" binding:"required"`
}

func (h HandlerSet) UpdatePart(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	var req diffUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changed, message, err := h.engine.UpdatePart(c.Request.Context(), sess.Token, c.Param("id"), req.Original, req.Updated)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if !changed {
		c.JSON(http.StatusOK, gin.H{"updated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "message": message})
}

// validSpecText accepts non-empty alphanumeric text with spaces.
func validSpecText(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
		default:
			return false
		}
	}
	return true
}

func (h HandlerSet) DeletePart(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	message, err := h.engine.DeletePart(c.Request.Context(), sess.Token, c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
