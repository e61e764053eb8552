package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"systrack/console/internal/middleware"
	"systrack/console/internal/upstream"
)

func (h HandlerSet) ListSystems(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	systems, err := h.engine.ListSystems(c.Request.Context(), sess.Token)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"systems": systems})
}

type createSystemRequest struct {
	Name       string   `json:"name"`
	Parts      []string `json:"parts"`
	EmployeeID string   `json:"employeeId"`
}

func (h HandlerSet) CreateSystem(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	var req createSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.engine.CreateSystem(c.Request.Context(), sess.Token, upstream.SystemInput{
		Name:       req.Name,
		Parts:      req.Parts,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

func (h HandlerSet) SystemParts(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	parts, err := h.engine.SystemParts(c.Request.Context(), sess.Token, c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

type updateSystemRequest struct {
	Name  string   `json:"name" binding:"required"`
	Parts []string `json:"parts"`
}

// UpdateSystem renames a system and/or attaches more free parts.
func (h HandlerSet) UpdateSystem(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	var req updateSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.engine.AttachParts(c.Request.Context(), sess.Token, c.Param("id"), req.Name, req.Parts)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

type assignSystemRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
}

func (h HandlerSet) AssignSystem(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	var req assignSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.engine.AssignEmployee(c.Request.Context(), sess.Token, c.Param("id"), req.EmployeeID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h HandlerSet) UnassignSystem(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	message, err := h.engine.UnassignSystem(c.Request.Context(), sess.Token, c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h HandlerSet) RemovePart(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	message, err := h.engine.DetachPart(c.Request.Context(), sess.Token, c.Param("id"), c.Param("partId"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h HandlerSet) Stats(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	stats, err := h.engine.Stats(c.Request.Context(), sess.Token)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h HandlerSet) Logs(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	logs, err := h.engine.Logs(c.Request.Context(), sess.Token)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
