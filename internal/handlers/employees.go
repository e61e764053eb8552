package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"systrack/console/internal/middleware"
	"systrack/console/internal/upstream"
)

func (h HandlerSet) ListEmployees(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	page, err := h.engine.ListEmployees(c.Request.Context(), sess.Token, h.listQueryFrom(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h HandlerSet) UnassignedEmployees(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	employees, err := h.engine.UnassignedEmployees(c.Request.Context(), sess.Token)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

func (h HandlerSet) CreateEmployee(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	var input upstream.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Phone != "" && !validPhone(input.Phone) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": gin.H{"phone": "Phone must be at most 10 digits"},
		})
		return
	}

	employee, message, err := h.engine.CreateEmployee(c.Request.Context(), sess.Token, input)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message, "employee": employee})
}

func (h HandlerSet) UpdateEmployee(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	var req diffUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if phone, ok := req.Updated["phone"]; ok && phone != "" && !validPhone(phone) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": gin.H{"phone": "Phone must be at most 10 digits"},
		})
		return
	}

	changed, message, err := h.engine.UpdateEmployee(c.Request.Context(), sess.Token, c.Param("id"), req.Original, req.Updated)
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

func (h HandlerSet) DeleteEmployee(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)

	message, err := h.engine.DeleteEmployee(c.Request.Context(), sess.Token, c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// validPhone accepts up to ten digits and nothing else.
func validPhone(phone string) bool {
	if len(phone) > 10 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
