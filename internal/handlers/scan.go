package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"systrack/console/internal/middleware"
	"systrack/console/internal/scan"
)

func (h HandlerSet) StartScan(c *gin.Context) {
	id, err := h.scanner.Start()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scanner_unavailable"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"scanSessionId": id})
}

// SubmitScanFrame feeds one camera frame to a scan session. The first
// decoded barcode is resolved to its part record in the same response.
func (h HandlerSet) SubmitScanFrame(c *gin.Context) {
	status, err := h.scanner.SubmitFrame(c.Param("id"), c.Request.Body)
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "scan_session_not_found"})
		case errors.Is(err, scan.ErrUnknownFrameType):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported_frame"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_frame"})
		}
		return
	}

	if status.State == scan.StateDecoded {
		h.metrics.RecordScanDecode()
	} else {
		h.metrics.RecordScanMiss()
	}
	h.renderScanStatus(c, c.Param("id"), status)
}

func (h HandlerSet) GetScan(c *gin.Context) {
	status, err := h.scanner.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan_session_not_found"})
		return
	}
	h.renderScanStatus(c, c.Param("id"), status)
}

// StopScan releases the session. Stopping an already-released session
// is a no-op, so every client exit path may call it.
func (h HandlerSet) StopScan(c *gin.Context) {
	h.scanner.Stop(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) renderScanStatus(c *gin.Context, id string, status scan.Status) {
	resp := gin.H{"state": status.State}
	if status.State == scan.StateDecoded {
		result := status.Lookup
		if result == nil {
			// First look at a decoded session: resolve the part once
			// and pin it to the session for later polls.
			sess, _ := middleware.SessionFrom(c)
			resolved, err := h.lookup.Resolve(c.Request.Context(), sess.Token, status.Barcode)
			if err != nil {
				h.renderError(c, err)
				return
			}
			h.scanner.AttachLookup(id, resolved)
			result = &resolved
		}
		resp["barcode"] = result.Barcode
		if result.Found {
			resp["part"] = result.Part
		} else {
			resp["notFound"] = true
		}
	}
	c.JSON(http.StatusOK, resp)
}
