package server

import (
	"log/slog"
	"net/http"

	"github.com/crewbase/gangplank/internal/fault"
	"github.com/gin-gonic/gin"
)

// writeError maps a workflow error onto an HTTP status and a JSON body the
// caller can render verbatim.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch fault.KindOf(err) {
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindConflict:
		status = http.StatusConflict
	case fault.KindForbidden:
		status = http.StatusForbidden
	case fault.KindInvalid:
		status = http.StatusBadRequest
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusOf returns the HTTP status for a per-item bulk result error.
func statusOf(err error) int {
	switch fault.KindOf(err) {
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindConflict:
		return http.StatusConflict
	case fault.KindForbidden:
		return http.StatusForbidden
	case fault.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
