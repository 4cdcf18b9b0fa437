package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"letter-backend/internal/shared/telemetry"
)

// ErrorResponse is the failure envelope shared by every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error sends a standardized error response. Server errors are logged;
// client errors are left to the request log.
func Error(c *gin.Context, status int, code, message string) {
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", map[string]any{
			"status":     status,
			"code":       code,
			"message":    message,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString("requestId"),
		})
	}
	Abort(c, status, code, message)
}

// Abort sends the error envelope without logging, for callers that already
// logged the failure with more detail.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}
