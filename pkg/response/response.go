package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

// Success writes a success envelope with the given payload.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	})
}

// Error writes an error envelope. Details never include sensitive fields;
// handlers pass validation maps or nothing.
func Error(ctx *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, errEnvelope(ctx, status, message, details))
}

// AbortError writes an error envelope and stops the handler chain. Used by
// middleware guards.
func AbortError(ctx *gin.Context, status int, message string, details any) {
	ctx.AbortWithStatusJSON(status, errEnvelope(ctx, status, message, details))
}

func errEnvelope(ctx *gin.Context, status int, message string, details any) APIResponse[any] {
	return APIResponse[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     details,
	}
}
