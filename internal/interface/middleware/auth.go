package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/schedulr/admin-api/internal/domain/entity"
	"github.com/schedulr/admin-api/pkg/helpers"
	"github.com/schedulr/admin-api/pkg/response"
)

const callerKey = "caller"

// Caller is the authenticated identity attached to the request context by
// Auth and consumed by RequireAdmin and the handlers.
type Caller struct {
	ID    int64
	Email string
	Role  entity.Role
}

// GetCaller returns the authenticated caller, if any.
func GetCaller(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}

// SetCaller attaches the caller identity. Exposed for tests.
func SetCaller(c *gin.Context, caller Caller) {
	c.Set(callerKey, caller)
}

// Auth validates the access token and ensures an active session exists in
// Redis, then attaches the caller identity to the request context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		data, err := rdb.HGetAll(c.Request.Context(), "user:session:"+claims.UserID).Result()
		if err != nil || len(data) == 0 {
			response.AbortError(c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		id, err := strconv.ParseInt(data["user_id"], 10, 64)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid session", nil)
			return
		}
		SetCaller(c, Caller{ID: id, Email: data["email"], Role: entity.Role(data["role"])})
		c.Next()
	}
}
