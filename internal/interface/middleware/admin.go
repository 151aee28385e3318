package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schedulr/admin-api/pkg/response"
)

// RequireAdmin gates a route group to callers holding the admin role. It runs
// after Auth and rejects before any handler or store work happens.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		if !caller.Role.IsAdmin() {
			response.AbortError(c, http.StatusForbidden, "admin privilege required", nil)
			return
		}
		c.Next()
	}
}
