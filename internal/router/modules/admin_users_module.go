package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schedulr/admin-api/internal/container"
	handlers "github.com/schedulr/admin-api/internal/interface/http"
	"github.com/schedulr/admin-api/internal/interface/middleware"
	"github.com/schedulr/admin-api/pkg/helpers"
)

// AdminUsersModule mounts the admin-only user management routes under
// /api/admin/users. Every route sits behind the session check and the admin
// gate, so non-admin callers are rejected before any handler runs.
type AdminUsersModule struct {
	Handler *handlers.AdminUserHandler
	JWT     *helpers.JWTManager
}

func NewAdminUsersModule(h *handlers.AdminUserHandler, jwt *helpers.JWTManager) *AdminUsersModule {
	return &AdminUsersModule{Handler: h, JWT: jwt}
}

func (m *AdminUsersModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(
		middleware.Auth(container.GetRedis(), m.JWT),
		middleware.RequireAdmin(),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByCaller(), nil),
	)
	{
		admin.GET("/users", m.Handler.List)
		admin.GET("/users/search", m.Handler.Search)
		admin.GET("/users/:id", m.Handler.Get)
		admin.POST("/users", m.Handler.Add)
		admin.PATCH("/users/:id", m.Handler.Update)
		admin.DELETE("/users/:id", m.Handler.Delete)
	}
}
