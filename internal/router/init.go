package router

import (
	userapp "github.com/schedulr/admin-api/internal/application"
	"github.com/schedulr/admin-api/internal/container"
	pginfra "github.com/schedulr/admin-api/internal/infrastructure/postgres"
	handlers "github.com/schedulr/admin-api/internal/interface/http"
	"github.com/schedulr/admin-api/internal/router/modules"
)

// InitModules wires the feature modules from the container singletons and
// registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	service := userapp.NewService(
		repo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetRabbitPub(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESUsersIndex,
		cfg.WebAppURL,
	)

	authHandler := handlers.NewAuthHandler(service, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	adminHandler := handlers.NewAdminUserHandler(service, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewAdminUsersModule(adminHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
