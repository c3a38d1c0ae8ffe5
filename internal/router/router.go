package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/devconnect/devconnect/api/handler"
)

type Handlers struct {
	Users  *apiHandler.UsersHandler
	Health *apiHandler.HealthHandler
}

// New wires the registry's public surface: the json-server style user
// roster and a health probe.
func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/users", handlers.Users.List)
	r.POST("/users", handlers.Users.Create)

	return r
}
