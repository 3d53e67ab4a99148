package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"               // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // stock middleware: recover, request id, CORS
	"github.com/rs/zerolog/log"                  // global logger passed to the request logger

	"github.com/iliyamo/todo-api/internal/handler"    // import the handlers that implement the endpoints
	"github.com/iliyamo/todo-api/internal/middleware" // import middleware for JWT authentication and request logging
)

// RegisterMiddleware installs the middleware shared by every route.  CORS
// is wide open: any origin and header, with the default method set.
func RegisterMiddleware(e *echo.Echo) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"*"},
	}))
}

// RegisterRoutes registers routes that do not require authentication:
// the root banner and the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	// Load balancers and monitoring systems poll /healthz.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers signup and login, which are public, and the
// profile route, which requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, r middleware.Resolver) {
	g := e.Group("/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)

	users := e.Group("/users", middleware.JWTAuth(r))
	users.GET("/me", a.Me)
}

// RegisterTodos registers the todo routes.  All of them run JWTAuth first,
// so handlers only ever see the caller's own todos.
func RegisterTodos(e *echo.Echo, t *handler.TodoHandler, r middleware.Resolver) {
	auth := middleware.JWTAuth(r)
	g := e.Group("/todos", auth)
	g.GET("/", t.List)
	g.POST("/create", t.Create)
	g.PATCH("/:id/complete", t.Complete)
	g.PATCH("/:id/edit", t.Edit)
	// Same listing without the trailing slash.
	e.GET("/todos", t.List, auth)
}
