package middleware

// identity.go holds the helpers shared by the auth and logging middleware
// for reading per-request values back out of the Echo context.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/todo-api/internal/model"
)

const userKey = "user"

// CurrentUser returns the account stored by JWTAuth.  ok is false on
// routes that are not behind JWTAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
    u, ok := c.Get(userKey).(model.User)
    return u, ok
}

// requestID returns the id assigned by Echo's RequestID middleware.
func requestID(c echo.Context) string {
    if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
        return id
    }
    return c.Request().Header.Get(echo.HeaderXRequestID)
}
