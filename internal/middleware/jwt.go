package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"  // context carries the request deadline into the resolver
    "errors"   // errors distinguishes credential failures from store failures
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming
    "time"     // bounds the account lookup

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers
    "github.com/rs/zerolog/log"   // structured logging for store failures

    "github.com/iliyamo/todo-api/internal/model"
    "github.com/iliyamo/todo-api/internal/service"
)

// Resolver turns a raw bearer token into the account it authenticates.
// service.AuthService implements it.
type Resolver interface {
    Resolve(ctx context.Context, raw string) (model.User, error)
}

const credentialsMsg = "could not validate credentials"

// resolveTimeout bounds the account lookup, like the per-handler store
// deadline.
const resolveTimeout = 5 * time.Second

// JWTAuth returns an Echo middleware that requires a Bearer access token,
// resolves it to an existing account and stores that account in the
// request context.  Handlers read it back with CurrentUser.  Every
// credential problem (missing header, bad or expired token, deleted
// account) answers 401 with the same body.
func JWTAuth(r Resolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
            if !ok {
                return unauthorized(c)
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), resolveTimeout)
            u, err := r.Resolve(ctx, raw)
            cancel()
            if err != nil {
                if errors.Is(err, service.ErrInvalidCredentials) {
                    return unauthorized(c)
                }
                log.Error().Err(err).Str("request_id", requestID(c)).Msg("resolve identity failed")
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
            }

            c.Set(userKey, u)
            return next(c)
        }
    }
}

// bearerToken extracts the token from an Authorization header value.  The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
    scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
    if !found || !strings.EqualFold(scheme, "Bearer") {
        return "", false
    }
    token = strings.TrimSpace(token)
    return token, token != ""
}

func unauthorized(c echo.Context) error {
    c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": credentialsMsg})
}
