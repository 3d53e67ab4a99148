package middleware

import (
    "bytes"
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/todo-api/internal/model"
    "github.com/iliyamo/todo-api/internal/service"
)

type resolverFunc func(ctx context.Context, raw string) (model.User, error)

func (f resolverFunc) Resolve(ctx context.Context, raw string) (model.User, error) { return f(ctx, raw) }

var alice = model.User{ID: 7, Email: "a@x.com"}

func tokenResolver(valid string) Resolver {
    return resolverFunc(func(_ context.Context, raw string) (model.User, error) {
        if raw == valid {
            return alice, nil
        }
        return model.User{}, service.ErrInvalidCredentials
    })
}

func serve(t *testing.T, r Resolver, header string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    e.GET("/me", func(c echo.Context) error {
        u, ok := CurrentUser(c)
        require.True(t, ok)
        return c.JSON(http.StatusOK, u)
    }, JWTAuth(r))

    req := httptest.NewRequest(http.MethodGet, "/me", nil)
    if header != "" {
        req.Header.Set(echo.HeaderAuthorization, header)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuth_AcceptsBearer(t *testing.T) {
    for _, h := range []string{"Bearer good", "bearer good", "BEARER  good "} {
        rec := serve(t, tokenResolver("good"), h)
        assert.Equal(t, http.StatusOK, rec.Code, h)
        assert.Contains(t, rec.Body.String(), `"id":7`)
    }
}

func TestJWTAuth_Rejects(t *testing.T) {
    cases := map[string]string{
        "missing":      "",
        "wrong scheme": "Basic good",
        "no token":     "Bearer ",
        "bad token":    "Bearer nope",
    }
    for name, h := range cases {
        t.Run(name, func(t *testing.T) {
            rec := serve(t, tokenResolver("good"), h)
            assert.Equal(t, http.StatusUnauthorized, rec.Code)
            assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
            assert.JSONEq(t, `{"error":"could not validate credentials"}`, rec.Body.String())
        })
    }
}

func TestJWTAuth_StoreFailureIs500(t *testing.T) {
    r := resolverFunc(func(context.Context, string) (model.User, error) {
        return model.User{}, errors.New("db down")
    })
    rec := serve(t, r, "Bearer good")
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.NotContains(t, rec.Body.String(), "db down")
}

func TestJWTAuth_ResolveHasDeadline(t *testing.T) {
    var left time.Duration
    r := resolverFunc(func(ctx context.Context, _ string) (model.User, error) {
        dl, ok := ctx.Deadline()
        require.True(t, ok, "resolver must run with a deadline")
        left = time.Until(dl)
        return alice, nil
    })
    rec := serve(t, r, "Bearer good")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Greater(t, left, time.Duration(0))
    assert.LessOrEqual(t, left, resolveTimeout)
}

func TestCurrentUser_Absent(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
    _, ok := CurrentUser(c)
    assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
    var buf bytes.Buffer
    e := echo.New()
    e.Use(RequestLogger(zerolog.New(&buf)))
    e.GET("/me", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, JWTAuth(tokenResolver("good")))

    req := httptest.NewRequest(http.MethodGet, "/me", nil)
    req.Header.Set(echo.HeaderAuthorization, "Bearer good")
    e.ServeHTTP(httptest.NewRecorder(), req)

    out := buf.String()
    assert.Contains(t, out, `"level":"info"`)
    assert.Contains(t, out, `"status":204`)
    assert.Contains(t, out, `"user_id":7`)
    assert.NotContains(t, out, "good", "token must not be logged")

    buf.Reset()
    e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/me", nil))
    assert.Contains(t, buf.String(), `"level":"warn"`)
    assert.Contains(t, buf.String(), `"status":401`)
}
