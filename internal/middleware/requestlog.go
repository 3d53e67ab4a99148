package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/rs/zerolog"
)

// RequestLogger writes one zerolog line per request.  Server errors log
// at error level, client errors at warn, everything else at info.  The
// authenticated user id is included when JWTAuth ran.
func RequestLogger(l zerolog.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            var ev *zerolog.Event
            switch {
            case v.Status >= 500:
                ev = l.Error()
            case v.Status >= 400:
                ev = l.Warn()
            default:
                ev = l.Info()
            }
            if v.Error != nil {
                ev = ev.Err(v.Error)
            }
            if u, ok := CurrentUser(c); ok {
                ev = ev.Uint64("user_id", u.ID)
            }
            ev.Str("method", v.Method).
                Str("uri", v.URI).
                Int("status", v.Status).
                Dur("latency", v.Latency).
                Str("remote_ip", v.RemoteIP).
                Str("request_id", v.RequestID).
                Msg("request")
            return nil
        },
    })
}
