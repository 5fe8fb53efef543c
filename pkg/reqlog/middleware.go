package reqlog

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pokedex/pkg/logging"
)

type Appender interface {
	Append(ctx context.Context, rec *RequestLog) error
}

// Middleware appends a RequestLog for every request except health checks. It
// must be registered before the request logger so the error handler has
// already written the final status when it runs.
func Middleware(store Appender) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, "/health/") {
				return next(c)
			}

			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = c.Request().URL.Path
			}
			uid, _ := c.Get("user_id").(string)

			rec := &RequestLog{
				Timestamp:      start.UTC(),
				UserID:         uid,
				Method:         c.Request().Method,
				Endpoint:       endpoint,
				StatusCode:     c.Response().Status,
				ResponseTimeMs: time.Since(start).Milliseconds(),
			}

			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
			defer cancel()
			if err := store.Append(ctx, rec); err != nil {
				logging.FromContext(c.Request().Context()).Error("request_log_failed", "endpoint", endpoint, "error", err)
			}
			return nil
		}
	}
}
