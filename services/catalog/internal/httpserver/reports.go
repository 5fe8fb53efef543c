package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pokedex/pkg/apperr"
	"github.com/Skotchmaster/pokedex/pkg/logging"
	"github.com/Skotchmaster/pokedex/pkg/reqlog"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/util"
)

const (
	defaultReportWindow = 30 * 24 * time.Hour
	recentErrorsWindow  = 24 * time.Hour
)

var errBadRange = errors.New("invalid report range")

type ReportStore interface {
	TopAPIUsers(ctx context.Context, from, to time.Time, limit int) ([]reqlog.UserCount, error)
	RecentErrors(ctx context.Context, since time.Time, limit int) ([]reqlog.RequestLog, error)
	TopUsersByEndpoint(ctx context.Context, from, to time.Time) ([]reqlog.EndpointTopUser, error)
	ErrorsByEndpoint(ctx context.Context, from, to time.Time, limit int) ([]reqlog.EndpointErrorCount, error)
	UniqueAPIUsers(ctx context.Context, from, to time.Time) ([]reqlog.DailyUsers, error)
}

type ReportHTTP struct {
	Store ReportStore
	Now   func() time.Time
}

func (h *ReportHTTP) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// window reads ?from= and ?to= as RFC 3339 timestamps. Missing bounds default
// to the last def up to now.
func (h *ReportHTTP) window(c echo.Context, def time.Duration) (time.Time, time.Time, error) {
	to := h.now()
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Validation("to must be an RFC 3339 timestamp", errBadRange)
		}
		to = t
	}
	from := to.Add(-def)
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Validation("from must be an RFC 3339 timestamp", errBadRange)
		}
		from = t
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, apperr.Validation("from must be before to", errBadRange)
	}
	return from, to, nil
}

func limitParam(c echo.Context) int {
	return util.ParseIntDefault(c.QueryParam("limit"), reqlog.DefaultLimit)
}

func storeErr(l *slog.Logger, event string, err error) error {
	l.Error(event, "status", 500, "error", err)
	return apperr.Store(err)
}

func (h *ReportHTTP) TopAPIUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.top_api_users")

	from, to, err := h.window(c, defaultReportWindow)
	if err != nil {
		return err
	}
	out, err := h.Store.TopAPIUsers(ctx, from, to, limitParam(c))
	if err != nil {
		return storeErr(l, "top_api_users_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHTTP) RecentErrors(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.recent_errors")

	from, _, err := h.window(c, recentErrorsWindow)
	if err != nil {
		return err
	}
	out, err := h.Store.RecentErrors(ctx, from, limitParam(c))
	if err != nil {
		return storeErr(l, "recent_errors_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHTTP) TopUsersByEndpoint(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.top_users_by_endpoint")

	from, to, err := h.window(c, defaultReportWindow)
	if err != nil {
		return err
	}
	out, err := h.Store.TopUsersByEndpoint(ctx, from, to)
	if err != nil {
		return storeErr(l, "top_users_by_endpoint_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHTTP) ErrorsByEndpoint(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.error_by_endpoint")

	from, to, err := h.window(c, defaultReportWindow)
	if err != nil {
		return err
	}
	out, err := h.Store.ErrorsByEndpoint(ctx, from, to, limitParam(c))
	if err != nil {
		return storeErr(l, "error_by_endpoint_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHTTP) UniqueAPIUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.unique_api_users")

	from, to, err := h.window(c, defaultReportWindow)
	if err != nil {
		return err
	}
	out, err := h.Store.UniqueAPIUsers(ctx, from, to)
	if err != nil {
		return storeErr(l, "unique_api_users_error", err)
	}
	return c.JSON(http.StatusOK, out)
}
