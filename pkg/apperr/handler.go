package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pokedex/pkg/logging"
)

type Response struct {
	Error   Kind   `json:"error"`
	Message string `json:"message"`
}

// HTTPErrorHandler is installed as echo's HTTPErrorHandler on both services.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	l := logging.FromContext(c.Request().Context())

	code, body := resolve(err)
	switch {
	case code >= 500:
		l.Error("request_failed", "status", code, "kind", body.Error, "error", err)
	default:
		l.Warn("request_rejected", "status", code, "kind", body.Error, "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		l.Error("error_response_failed", "error", werr)
	}
}

func resolve(err error) (int, Response) {
	var ae *Error
	if errors.As(err, &ae) {
		code := StatusFor(ae.Kind)
		msg := ae.Message
		if code >= 500 {
			msg = http.StatusText(code)
		}
		return code, Response{Error: ae.Kind, Message: msg}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		kind := KindInternal
		switch {
		case he.Code == http.StatusUnauthorized || he.Code == http.StatusForbidden:
			kind = KindAuth
		case he.Code == http.StatusNotFound:
			kind = KindNotFound
		case he.Code < 500:
			kind = KindValidation
		}
		return he.Code, Response{Error: kind, Message: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, Response{
		Error:   KindInternal,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}
