package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/api/handler"
	"github.com/videotube/user-service/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the {"success": false, "message", "errors"} envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

var kindStatus = []struct {
	kind   error
	status int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrUploadFailed, http.StatusInternalServerError},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	body := handler.ErrorResponse{Errors: []domain.FieldError{}}

	// Echo's own errors (router 404/405, body limit, ...)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		body.Message = fmt.Sprintf("%v", he.Message)
		return he.Code, body
	}

	var derr *domain.Error
	if errors.As(err, &derr) {
		for _, ks := range kindStatus {
			if errors.Is(derr.Kind, ks.kind) {
				body.Message = derr.Message
				if body.Message == "" {
					body.Message = ks.kind.Error()
				}
				if len(derr.Fields) > 0 {
					body.Errors = derr.Fields
				}
				if ks.status >= http.StatusInternalServerError {
					logUnhandled(log, c, err)
				}
				return ks.status, body
			}
		}
	}

	logUnhandled(log, c, err)
	body.Message = "internal server error"
	return http.StatusInternalServerError, body
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
}
