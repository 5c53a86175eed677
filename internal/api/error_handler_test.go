package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videotube/user-service/internal/api/handler"
	"github.com/videotube/user-service/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", domain.Validation("invalid request"), http.StatusBadRequest, "invalid request"},
		{"unauthorized", domain.Unauthorized("invalid user credentials"), http.StatusUnauthorized, "invalid user credentials"},
		{"forbidden", domain.Forbidden("refresh token is expired or used"), http.StatusForbidden, "refresh token is expired or used"},
		{"not found", domain.NotFound("user does not exist"), http.StatusNotFound, "user does not exist"},
		{"conflict", domain.Conflict("user with email or username already exists"), http.StatusConflict, "user with email or username already exists"},
		{"upload failed", domain.UploadFailed("failed to upload avatar"), http.StatusInternalServerError, "failed to upload avatar"},
		{"wrapped domain error", fmt.Errorf("ctx: %w", domain.NotFound("gone")), http.StatusNotFound, "gone"},
		{"echo error", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"), http.StatusRequestEntityTooLarge, "Request Entity Too Large"},
		{"unexpected", errors.New("db exploded"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.New(io.Discard))(tc.err, c)

			assert.Equal(t, tc.status, rec.Code)
			var body handler.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.message, body.Message)
			assert.NotNil(t, body.Errors)
		})
	}
}

func TestHTTPErrorHandler_FieldErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := domain.Validation("invalid request",
		domain.FieldError{Field: "email", Message: "email must be a valid email"})
	NewHTTPErrorHandler(zerolog.New(io.Discard))(err, c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"message":"invalid request","errors":[{"field":"email","message":"email must be a valid email"}]}`,
		rec.Body.String())
}

func TestHTTPErrorHandler_InternalDetailsHidden(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.New(io.Discard))(errors.New("pq: password authentication failed"), c)

	assert.NotContains(t, rec.Body.String(), "pq:")
}
