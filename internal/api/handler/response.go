package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/videotube/user-service/internal/core/domain"
)

// SuccessResponse is the envelope of every 2xx response.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the envelope of every error response. Errors is always an
// array, empty when there are no field errors.
type ErrorResponse struct {
	Success bool                `json:"success" example:"false"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors"`
}

// LoginData is the payload of a successful login.
type LoginData struct {
	User         *domain.PublicUser `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

// TokenData is the payload of a successful refresh.
type TokenData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func respond(c echo.Context, status int, message string, data any) error {
	if data == nil {
		data = struct{}{}
	}
	return c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}
