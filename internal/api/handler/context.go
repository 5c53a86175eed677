package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/videotube/user-service/internal/core/domain"
)

// IdentityKey is the echo context key under which the authenticator stores
// the *domain.Identity of the caller.
const IdentityKey = "identity"

// ctxIdentity returns the identity attached by the authenticator. Presence
// proves the middleware ran.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	if id, ok := c.Get(IdentityKey).(*domain.Identity); ok && id != nil && id.UserID != "" {
		return id, nil
	}
	if id, ok := domain.IdentityFrom(c.Request().Context()); ok && id.UserID != "" {
		return id, nil
	}
	return nil, domain.Unauthorized("unauthorized request")
}
