package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/api/handler"
	"github.com/videotube/user-service/internal/core/domain"
	"github.com/videotube/user-service/internal/core/ports"
)

// Authenticate resolves the caller from the accessToken cookie or, failing
// that, an "Authorization: Bearer" header. The token must verify and its
// subject must still exist; a store failure during that lookup is returned
// as-is rather than as an authentication failure. On success the identity is stored under
// handler.IdentityKey and on the request context.
func Authenticate(tokens ports.TokenService, users ports.UserRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := accessToken(c)
			if raw == "" {
				return domain.Unauthorized("unauthorized request")
			}

			claims, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					return domain.Unauthorized("access token expired")
				}
				return domain.Unauthorized("invalid access token")
			}

			ctx := c.Request().Context()
			user, err := users.FindByID(ctx, claims.UserID)
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Unauthorized("invalid access token")
			}
			if err != nil {
				log.Error().Err(err).Str("user_id", claims.UserID).Msg("identity lookup failed")
				return fmt.Errorf("authenticate: lookup user: %w", err)
			}

			id := &domain.Identity{
				UserID:   user.ID,
				Username: user.Username,
				Email:    user.Email,
				FullName: user.FullName,
			}
			c.Set(handler.IdentityKey, id)
			c.SetRequest(c.Request().WithContext(domain.WithIdentity(ctx, id)))

			return next(c)
		}
	}
}

func accessToken(c echo.Context) string {
	if ck, err := c.Cookie(handler.AccessTokenCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
