package handler

import (
	"context"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/core/domain"
	"github.com/videotube/user-service/internal/core/ports"
)

var testLogger = zerolog.New(io.Discard)

type stubSessionService struct {
	signupFn         func(ctx context.Context, in ports.SignupInput) (*domain.PublicUser, error)
	loginFn          func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
	logoutFn         func(ctx context.Context, userID string) error
	refreshFn        func(ctx context.Context, token string) (*ports.TokenPair, error)
	changePasswordFn func(ctx context.Context, userID, oldPassword, newPassword string) error
}

func (s *stubSessionService) Signup(ctx context.Context, in ports.SignupInput) (*domain.PublicUser, error) {
	return s.signupFn(ctx, in)
}

func (s *stubSessionService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubSessionService) Logout(ctx context.Context, userID string) error {
	return s.logoutFn(ctx, userID)
}

func (s *stubSessionService) Refresh(ctx context.Context, token string) (*ports.TokenPair, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubSessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return s.changePasswordFn(ctx, userID, oldPassword, newPassword)
}

type stubAccountService struct {
	currentFn func(ctx context.Context, userID string) (*domain.PublicUser, error)
	detailsFn func(ctx context.Context, userID string, in ports.AccountDetailsInput) (*domain.PublicUser, error)
	avatarFn  func(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)
	coverFn   func(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)
}

func (s *stubAccountService) CurrentUser(ctx context.Context, userID string) (*domain.PublicUser, error) {
	return s.currentFn(ctx, userID)
}

func (s *stubAccountService) UpdateAccountDetails(ctx context.Context, userID string, in ports.AccountDetailsInput) (*domain.PublicUser, error) {
	return s.detailsFn(ctx, userID, in)
}

func (s *stubAccountService) UpdateAvatar(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
	return s.avatarFn(ctx, userID, localPath)
}

func (s *stubAccountService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
	return s.coverFn(ctx, userID, localPath)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// authenticated marks c as belonging to user-1, as the authenticator would.
func authenticated(c echo.Context) echo.Context {
	c.Set(IdentityKey, &domain.Identity{UserID: "user-1", Username: "alice"})
	return c
}
