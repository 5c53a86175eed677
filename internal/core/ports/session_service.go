package ports

import (
	"context"

	"github.com/videotube/user-service/internal/core/domain"
)

// SignupInput is the schema-valid signup payload. AvatarPath and
// CoverImagePath point at staged local files; AvatarPath is required.
type SignupInput struct {
	Username       string
	Email          string
	Password       string
	FullName       string
	AvatarPath     string
	CoverImagePath string
}

// LoginInput identifies the account by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Tokens TokenPair
	User   *domain.PublicUser
}

// SessionService is the session manager: it owns the
// LoggedOut -> ActiveSession -> LoggedOut lifecycle.
type SessionService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.PublicUser, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// AccountDetailsInput carries the editable profile fields. Empty strings are
// left unchanged.
type AccountDetailsInput struct {
	FullName string
	Email    string
}

// AccountService covers profile reads and updates for an authenticated user.
type AccountService interface {
	CurrentUser(ctx context.Context, userID string) (*domain.PublicUser, error)
	UpdateAccountDetails(ctx context.Context, userID string, in AccountDetailsInput) (*domain.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)
}

// RefreshLocker serialises refresh rotation for one user across instances.
// Acquire reports false when another rotation holds the lock.
type RefreshLocker interface {
	Acquire(ctx context.Context, userID string) (acquired bool, release func(), err error)
}

// AuditSink receives audit events. Record must not block the caller.
type AuditSink interface {
	Record(event domain.AuthEvent)
}
