package ports

import (
	"context"

	"github.com/videotube/user-service/internal/core/domain"
)

// UserRepository is the Credential Store. Implementations return
// domain.ErrNotFound for missing users and domain.ErrConflict when a unique
// username or email constraint is violated.
type UserRepository interface {
	// FindByUsernameOrEmail returns the first user whose username equals
	// username or whose email equals email. Empty arguments are ignored.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateProfile applies patch and returns the updated user.
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	// SetRefreshToken overwrites the stored refresh token. An empty token
	// clears it.
	SetRefreshToken(ctx context.Context, id, token string) error
	// SwapRefreshToken stores next only if the stored value still equals
	// current, reporting whether the swap happened.
	SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error)
	Ping(ctx context.Context) error
}

// AuditRepository persists audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
