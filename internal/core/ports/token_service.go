package ports

import (
	"time"

	"github.com/videotube/user-service/internal/core/domain"
)

// AccessClaims is the decoded payload of a verified access token.
type AccessClaims struct {
	UserID    string
	Username  string
	FullName  string
	Email     string
	ExpiresAt time.Time
}

// RefreshClaims is the decoded payload of a verified refresh token.
type RefreshClaims struct {
	UserID    string
	ExpiresAt time.Time
}

// TokenService mints and verifies signed tokens. Verification failures are
// domain.ErrTokenExpired or domain.ErrTokenInvalid.
type TokenService interface {
	IssuePair(user *domain.User) (TokenPair, error)
	VerifyAccessToken(token string) (*AccessClaims, error)
	VerifyRefreshToken(token string) (*RefreshClaims, error)
}
