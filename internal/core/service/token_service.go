package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/videotube/user-service/internal/core/domain"
	"github.com/videotube/user-service/internal/core/ports"
)

// TokenConfig holds the signing secrets and lifetimes. Access and refresh
// tokens must never share a secret.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type accessClaims struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access and refresh tokens.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	switch {
	case cfg.AccessSecret == "" || cfg.RefreshSecret == "":
		return nil, errors.New("token service: access and refresh secrets are required")
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, errors.New("token service: access and refresh secrets must differ")
	case cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0:
		return nil, errors.New("token service: token lifetimes must be positive")
	}
	return &TokenService{cfg: cfg, now: time.Now}, nil
}

// IssueAccessToken mints a short-lived token carrying the user's public claims.
func (s *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	claims := accessClaims{
		UserID:           user.ID,
		Username:         user.Username,
		FullName:         user.FullName,
		Email:            user.Email,
		RegisteredClaims: s.registered(user.ID, s.cfg.AccessTTL),
	}
	return sign(claims, s.cfg.AccessSecret)
}

// IssueRefreshToken mints a long-lived token carrying only the user id.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	claims := refreshClaims{
		UserID:           userID,
		RegisteredClaims: s.registered(userID, s.cfg.RefreshTTL),
	}
	return sign(claims, s.cfg.RefreshSecret)
}

// IssuePair mints a fresh access and refresh token for user.
func (s *TokenService) IssuePair(user *domain.User) (ports.TokenPair, error) {
	access, err := s.IssueAccessToken(user)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(user.ID)
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) VerifyAccessToken(token string) (*ports.AccessClaims, error) {
	var claims accessClaims
	if err := s.verify(token, s.cfg.AccessSecret, &claims); err != nil {
		return nil, err
	}
	return &ports.AccessClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		FullName:  claims.FullName,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) VerifyRefreshToken(token string) (*ports.RefreshClaims, error) {
	var claims refreshClaims
	if err := s.verify(token, s.cfg.RefreshSecret, &claims); err != nil {
		return nil, err
	}
	return &ports.RefreshClaims{
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// verify checks signature, algorithm and expiry. Expiry is reported as
// ErrTokenExpired, every other failure as ErrTokenInvalid.
func (s *TokenService) verify(token, secret string, claims jwt.Claims) error {
	if token == "" {
		return domain.ErrTokenInvalid
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	parsed, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return domain.ErrTokenInvalid
	}
	return nil
}

func (s *TokenService) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func sign(claims jwt.Claims, secret string) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
