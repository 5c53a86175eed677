package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/core/domain"
	"github.com/videotube/user-service/internal/core/ports"
)

// SessionService implements ports.SessionService on top of the Credential
// Store, the password hasher and the token service.
type SessionService struct {
	repo     ports.UserRepository
	hasher   *PasswordHasher
	tokens   ports.TokenService
	uploader ports.MediaUploader
	locker   ports.RefreshLocker
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time
}

// SessionOption customises a SessionService.
type SessionOption func(*SessionService)

// WithRefreshLocker serialises refresh rotation per user across instances.
func WithRefreshLocker(l ports.RefreshLocker) SessionOption {
	return func(s *SessionService) { s.locker = l }
}

// WithAuditSink records session transitions.
func WithAuditSink(a ports.AuditSink) SessionOption {
	return func(s *SessionService) { s.audit = a }
}

func NewSessionService(
	repo ports.UserRepository,
	hasher *PasswordHasher,
	tokens ports.TokenService,
	uploader ports.MediaUploader,
	log zerolog.Logger,
	opts ...SessionOption,
) *SessionService {
	s := &SessionService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		uploader: uploader,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a new account. Handles and the full name are normalised
// before their lengths are checked. The password is hashed before any media
// upload so a rejected signup leaves nothing on the media host. The avatar is
// required and must upload successfully; the cover image is best-effort.
func (s *SessionService) Signup(ctx context.Context, in ports.SignupInput) (*domain.PublicUser, error) {
	username := domain.NormalizeHandle(in.Username)
	email := domain.NormalizeHandle(in.Email)
	fullName := normalizeName(in.FullName)

	if err := checkFields(
		lengthError("username", username, usernameMinLen, usernameMaxLen),
		lengthError("fullName", fullName, fullNameMinLen, fullNameMaxLen),
	); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.Conflict("user with email or username already exists")
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("signup: lookup user: %w", err)
	}

	if in.AvatarPath == "" {
		return nil, domain.Validation("avatar file is required",
			domain.FieldError{Field: "avatar", Message: "avatar is required"})
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	avatar, err := s.uploader.Upload(ctx, ports.MediaAvatar, in.AvatarPath)
	if err != nil || avatar == nil {
		s.log.Error().Err(err).Str("username", username).Msg("avatar upload failed")
		return nil, domain.UploadFailed("failed to upload avatar")
	}

	var coverURL string
	if in.CoverImagePath != "" {
		cover, err := s.uploader.Upload(ctx, ports.MediaCoverImage, in.CoverImagePath)
		if err != nil || cover == nil {
			s.log.Warn().Err(err).Str("username", username).Msg("cover image upload failed, continuing without it")
		} else {
			coverURL = cover.URL
		}
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatar.URL,
		CoverImageURL: coverURL,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("user with email or username already exists")
		}
		return nil, fmt.Errorf("signup: create user: %w", err)
	}

	s.record(domain.EventSignup, created.ID, username, "")
	s.log.Info().Str("user_id", created.ID).Str("username", username).Msg("user registered")
	return created.Public(), nil
}

// Login verifies credentials and starts a new session. The stored refresh
// token is overwritten, which revokes any previous session.
func (s *SessionService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	username := domain.NormalizeHandle(in.Username)
	email := domain.NormalizeHandle(in.Email)
	if username == "" && email == "" {
		return nil, domain.Validation("username or email is required",
			domain.FieldError{Field: "username", Message: "username or email is required"})
	}
	identifier := username
	if identifier == "" {
		identifier = email
	}

	user, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.record(domain.EventLoginFailed, "", identifier, "unknown user")
			return nil, domain.NotFound("user does not exist")
		}
		return nil, fmt.Errorf("login: lookup user: %w", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.record(domain.EventLoginFailed, user.ID, identifier, "bad password")
		return nil, domain.Unauthorized("invalid user credentials")
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue tokens: %w", err)
	}
	if err := s.repo.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("login: store refresh token: %w", err)
	}

	s.record(domain.EventLogin, user.ID, identifier, "")
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{Tokens: pair, User: user.Public()}, nil
}

// Logout clears the stored refresh token. Logging out twice is not an error.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("logout: %w", err)
	}
	s.record(domain.EventLogout, userID, "", "")
	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

// Refresh exchanges the current refresh token for a new pair. The presented
// token must equal the stored one; the replacement is written with a
// compare-and-swap so only one of two concurrent rotations can win.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.Unauthorized("unauthorized request")
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.Forbidden("refresh token expired, please log in again")
		}
		return nil, domain.Forbidden("invalid refresh token")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Forbidden("invalid refresh token")
		}
		return nil, fmt.Errorf("refresh: lookup user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(refreshToken), []byte(user.RefreshToken)) != 1 {
		s.record(domain.EventRefreshReuse, user.ID, "", "presented token is not the stored token")
		s.log.Warn().Str("user_id", user.ID).Msg("superseded refresh token presented")
		return nil, domain.Forbidden("refresh token is expired or used")
	}

	if s.locker != nil {
		acquired, release, err := s.locker.Acquire(ctx, user.ID)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("refresh lock unavailable, relying on conditional write")
		case !acquired:
			return nil, domain.Forbidden("refresh already in progress")
		default:
			defer release()
		}
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("refresh: issue tokens: %w", err)
	}

	swapped, err := s.repo.SwapRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh: rotate refresh token: %w", err)
	}
	if !swapped {
		s.record(domain.EventRefreshReuse, user.ID, "", "lost rotation race")
		return nil, domain.Forbidden("refresh token is expired or used")
	}

	s.record(domain.EventRefresh, user.ID, "", "")
	return &pair, nil
}

// ChangePassword re-hashes the password after verifying the old one. The
// current refresh token stays valid.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("user not found")
		}
		return fmt.Errorf("change password: lookup user: %w", err)
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return domain.Unauthorized("invalid old password")
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.SetPasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("user not found")
		}
		return fmt.Errorf("change password: %w", err)
	}

	s.record(domain.EventPasswordChanged, user.ID, "", "")
	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

func (s *SessionService) hashPassword(plaintext string) (string, error) {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return "", domain.Validation("invalid password",
				domain.FieldError{Field: "password", Message: "password must be 1 to 72 bytes"})
		}
		return "", err
	}
	return hash, nil
}

func (s *SessionService) record(t domain.AuthEventType, userID, identifier, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuthEvent{
		Type:       t,
		UserID:     userID,
		Identifier: identifier,
		Detail:     detail,
		OccurredAt: s.now().UTC(),
	})
}
