package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/core/domain"
	"github.com/videotube/user-service/internal/core/ports"
)

// AccountService handles profile reads and updates for authenticated users.
type AccountService struct {
	repo     ports.UserRepository
	uploader ports.MediaUploader
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time
}

func NewAccountService(repo ports.UserRepository, uploader ports.MediaUploader, audit ports.AuditSink, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, uploader: uploader, audit: audit, log: log, now: time.Now}
}

func (s *AccountService) CurrentUser(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError("current user", err)
	}
	return user.Public(), nil
}

// UpdateAccountDetails changes the full name and/or email. A new email must
// not belong to another account.
func (s *AccountService) UpdateAccountDetails(ctx context.Context, userID string, in ports.AccountDetailsInput) (*domain.PublicUser, error) {
	var patch domain.ProfilePatch
	if name := normalizeName(in.FullName); name != "" {
		if err := checkFields(lengthError("fullName", name, fullNameMinLen, fullNameMaxLen)); err != nil {
			return nil, err
		}
		patch.FullName = &name
	}
	if email := domain.NormalizeHandle(in.Email); email != "" {
		owner, err := s.repo.FindByUsernameOrEmail(ctx, "", email)
		switch {
		case err == nil && owner.ID != userID:
			return nil, domain.Conflict("email is already in use")
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("update account: lookup email: %w", err)
		}
		patch.Email = &email
	}
	if patch.IsEmpty() {
		return nil, domain.Validation("fullName or email is required")
	}

	return s.apply(ctx, userID, patch)
}

// UpdateAvatar replaces the avatar with the staged file at localPath.
func (s *AccountService) UpdateAvatar(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
	url, err := s.upload(ctx, userID, ports.MediaAvatar, localPath)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, domain.ProfilePatch{AvatarURL: &url})
}

// UpdateCoverImage replaces the cover image with the staged file at localPath.
func (s *AccountService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
	url, err := s.upload(ctx, userID, ports.MediaCoverImage, localPath)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, domain.ProfilePatch{CoverImageURL: &url})
}

func (s *AccountService) upload(ctx context.Context, userID string, kind ports.MediaKind, localPath string) (string, error) {
	field := "avatar"
	if kind == ports.MediaCoverImage {
		field = "coverImage"
	}
	if localPath == "" {
		return "", domain.Validation(field+" file is required",
			domain.FieldError{Field: field, Message: field + " is required"})
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return "", userLookupError("update "+field, err)
	}

	media, err := s.uploader.Upload(ctx, kind, localPath)
	if err != nil || media == nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("media upload failed")
		return "", domain.UploadFailed("failed to upload " + field)
	}
	return media.URL, nil
}

func (s *AccountService) apply(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.PublicUser, error) {
	updated, err := s.repo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("email is already in use")
		}
		return nil, userLookupError("update account", err)
	}

	if s.audit != nil {
		s.audit.Record(domain.AuthEvent{
			Type:       domain.EventProfileUpdated,
			UserID:     userID,
			OccurredAt: s.now().UTC(),
		})
	}
	return updated.Public(), nil
}

func userLookupError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("user not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}
