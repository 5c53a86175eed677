package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/videotube/user-service/internal/core/domain"
	"github.com/videotube/user-service/internal/core/ports"
)

var testLogger = zerolog.New(io.Discard)

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrConflict
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	if patch.CoverImageURL != nil {
		u.CoverImageURL = *patch.CoverImageURL
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *stubUserRepo) SwapRefreshToken(_ context.Context, id, current, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if u.RefreshToken != current {
		return false, nil
	}
	u.RefreshToken = next
	return true, nil
}

func (r *stubUserRepo) Ping(context.Context) error { return nil }

func (r *stubUserRepo) stored(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id])
}

type stubUploader struct {
	mu    sync.Mutex
	fail  map[ports.MediaKind]bool
	calls []string
}

func newStubUploader() *stubUploader {
	return &stubUploader{fail: make(map[ports.MediaKind]bool)}
}

func (u *stubUploader) Upload(_ context.Context, kind ports.MediaKind, localPath string) (*ports.UploadedMedia, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, string(kind)+":"+localPath)
	if u.fail[kind] {
		return nil, fmt.Errorf("media host unavailable")
	}
	name := localPath[strings.LastIndex(localPath, "/")+1:]
	return &ports.UploadedMedia{
		URL: "https://media.example.com/" + string(kind) + "/" + name,
		Key: string(kind) + "/" + name,
	}, nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *recordingAudit) Record(e domain.AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) count(t domain.AuthEventType) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, e := range a.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type stubLocker struct {
	busy     bool
	err      error
	released int
}

func (l *stubLocker) Acquire(context.Context, string) (bool, func(), error) {
	if l.err != nil {
		return false, nil, l.err
	}
	if l.busy {
		return false, nil, nil
	}
	return true, func() { l.released++ }, nil
}

func newTestTokens() *TokenService {
	tokens, err := NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    240 * time.Hour,
		Issuer:        "user-service-test",
	})
	if err != nil {
		panic(err)
	}
	return tokens
}

func newTestHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost)
}
