// Package memory holds in-process implementations of the store ports. They
// back STORE_DRIVER=memory and the HTTP tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/user-service/internal/core/domain"
)

// UserRepository is a mutex-guarded map keyed by user id.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User), now: time.Now}
}

func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *UserRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u := r.lookup(username, email); u != nil {
		return clone(u), nil
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookup(user.Username, user.Email) != nil {
		return nil, domain.ErrConflict
	}
	stored := clone(user)
	stored.ID = uuid.NewString()
	stored.RefreshToken = ""
	r.users[stored.ID] = stored
	return clone(stored), nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Email != nil {
		if other := r.lookup("", *patch.Email); other != nil && other.ID != id {
			return nil, domain.ErrConflict
		}
		u.Email = *patch.Email
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	if patch.CoverImageURL != nil {
		u.CoverImageURL = *patch.CoverImageURL
	}
	u.UpdatedAt = r.now().UTC()
	return clone(u), nil
}

func (r *UserRepository) SetPasswordHash(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *domain.User) {
		u.PasswordHash = hash
		u.UpdatedAt = r.now().UTC()
	})
}

func (r *UserRepository) SetRefreshToken(_ context.Context, id, token string) error {
	return r.mutate(id, func(u *domain.User) { u.RefreshToken = token })
}

func (r *UserRepository) SwapRefreshToken(_ context.Context, id, current, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || current == "" || u.RefreshToken != current {
		return false, nil
	}
	u.RefreshToken = next
	return true, nil
}

func (r *UserRepository) Ping(context.Context) error { return nil }

// lookup must be called with r.mu held.
func (r *UserRepository) lookup(username, email string) *domain.User {
	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u
		}
	}
	return nil
}

func (r *UserRepository) mutate(id string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(u)
	return nil
}
