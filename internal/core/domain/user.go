package domain

import (
	"strings"
	"time"
)

// User is the persisted account record. It is mutated only through the
// session and account services.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	PasswordHash  string    `json:"-"`
	RefreshToken  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PublicUser is the outward-facing representation of a User. It has no
// password hash or refresh token field at all.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Public strips the credential fields from u.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// HasSession reports whether the user currently holds a refresh token.
func (u *User) HasSession() bool {
	return u.RefreshToken != ""
}

// ProfilePatch lists the profile fields an update may change. Nil fields are
// left untouched.
type ProfilePatch struct {
	FullName      *string
	Email         *string
	AvatarURL     *string
	CoverImageURL *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.FullName == nil && p.Email == nil && p.AvatarURL == nil && p.CoverImageURL == nil
}

// NormalizeHandle trims and lower-cases a username or email so that "Bob"
// and " bob " collide.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
