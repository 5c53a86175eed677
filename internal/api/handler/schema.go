package handler

import "strings"

// signupRequest is bound from the multipart form; the avatar and cover image
// files are read separately.
type signupRequest struct {
	Username string `form:"username" json:"username" validate:"required,min=3,max=20"`
	Email    string `form:"email"    json:"email"    validate:"required,email,max=50"`
	Password string `form:"password" json:"password" validate:"required,min=6,max=72"`
	FullName string `form:"fullName" json:"fullName" validate:"required,min=3,max=100"`
}

// normalize trims the text fields so length rules apply to what gets stored.
// Passwords are kept verbatim.
func (r *signupRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"omitempty,max=20"`
	Email    string `json:"email"    form:"email"    validate:"omitempty,email,max=50"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (r *loginRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" form:"newPassword" validate:"required,min=6,max=72"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName" form:"fullName" validate:"omitempty,min=3,max=100"`
	Email    string `json:"email"    form:"email"    validate:"omitempty,email,max=50"`
}

func (r *updateAccountRequest) normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
}
