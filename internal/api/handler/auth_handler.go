package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/api/metrics"
	"github.com/videotube/user-service/internal/core/domain"
	"github.com/videotube/user-service/internal/core/ports"
)

// AuthHandler serves the session endpoints: signup, login, logout, token
// refresh and password change.
type AuthHandler struct {
	sessions ports.SessionService
	cookies  CookieOptions
	files    stager
}

func NewAuthHandler(sessions ports.SessionService, cookies CookieOptions, uploadDir string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		cookies:  cookies,
		files:    stager{dir: uploadDir, log: log},
	}
}

// Signup registers a new account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        username    formData  string  true   "Unique handle"
// @Param        email       formData  string  true   "Unique email"
// @Param        password    formData  string  true   "Password (6-72 characters)"
// @Param        fullName    formData  string  true   "Display name"
// @Param        avatar      formData  file    true   "Avatar image"
// @Param        coverImage  formData  file    false  "Cover image"
// @Success      201  {object}  SuccessResponse{data=domain.PublicUser}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/signup [post]
func (h *AuthHandler) Signup(c echo.Context) (err error) {
	defer func() { observe("signup", err) }()

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid request body")
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	avatar, err := h.files.stage(c, "avatar")
	if err != nil {
		return err
	}
	cover, err := h.files.stage(c, "coverImage")
	if err != nil {
		h.files.cleanup(avatar)
		return err
	}
	// The uploader removes what it consumes; anything left over goes here.
	defer h.files.cleanup(avatar, cover)

	user, err := h.sessions.Signup(c.Request().Context(), ports.SignupInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		AvatarPath:     avatar,
		CoverImagePath: cover,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User registered successfully", user)
}

// Login authenticates by username or email and opens a session.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  SuccessResponse{data=LoginData}
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /users/login [post]
func (h *AuthHandler) Login(c echo.Context) (err error) {
	defer func() { observe("login", err) }()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid request body")
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.sessions.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	countIssuedPair()

	h.cookies.setSession(c, res.Tokens.AccessToken, res.Tokens.RefreshToken)
	return respond(c, http.StatusOK, "User logged in successfully", LoginData{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}

// Logout ends the caller's session and clears the session cookies.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) (err error) {
	defer func() { observe("logout", err) }()

	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Logout(c.Request().Context(), id.UserID); err != nil {
		return err
	}
	h.cookies.clearSession(c)
	return respond(c, http.StatusOK, "User logged out", nil)
}

// RefreshAccessToken exchanges a refresh token for a new token pair. The
// refreshToken cookie wins over the request body.
//
// @Summary      Refresh the access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when no cookie is sent"
// @Success      200   {object}  SuccessResponse{data=TokenData}
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /users/refresh-access-token [post]
func (h *AuthHandler) RefreshAccessToken(c echo.Context) (err error) {
	defer func() { observe("refresh", err) }()

	token := cookieValue(c, RefreshTokenCookie)
	if token == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.sessions.Refresh(c.Request().Context(), token)
	if err != nil {
		metrics.RefreshRejectionsTotal.WithLabelValues(refreshRejection(err)).Inc()
		return err
	}
	countIssuedPair()

	h.cookies.setSession(c, pair.AccessToken, pair.RefreshToken)
	return respond(c, http.StatusOK, "Access token refreshed", TokenData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// ChangePassword replaces the caller's password after checking the old one.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  SuccessResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users/changePassword [post]
func (h *AuthHandler) ChangePassword(c echo.Context) (err error) {
	defer func() { observe("change_password", err) }()

	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.sessions.ChangePassword(c.Request().Context(), id.UserID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password changed successfully", nil)
}

func refreshRejection(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "missing"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
