package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/core/domain"
	"github.com/videotube/user-service/internal/core/ports"
)

// AccountHandler serves the profile endpoints of the authenticated caller.
type AccountHandler struct {
	accounts ports.AccountService
	files    stager
}

func NewAccountHandler(accounts ports.AccountService, uploadDir string, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, files: stager{dir: uploadDir, log: log}}
}

// CurrentUser returns the caller's public profile.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=domain.PublicUser}
// @Failure      401  {object}  ErrorResponse
// @Router       /users/current-user [get]
func (h *AccountHandler) CurrentUser(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.accounts.CurrentUser(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Current user fetched successfully", user)
}

// UpdateAccountDetails changes the caller's full name and/or email.
//
// @Summary      Update account details
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  SuccessResponse{data=domain.PublicUser}
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /users/updateAccountDetails [post]
// @Router       /users/updateAccountDetails [patch]
func (h *AccountHandler) UpdateAccountDetails(c echo.Context) (err error) {
	defer func() { observe("update_account", err) }()

	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid request body")
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accounts.UpdateAccountDetails(c.Request().Context(), id.UserID, ports.AccountDetailsInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Account details updated successfully", user)
}

// UpdateAvatar replaces the caller's avatar.
//
// @Summary      Update avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Avatar image"
// @Success      200     {object}  SuccessResponse{data=domain.PublicUser}
// @Failure      400     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /users/updateAvatar [post]
// @Router       /users/updateAvatar [patch]
func (h *AccountHandler) UpdateAvatar(c echo.Context) (err error) {
	defer func() { observe("update_avatar", err) }()
	return h.replaceImage(c, "avatar", h.accounts.UpdateAvatar, "Avatar updated successfully")
}

// UpdateCoverImage replaces the caller's cover image.
//
// @Summary      Update cover image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        coverImage  formData  file  true  "Cover image"
// @Success      200         {object}  SuccessResponse{data=domain.PublicUser}
// @Failure      400         {object}  ErrorResponse
// @Failure      500         {object}  ErrorResponse
// @Router       /users/updateCoverImage [post]
// @Router       /users/updateCoverImage [patch]
func (h *AccountHandler) UpdateCoverImage(c echo.Context) (err error) {
	defer func() { observe("update_cover_image", err) }()
	return h.replaceImage(c, "coverImage", h.accounts.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdate func(ctx context.Context, userID, localPath string) (*domain.PublicUser, error)

func (h *AccountHandler) replaceImage(c echo.Context, field string, update imageUpdate, message string) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	path, err := h.files.stage(c, field)
	if err != nil {
		return err
	}
	defer h.files.cleanup(path)

	user, err := update(c.Request().Context(), id.UserID, path)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, message, user)
}
