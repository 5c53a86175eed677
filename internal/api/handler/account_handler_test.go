package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/videotube/user-service/internal/core/domain"
	"github.com/videotube/user-service/internal/core/ports"
)

func TestAccountHandler_CurrentUser(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		currentFn: func(ctx context.Context, userID string) (*domain.PublicUser, error) {
			return &domain.PublicUser{ID: userID, Username: "alice"}, nil
		},
	}
	h := NewAccountHandler(stub, t.TempDir(), testLogger)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	if err := h.CurrentUser(authenticated(e.NewContext(req, rec))); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"user-1"`) {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAccountHandler_UpdateAccountDetails(t *testing.T) {
	e := newEcho()
	var got ports.AccountDetailsInput
	stub := &stubAccountService{
		detailsFn: func(ctx context.Context, userID string, in ports.AccountDetailsInput) (*domain.PublicUser, error) {
			got = in
			return &domain.PublicUser{ID: userID, FullName: in.FullName}, nil
		},
	}
	h := NewAccountHandler(stub, t.TempDir(), testLogger)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/updateAccountDetails",
		strings.NewReader(`{"fullName":"Alice Smith"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.UpdateAccountDetails(authenticated(e.NewContext(req, rec))); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.FullName != "Alice Smith" || got.Email != "" {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestAccountHandler_UpdateAccountDetails_BadEmail(t *testing.T) {
	e := newEcho()
	h := NewAccountHandler(&stubAccountService{}, t.TempDir(), testLogger)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/updateAccountDetails",
		strings.NewReader(`{"email":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	err := h.UpdateAccountDetails(authenticated(e.NewContext(req, httptest.NewRecorder())))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func imageRequest(t *testing.T, field, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte("image bytes"))
	}
	w.Close()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/"+field, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAccountHandler_UpdateAvatar(t *testing.T) {
	e := newEcho()
	var staged string
	stub := &stubAccountService{
		avatarFn: func(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
			if _, err := os.Stat(localPath); err != nil {
				t.Fatalf("staged file missing: %v", err)
			}
			staged = localPath
			return &domain.PublicUser{ID: userID, AvatarURL: "https://media.example.com/avatars/x.png"}, nil
		},
	}
	h := NewAccountHandler(stub, t.TempDir(), testLogger)

	rec := httptest.NewRecorder()
	if err := h.UpdateAvatar(authenticated(e.NewContext(imageRequest(t, "avatar", "me.png"), rec))); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Fatalf("staged file not cleaned up")
	}
}

func TestAccountHandler_UpdateCoverImage_MissingFile(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		coverFn: func(ctx context.Context, userID, localPath string) (*domain.PublicUser, error) {
			if localPath != "" {
				t.Fatalf("expected empty path, got %q", localPath)
			}
			return nil, domain.Validation("cover image file is missing",
				domain.FieldError{Field: "coverImage", Message: "coverImage is required"})
		},
	}
	h := NewAccountHandler(stub, t.TempDir(), testLogger)

	err := h.UpdateCoverImage(authenticated(e.NewContext(imageRequest(t, "coverImage", ""), httptest.NewRecorder())))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAccountHandler_UpdateAvatar_UploadFailure(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		avatarFn: func(context.Context, string, string) (*domain.PublicUser, error) {
			return nil, domain.UploadFailed("failed to upload avatar")
		},
	}
	h := NewAccountHandler(stub, t.TempDir(), testLogger)

	err := h.UpdateAvatar(authenticated(e.NewContext(imageRequest(t, "avatar", "me.jpg"), httptest.NewRecorder())))
	if !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("expected upload failure, got %v", err)
	}
}
