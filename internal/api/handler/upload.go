package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/core/domain"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// stager copies multipart files into a local temp directory so the services
// only ever see file paths.
type stager struct {
	dir string
	log zerolog.Logger
}

// stage writes the form file named field to disk and returns its path. A
// missing file yields an empty path and no error.
func (s stager) stage(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", domain.Validation("invalid multipart body",
			domain.FieldError{Field: field, Message: "could not read file"})
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExtensions[ext] {
		return "", domain.Validation("unsupported file type",
			domain.FieldError{Field: field, Message: field + " must be a jpg, png, gif, bmp or tiff image"})
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", field, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.dir, field+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("stage upload %s: %w", field, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("stage upload %s: %w", field, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("stage upload %s: %w", field, err)
	}
	return dst.Name(), nil
}

// cleanup removes staged files the uploader did not consume.
func (s stager) cleanup(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", p).Msg("failed to remove staged upload")
		}
	}
}
