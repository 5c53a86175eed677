package handler

import (
	"errors"

	"github.com/videotube/user-service/internal/api/metrics"
	"github.com/videotube/user-service/internal/core/domain"
)

// resultLabel maps an operation outcome onto the "result" metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUploadFailed):
		return "upload_failed"
	default:
		return "error"
	}
}

func observe(operation string, err error) {
	metrics.AuthOperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

func countIssuedPair() {
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
}
