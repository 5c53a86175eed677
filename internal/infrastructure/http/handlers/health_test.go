package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveReadiness(t *testing.T, h *HealthHandler) (int, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	if err := h.Readiness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("readiness: %v", err)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body
}

func TestReadiness_AllHealthy(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	code, body := serveReadiness(t, NewHealthHandler(
		Dependency{Name: "mongodb", Pinger: ok},
		Dependency{Name: "redis", Pinger: ok},
	))

	if code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("expected 200 ok, got %d %s", code, body.Status)
	}
	if len(body.Dependencies) != 2 {
		t.Fatalf("expected two dependencies, got %v", body.Dependencies)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	code, body := serveReadiness(t, NewHealthHandler(
		Dependency{Name: "postgres", Pinger: pingFunc(func(context.Context) error { return nil })},
		Dependency{Name: "redis", Pinger: pingFunc(func(context.Context) error { return errors.New("connection refused") })},
	))

	if code != http.StatusServiceUnavailable || body.Status != "degraded" {
		t.Fatalf("expected 503 degraded, got %d %s", code, body.Status)
	}
	if got := body.Dependencies["redis"]; got.Status != "unhealthy" || got.Error != "connection refused" {
		t.Fatalf("unexpected redis status %+v", got)
	}
	if body.Dependencies["postgres"].Status != "ok" {
		t.Fatalf("postgres should be ok")
	}
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := NewHealthHandler().Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("liveness: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
