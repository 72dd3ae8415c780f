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

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(ctx context.Context) error {
	return p.err
}

func runHealth(t *testing.T, h *HealthHandler) map[string]any {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return body
}

func TestHealth_AllStoresDisabled(t *testing.T) {
	body := runHealth(t, NewHealthHandler(nil, nil))

	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestHealth_RedisDownIsDegraded(t *testing.T) {
	body := runHealth(t, newHealthHandler(nil, &fakePinger{err: errors.New("connection refused")}))

	if body["status"] != "degraded" {
		t.Errorf("expected status degraded, got %v", body["status"])
	}

	components := body["components"].(map[string]any)
	redis := components["redis"].(map[string]any)
	if redis["status"] != "down" {
		t.Errorf("expected redis down, got %v", redis["status"])
	}
}
