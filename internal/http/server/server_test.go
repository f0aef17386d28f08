package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"catalogpdf/internal/config"
)

func minimalConfig() config.Config {
	cfg := config.Default()
	cfg.PDF.TimeoutSecs = 1
	cfg.PDF.ChromePath = "/definitely/missing/chrome"
	return cfg
}

func TestNew_RoutesAndJSON404(t *testing.T) {
	app := New(Deps{Config: minimalConfig()})

	reqHealth, _ := http.NewRequest(http.MethodGet, "/health", nil)
	respHealth, err := app.Test(reqHealth)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	if respHealth.StatusCode != http.StatusOK {
		t.Fatalf("expected /health 200, got %d", respHealth.StatusCode)
	}

	reqRoot, _ := http.NewRequest(http.MethodGet, "/", nil)
	respRoot, err := app.Test(reqRoot)
	if err != nil {
		t.Fatalf("root request failed: %v", err)
	}
	if respRoot.StatusCode != http.StatusOK {
		t.Fatalf("expected / 200, got %d", respRoot.StatusCode)
	}

	req404, _ := http.NewRequest(http.MethodGet, "/does-not-exist", nil)
	resp404, err := app.Test(req404)
	if err != nil {
		t.Fatalf("404 request failed: %v", err)
	}
	if resp404.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp404.StatusCode)
	}
	if got := resp404.Header.Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("expected JSON error response, got content type %q", got)
	}
	var body map[string]any
	if err := json.NewDecoder(resp404.Body).Decode(&body); err != nil {
		t.Fatalf("decode 404 body: %v", err)
	}
	if body["code"] != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND code, got %v", body)
	}
}

func TestNew_ValidationBeforeRender(t *testing.T) {
	app := New(Deps{Config: minimalConfig()})

	req, _ := http.NewRequest(http.MethodPost, "/generate-pdf", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing html, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPost, "/api/generate-pdf",
		strings.NewReader(`{"products":[],"businessInfo":{"business_name":"Tienda"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty products, got %d", resp.StatusCode)
	}
}
