package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpmiddleware "github.com/wolfman30/revsnap-web/internal/http/middleware"
	"github.com/wolfman30/revsnap-web/internal/leads"
	"github.com/wolfman30/revsnap-web/internal/observability/metrics"
	"github.com/wolfman30/revsnap-web/internal/telemetry"
	"github.com/wolfman30/revsnap-web/pkg/logging"
)

type testDeps struct {
	repo     *leads.InMemoryRepository
	registry *telemetry.Registry
}

func newTestRouter(t *testing.T, mutate func(*Config)) (http.Handler, *testDeps) {
	t.Helper()

	logger := logging.NewWithWriter("error", &bytes.Buffer{})
	reg := prometheus.NewRegistry()
	repo := leads.NewInMemoryRepository()
	svc := leads.NewService(logger, []leads.Recorder{repo})
	tracker := telemetry.NewTracker(logger, nil)
	t.Cleanup(func() { _ = tracker.Close(context.Background()) })
	registry := telemetry.NewRegistry(tracker, logger, telemetry.RegistryConfig{})
	t.Cleanup(registry.Shutdown)

	cfg := &Config{
		Logger:           logger,
		LeadsHandler:     leads.NewHandler(svc, metrics.NewLeadMetrics(reg), logger),
		TelemetryHandler: telemetry.NewHandler(registry, logger),
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg), &testDeps{repo: repo, registry: registry}
}

func TestRouterHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterReadyReportsFailingCheck(t *testing.T) {
	router, _ := newTestRouter(t, func(cfg *Config) {
		cfg.Checks = map[string]Check{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode ready response: %v", err)
	}
	if resp.Status != "degraded" || resp.Checks["postgres"] != "ok" || resp.Checks["redis"] != "connection refused" {
		t.Fatalf("unexpected ready response %+v", resp)
	}
}

func TestRouterLeadEndpoint(t *testing.T) {
	router, deps := newTestRouter(t, nil)

	body := `{"type":"pilot","firstName":"Grace","lastName":"Hopper","email":"grace@example.com","integrations":["hubspot","slack"],"consent":"on"}`
	req := httptest.NewRequest(http.MethodPost, "/api/lead", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var resp leads.SubmitResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Type != leads.TypePilot {
		t.Fatalf("unexpected response %+v", resp)
	}
	stored := deps.repo.All()
	if len(stored) != 1 || stored[0].Email() != "grace@example.com" {
		t.Fatalf("expected one stored lead, got %+v", stored)
	}
}

func TestRouterLeadEndpointRejectsGet(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/lead", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if rr.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("expected Allow: POST, got %q", rr.Header().Get("Allow"))
	}
}

func TestRouterEventsEndpoint(t *testing.T) {
	router, deps := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"session_id":"s1","event":"page_view","page_url":"/"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}
	if deps.registry.Len() != 1 {
		t.Fatalf("expected one open session, got %d", deps.registry.Len())
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	post := httptest.NewRequest(http.MethodPost, "/api/lead", strings.NewReader(`{"type":"demo"}`))
	router.ServeHTTP(httptest.NewRecorder(), post)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "revsnap_leads_submissions_total") {
		t.Fatalf("expected lead metrics in exposition, got %s", rr.Body.String())
	}
}

func TestRouterRateLimitsAPI(t *testing.T) {
	limiter := httpmiddleware.NewRateLimiter(0.001, 1, logging.NewWithWriter("error", &bytes.Buffer{}))
	router, _ := newTestRouter(t, func(cfg *Config) { cfg.RateLimiter = limiter })

	codes := make([]int, 0, 3)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/lead", strings.NewReader(`{}`))
		req.RemoteAddr = "192.0.2.1:1234"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	health := httptest.NewRequest(http.MethodGet, "/health", nil)
	health.RemoteAddr = "192.0.2.1:1234"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, health)
	codes = append(codes, rr.Code)

	want := []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusOK}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("expected codes %v, got %v", want, codes)
		}
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, func(cfg *Config) { cfg.CORSAllowedOrigins = []string{"https://revsnap.ai"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/lead", nil)
	req.Header.Set("Origin", "https://revsnap.ai")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://revsnap.ai" {
		t.Fatalf("expected allow origin header, got %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}
