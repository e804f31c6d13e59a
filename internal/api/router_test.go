package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sniff-api/sniff-server/internal/config"
	"github.com/sniff-api/sniff-server/internal/gateway"
	"github.com/sniff-api/sniff-server/internal/middleware"
	"github.com/sniff-api/sniff-server/internal/playstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Server.LandingURL = "https://example.com/docs"
	cfg.Brand.Name = "Sniff"
	cfg.Channels.Stable = config.ChannelCredential{Email: "stable@example.com", AASToken: "aas_et/STABLE"}
	cfg.Upstream.BaseURL = "https://android.clients.google.com"
	cfg.Upstream.APITimeout = 5 * time.Second
	cfg.Security.CORS.AllowedOrigins = []string{"*"}
	cfg.Security.RateLimiting.Enabled = false
	return cfg
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	router, bg := NewRouter(cfg)
	t.Cleanup(bg.Shutdown)
	return router
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// ---------------------------------------------------------------------------
// system routes
// ---------------------------------------------------------------------------

func TestLandingRedirect(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doGet(t, r, "/")
	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "https://example.com/docs" {
		t.Errorf("Location = %q, want configured landing URL", got)
	}
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doGet(t, r, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
}

func TestReadiness_ChannelsConfigured(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doGet(t, r, "/ready")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Ready    bool     `json:"ready"`
		Channels []string `json:"channels"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Ready {
		t.Error("ready = false, want true")
	}
	if len(body.Channels) != 1 || body.Channels[0] != "stable" {
		t.Errorf("channels = %v, want [stable]", body.Channels)
	}
}

func TestReadiness_NoChannels(t *testing.T) {
	cfg := testConfig()
	cfg.Channels.Stable = config.ChannelCredential{}
	r := newTestRouter(t, cfg)

	w := doGet(t, r, "/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestVersionEndpoint(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doGet(t, r, "/version")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["api_version"] != "v1" {
		t.Errorf("api_version = %v, want v1", body["api_version"])
	}
}

// ---------------------------------------------------------------------------
// middleware wiring
// ---------------------------------------------------------------------------

func TestRequestIDPresentOnResponses(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doGet(t, r, "/health")
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doGet(t, r, "/health")
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("X-Content-Type-Options header missing")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/v1/details/com.discord", nil)
	req.Header.Set("Origin", "https://frontend.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin missing on preflight")
	}
}

// ---------------------------------------------------------------------------
// client construction
// ---------------------------------------------------------------------------

func TestBuildClients(t *testing.T) {
	cfg := testConfig()
	cfg.Channels.Beta = config.ChannelCredential{Email: "beta@example.com", AASToken: "aas_et/BETA"}
	// Half-configured entries never survive Validate, but buildClients must
	// still skip anything incomplete.
	cfg.Channels.Alpha = config.ChannelCredential{Email: "alpha@example.com"}

	clients := buildClients(cfg)
	if len(clients) != 2 {
		t.Fatalf("len(clients) = %d, want 2", len(clients))
	}
	if _, ok := clients[gateway.ChannelStable]; !ok {
		t.Error("stable client missing")
	}
	if _, ok := clients[gateway.ChannelBeta]; !ok {
		t.Error("beta client missing")
	}
	if _, ok := clients[gateway.ChannelAlpha]; ok {
		t.Error("half-configured alpha channel got a client")
	}

	var _ playstore.Client = clients[gateway.ChannelStable]
}
