package playstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL string) *GooglePlayClient {
	return NewClient(
		Credentials{Email: "stable@example.com", AASToken: "aas_et/TOKEN"},
		Options{
			BaseURL:    serverURL,
			DeviceID:   "3f1a2b3c4d5e6f70",
			UserAgent:  "Android-Finsky/41.2.21",
			APITimeout: 5 * time.Second,
		},
	)
}

func TestDetails_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fdfe/details" {
			t.Errorf("path = %q, want /fdfe/details", r.URL.Path)
		}
		if got := r.URL.Query().Get("doc"); got != "com.discord" {
			t.Errorf("doc = %q, want com.discord", got)
		}
		if got := r.Header.Get("Authorization"); got != "GoogleLogin auth=aas_et/TOKEN" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-DFE-Device-Id"); got != "3f1a2b3c4d5e6f70" {
			t.Errorf("X-DFE-Device-Id = %q", got)
		}
		w.Write(detailsBody())
	}))
	defer server.Close()

	details, err := newTestClient(server.URL).Details(context.Background(), "com.discord")
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if details.PackageName != "com.discord" {
		t.Errorf("PackageName = %q, want com.discord", details.PackageName)
	}
	if details.VersionCode != 289200 {
		t.Errorf("VersionCode = %d, want 289200", details.VersionCode)
	}
}

func TestDetails_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       []byte
		wantErr    error
	}{
		{"unauthorized", http.StatusUnauthorized, nil, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, nil, ErrUnauthorized},
		{"not found", http.StatusNotFound, nil, ErrAppNotFound},
		{"gone", http.StatusGone, nil, ErrAppNotFound},
		{"empty payload means unpublished", http.StatusOK, nil, ErrAppNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write(tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Details(context.Background(), "com.discord")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Details() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetails_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Details(context.Background(), "com.discord")
	if err == nil {
		t.Fatal("Details() error = nil, want error")
	}
	if errors.Is(err, ErrAppNotFound) || errors.Is(err, ErrUnauthorized) {
		t.Errorf("Details() error = %v, want unclassified error", err)
	}
}

func TestDelivery_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fdfe/delivery" {
			t.Errorf("path = %q, want /fdfe/delivery", r.URL.Path)
		}
		if got := r.URL.Query().Get("vc"); got != "289200" {
			t.Errorf("vc = %q, want 289200", got)
		}
		if got := r.URL.Query().Get("ot"); got != "1" {
			t.Errorf("ot = %q, want 1", got)
		}
		w.Write(deliveryBody(deliveryStatusOK, true))
	}))
	defer server.Close()

	data, err := newTestClient(server.URL).Delivery(context.Background(), "com.discord", 289200)
	if err != nil {
		t.Fatalf("Delivery() error = %v", err)
	}
	if data.MainURL != "https://play.example/main.apk" {
		t.Errorf("MainURL = %q", data.MainURL)
	}
	if len(data.Splits) != 1 {
		t.Errorf("len(Splits) = %d, want 1", len(data.Splits))
	}
}

func TestDelivery_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"version unavailable", deliveryStatusVersionUnavailable, ErrVersionNotFound},
		{"not available", deliveryStatusNotAvailable, ErrAppNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(deliveryBody(tt.status, false))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Delivery(context.Background(), "com.discord", 1)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Delivery() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDelivery_UnexpectedStatusValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(deliveryBody(7, false))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Delivery(context.Background(), "com.discord", 1)
	if err == nil {
		t.Fatal("Delivery() error = nil, want error")
	}
}

func TestDelivery_MissingDownloadURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Status OK but no delivery data attached.
		w.Write(deliveryBody(deliveryStatusOK, false))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Delivery(context.Background(), "com.discord", 1)
	if err == nil {
		t.Fatal("Delivery() error = nil, want error")
	}
}

func TestNewClient_TimeoutDefaults(t *testing.T) {
	c := NewClient(Credentials{}, Options{BaseURL: "https://android.clients.google.com/"})
	if c.apiClient.Timeout != 30*time.Second {
		t.Errorf("api timeout = %v, want 30s", c.apiClient.Timeout)
	}
	if c.downloadClient.Timeout != 10*time.Minute {
		t.Errorf("download timeout = %v, want 10m", c.downloadClient.Timeout)
	}
	if c.baseURL != "https://android.clients.google.com" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want no session header on artifact fetch", got)
		}
		w.Header().Set("Content-Length", "5")
		w.Write([]byte("bytes"))
	}))
	defer server.Close()

	body, size, err := newTestClient(server.URL).Fetch(context.Background(), server.URL+"/signed")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer body.Close()

	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(got) != "bytes" {
		t.Errorf("body = %q, want %q", got, "bytes")
	}
}

func TestFetch_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Expired signed URLs surface as 403 from the CDN.
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if _, _, err := newTestClient(server.URL).Fetch(context.Background(), server.URL+"/signed"); err == nil {
		t.Error("Fetch() error = nil, want error")
	}
}
