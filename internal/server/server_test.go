package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"batchbook/internal/config"
	"batchbook/internal/db/mock"
	"batchbook/internal/handlers"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	database, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock.New() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	cfg.Database = database
	if cfg.Storage.Root == "" {
		cfg.Storage = config.StorageConfig{Driver: config.StorageDriverLocal, Root: t.TempDir(), PublicBaseURL: "/storage"}
	}

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		srv.unsubscribe()
		handlers.Configure(handlers.Dependencies{})
	})
	return srv
}

func TestNewAppliesSessionDefaults(t *testing.T) {
	srv := newTestServer(t, Config{Addr: ":8080", Session: SessionConfig{CookieSecure: true}})

	if srv.httpServer.Addr != ":8080" {
		t.Fatalf("expected server addr :8080, got %q", srv.httpServer.Addr)
	}
	if srv.httpServer.Handler == nil {
		t.Fatal("expected handler to be configured")
	}

	data := url.Values{}
	data.Set("email", mock.SeedEmail)
	data.Set("password", mock.SeedPassword)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after login, got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie to be set")
	}
	if cookies[0].Name != "batchbook_session" {
		t.Fatalf("expected default session cookie name, got %q", cookies[0].Name)
	}
	if !cookies[0].Secure {
		t.Fatal("expected cookie secure flag to be true")
	}
}

func TestLoginIsCountedInMetrics(t *testing.T) {
	srv := newTestServer(t, Config{Addr: ":8080"})

	data := url.Values{}
	data.Set("email", mock.SeedEmail)
	data.Set("password", mock.SeedPassword)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rr.Code, http.StatusSeeOther)
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want %d", rr.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `batchbook_session_events_total{kind="signed_in"} 1`) {
		t.Fatalf("metrics output missing signed_in counter:\n%s", body)
	}
}

func TestServerHandler(t *testing.T) {
	srv := newTestServer(t, Config{Addr: ":9090"})

	handler := srv.Handler()
	if handler == nil {
		t.Fatal("expected non-nil handler")
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
}

func TestNewRequiresDatabase(t *testing.T) {
	if _, err := New(Config{Addr: ":9090"}); err == nil {
		t.Fatal("New() error = nil, want error without a database")
	}
}
