// ABOUTME: Tests for the server orchestrator: wiring, health endpoints and the run/shutdown lifecycle
// ABOUTME: Uses the in-memory store and a real TCP listener on a free port

package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/config"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/store"
)

// testConfig creates a local-mode in-memory config on a free port.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find available HTTP port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	cfg := config.Default()
	cfg.Server.HTTPAddr = addr
	cfg.Storage.Driver = store.DriverMemory
	cfg.Storage.Path = ""
	cfg.Auth.SessionSecret = "server-test-secret"
	return cfg
}

// testLogger creates a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type unreachableStore struct {
	*store.MockStore
}

func (unreachableStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestNew(t *testing.T) {
	cfg := testConfig(t)

	srv, err := New(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer srv.Shutdown(context.Background())

	if srv.config != cfg {
		t.Error("server config mismatch")
	}
	if srv.remote != nil {
		t.Error("local mode should not build a remote client")
	}
	if srv.baseURL != "http://"+cfg.Server.HTTPAddr {
		t.Errorf("baseURL = %q", srv.baseURL)
	}
}

func TestNew_RemoteMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Mode = config.ModeRemote

	srv, err := NewWithStore(cfg, store.NewMockStore(), testLogger())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	assert.NotNil(t, srv.remote)
}

func TestNew_BadCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Password = ""
	cfg.Auth.PasswordHash = "not-a-bcrypt-hash"

	_, err := NewWithStore(cfg, store.NewMockStore(), testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuring credentials")
}

func TestHealthEndpoints(t *testing.T) {
	srv, err := NewWithStore(testConfig(t), store.NewMockStore(), testLogger())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready (local)", rec.Body.String())
}

func TestReady_StoreDown(t *testing.T) {
	srv, err := NewWithStore(testConfig(t), unreachableStore{store.NewMockStore()}, testLogger())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoutesMounted(t *testing.T) {
	srv, err := NewWithStore(testConfig(t), store.NewMockStore(), testLogger())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"web UI requires login", http.MethodGet, "/dashboard", "", http.StatusSeeOther},
		{"login page", http.MethodGet, "/login", "", http.StatusOK},
		{"static asset", http.MethodGet, "/static/app.js", "", http.StatusOK},
		{"api requires token", http.MethodGet, "/api/users", "", http.StatusUnauthorized},
		{"api login", http.MethodPost, "/api/login", `{"username":"admin","password":"admin"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, body))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRun_GracefulShutdown(t *testing.T) {
	cfg := testConfig(t)
	srv, err := NewWithStore(cfg, store.NewMockStore(), testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := "http://" + cfg.Server.HTTPAddr + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Run did not return after cancel")
	}

	_, err = http.Get(url)
	assert.Error(t, err, "listener should be closed")
}

func TestRun_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Server.HTTPAddr = ln.Addr().String()
	srv, err := NewWithStore(cfg, store.NewMockStore(), testLogger())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	err = srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on HTTP address")
}

func TestResolveTailscaleAuthKey(t *testing.T) {
	t.Setenv("TS_AUTHKEY", "")
	_, err := resolveTailscaleAuthKey("")
	assert.Error(t, err)

	t.Setenv("TS_AUTHKEY", "tskey-env")
	key, err := resolveTailscaleAuthKey("")
	require.NoError(t, err)
	assert.Equal(t, "tskey-env", key)

	key, err = resolveTailscaleAuthKey("tskey-config")
	require.NoError(t, err)
	assert.Equal(t, "tskey-config", key)
}

func TestDetermineBaseURL(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "http://127.0.0.1:8080", determineBaseURL(cfg))

	cfg.Server.BaseURL = "https://admin.example.com"
	assert.Equal(t, "https://admin.example.com", determineBaseURL(cfg))

	cfg.Server.BaseURL = ""
	cfg.Tailscale.Enabled = true
	cfg.Tailscale.Hostname = "mymanager"
	cfg.Tailscale.HTTPS = true
	assert.Equal(t, "https://mymanager", determineBaseURL(cfg))
}
