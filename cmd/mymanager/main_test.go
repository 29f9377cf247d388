// ABOUTME: Tests for the mymanager command tree against a temporary SQLite store
// ABOUTME: Commands run in-process with captured output

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/auth"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/config"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/crud"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/i18n"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/mockdata"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/storage"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/store"
)

func init() {
	color.NoColor = true
}

// writeConfig writes a config that stores data in a temporary SQLite file.
func writeConfig(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")

	dir := t.TempDir()
	dbPath = filepath.Join(dir, "mymanager.db")
	cfgPath = filepath.Join(dir, "mymanager.yaml")
	content := fmt.Sprintf(`storage:
  driver: sqlite
  path: %q
auth:
  session_secret: "0123456789abcdef0123456789abcdef"
logging:
  level: error
`, dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath, dbPath
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInit(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("MYMANAGER_SESSION_SECRET", "")
	path := filepath.Join(t.TempDir(), "mymanager.yaml")

	out, err := run(t, "", "init", "-o", path, "--driver", "memory", "--lang", "en")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "en", cfg.I18n.DefaultLanguage)

	authn, err := auth.NewAuthenticator(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.PasswordHash)
	require.NoError(t, err)
	assert.NoError(t, authn.Check("admin", "admin"))

	_, err = run(t, "", "init", "-o", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "", "init", "-o", path, "--force")
	assert.NoError(t, err)
}

func TestPasswd(t *testing.T) {
	out, err := run(t, "s3cret\n", "passwd")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)

	authn, err := auth.NewAuthenticator("admin", "", hash)
	require.NoError(t, err)
	assert.NoError(t, authn.Check("admin", "s3cret"))
	assert.Error(t, authn.Check("admin", "other"))

	_, err = run(t, "", "passwd")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	out, err := run(t, "", "--config", cfgPath, "list", "users", "--limit", "5", "--page", "2", "--sort", "id", "--desc", "--json")
	require.NoError(t, err)

	var page crud.Page
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 5)
	assert.Equal(t, "5", page.Items[0].ID(), "ids sort as text: 9, 8, 7, 6, 50, then 5")
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, mockdata.Count, page.Pagination.TotalItems)

	out, err = run(t, "", "--config", cfgPath, "list", "products", "-n", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Produits")
	assert.Contains(t, out, fmt.Sprintf("1-3 of %d, page 1/", mockdata.Count))

	out, err = run(t, "", "--config", cfgPath, "list", "users", "-f", "status=active", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	for _, r := range page.Items {
		assert.Equal(t, "active", r["status"])
	}
}

func TestList_BadInput(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	_, err := run(t, "", "--config", cfgPath, "list", "Not A Kind")
	assert.ErrorIs(t, err, entity.ErrInvalidKind)

	_, err = run(t, "", "--config", cfgPath, "list", "users", "-f", "status")
	assert.Error(t, err)

	_, err = run(t, "", "--config", cfgPath, "--log-level", "loud", "list", "users")
	assert.Error(t, err)

	_, err = run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "list", "users")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	out, err := run(t, "", "--config", cfgPath, "show", "users", "3")
	require.NoError(t, err)
	var rec entity.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "3", rec.ID())

	_, err = run(t, "", "--config", cfgPath, "show", "users", "999")
	assert.ErrorIs(t, err, crud.ErrNotFound)
}

func TestExport(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	target := filepath.Join(t.TempDir(), "exports", "users.csv")

	out, err := run(t, "", "--config", cfgPath, "export", "users", "-n", "5", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 5 rows")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "ID,"))

	out, err = run(t, "", "--config", cfgPath, "export", "users", "-n", "2", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ID,"))

	_, err = run(t, "", "--config", cfgPath, "export", "users", "-q", "zzz-no-such-user-zzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to export")
}

func TestReset(t *testing.T) {
	cfgPath, dbPath := writeConfig(t)

	_, err := run(t, "", "--config", cfgPath, "list", "users")
	require.NoError(t, err)
	_, err = run(t, "", "--config", cfgPath, "list", "orders")
	require.NoError(t, err)

	out, err := run(t, "", "--config", cfgPath, "reset", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset users")
	assert.Equal(t, []entity.Kind{entity.Orders}, storedKinds(t, dbPath))

	out, err = run(t, "", "--config", cfgPath, "reset", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset orders")
	assert.Empty(t, storedKinds(t, dbPath))

	_, err = run(t, "", "--config", cfgPath, "reset")
	assert.Error(t, err)
	_, err = run(t, "", "--config", cfgPath, "reset", "users", "--all")
	assert.Error(t, err)
}

func storedKinds(t *testing.T, dbPath string) []entity.Kind {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, Path: dbPath})
	require.NoError(t, err)
	defer s.Close()

	kinds, err := storage.New(s).StoredKinds(context.Background())
	require.NoError(t, err)
	return kinds
}

func TestActivity(t *testing.T) {
	cfgPath, dbPath := writeConfig(t)
	bundle := i18n.MustLoad()

	out, err := run(t, "", "--config", cfgPath, "activity")
	require.NoError(t, err)
	assert.Contains(t, out, bundle.T("fr", "dashboard.noActivity"))

	s, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, Path: dbPath})
	require.NoError(t, err)
	_, err = storage.New(s).AppendActivity(context.Background(), entity.Entry{
		Title:       "Nouvel utilisateur",
		Description: "Jean Dupont a été ajouté",
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err = run(t, "", "--config", cfgPath, "activity", "--lang", "en")
	require.NoError(t, err)
	assert.Contains(t, out, "Nouvel utilisateur")
	assert.Contains(t, out, "Jean Dupont a été ajouté")

	out, err = run(t, "", "--config", cfgPath, "activity", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Activity log cleared")

	out, err = run(t, "", "--config", cfgPath, "activity")
	require.NoError(t, err)
	assert.Contains(t, out, bundle.T("fr", "dashboard.noActivity"))
}

func TestHealth(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	var ready atomic.Bool
	ready.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			fmt.Fprint(w, "OK")
		case "/health/ready":
			if !ready.Load() {
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, "ready (local)")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := run(t, "", "--config", cfgPath, "health", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "/health/ready: ready (local)")
	assert.Contains(t, out, "healthy")

	ready.Store(false)
	out, err = run(t, "", "--config", cfgPath, "health", "--url", srv.URL+"/")
	require.Error(t, err)
	assert.Contains(t, out, "store unavailable")
}

func TestColorHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&colorHandler{mu: &sync.Mutex{}, w: &buf, level: slog.LevelInfo})

	logger.Debug("hidden")
	logger.With("component", "crud").WithGroup("req").Warn("slow", "kind", "users")
	logger.Error("boom", "error", "disk full")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "WRN slow component=crud req.kind=users")
	assert.Contains(t, lines[1], "ERR boom error=disk full")
}

func TestSetupLogger_JSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "kind", "orders")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "orders", entry["kind"])
}
