// ABOUTME: Backoffice web UI: login gate, session and CSRF handling, route registration
// ABOUTME: Pages are server-rendered html/template views with htmx partials

package webadmin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/text/language"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/assets"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/auth"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/crud"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/dashboard"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/i18n"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/storage"
)

const (
	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "mymanager_csrf"

	// filterPrefix marks list query parameters that filter on a field.
	filterPrefix = "f."
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const csrfContextKey contextKey = "csrf_token"

// Config holds web UI configuration
type Config struct {
	// Remote loads and mutates entities through the remote facade.
	Remote bool
	// Source is the remote source name.
	Source string
	// Sources are merged on load when there is more than one.
	Sources      []string
	ItemsPerPage int
	// DefaultLanguage applies until a language is chosen.
	DefaultLanguage string
}

// Deps are the collaborators the web UI drives.
type Deps struct {
	Storage   *storage.Adapter
	Generator crud.Generator
	// Remote may be nil in local mode.
	Remote    crud.Remote
	Registry  *entity.Registry
	Auth      *auth.Authenticator
	Tokens    *auth.TokenIssuer
	Bundle    *i18n.Bundle
	Dashboard *dashboard.Service
	// Lock serializes engine use. Share it with every other engine user
	// of the same storage.
	Lock      sync.Locker
}

// Admin handles the backoffice routes
type Admin struct {
	deps     Deps
	config   Config
	logger   *slog.Logger
	markdown goldmark.Markdown
	views    *views
	now      func() time.Time

	// mu serializes engine use: each request loads, mutates and saves a
	// whole snapshot.
	mu sync.Locker
}

// New creates a new Admin handler
func New(deps Deps, cfg Config) *Admin {
	if deps.Registry == nil {
		deps.Registry = entity.NewRegistry()
	}
	if deps.Bundle == nil {
		deps.Bundle = i18n.MustLoad()
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = i18n.Default
	}
	if deps.Lock == nil {
		deps.Lock = &sync.Mutex{}
	}
	if deps.Dashboard == nil {
		deps.Dashboard = dashboard.New(deps.Storage, deps.Bundle)
	}
	a := &Admin{
		deps:     deps,
		config:   cfg,
		logger:   slog.Default().With("component", "webadmin"),
		markdown: goldmark.New(),
		now:      time.Now,
		mu:       deps.Lock,
	}
	a.views = loadViews(a.funcs())
	return a
}

// RegisterRoutes registers all web UI routes on the given mux
func (a *Admin) RegisterRoutes(mux *http.ServeMux) {
	// Public routes (no auth required)
	mux.HandleFunc("GET /login", a.handleLoginPage)
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("POST /language", a.handleLanguage)
	mux.Handle("GET "+assets.Prefix, http.StripPrefix(assets.Prefix[:len(assets.Prefix)-1], assets.FileServer()))

	// Protected routes (auth required)
	mux.HandleFunc("GET /{$}", a.requireAuth(a.handleHome))
	mux.HandleFunc("POST /logout", a.requireAuth(a.handleLogout))

	mux.HandleFunc("GET /dashboard", a.requireAuth(a.handleDashboard))
	mux.HandleFunc("GET /dashboard/activity", a.requireAuth(a.handleActivity))
	mux.HandleFunc("GET /dashboard/charts.json", a.requireAuth(a.handleCharts))

	mux.HandleFunc("GET /entities/{kind}", a.requireAuth(a.handleList))
	mux.HandleFunc("GET /entities/{kind}/export", a.requireAuth(a.handleExport))
	mux.HandleFunc("GET /entities/{kind}/new", a.requireAuth(a.handleNew))
	mux.HandleFunc("POST /entities/{kind}", a.requireAuth(a.handleCreate))
	mux.HandleFunc("GET /entities/{kind}/{id}", a.requireAuth(a.handleDetail))
	mux.HandleFunc("GET /entities/{kind}/{id}/edit", a.requireAuth(a.handleEdit))
	mux.HandleFunc("POST /entities/{kind}/{id}", a.requireAuth(a.handleUpdate))
	mux.HandleFunc("POST /entities/{kind}/{id}/delete", a.requireAuth(a.handleDelete))

	a.logger.Info("web routes registered")
}

// requireAuth wraps a handler to require a valid session cookie and an
// open session in storage. Logging out anywhere closes the session.
func (a *Admin) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := a.sessionIdentity(r)
		if id == nil {
			a.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := auth.WithIdentity(r.Context(), id)
		r, _ = a.ensureCSRFToken(w, r.WithContext(ctx))
		next(w, r)
	}
}

// sessionIdentity returns the signed-in user, or nil.
func (a *Admin) sessionIdentity(r *http.Request) *auth.Identity {
	cookie, err := r.Cookie(auth.SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	username, err := a.deps.Tokens.Verify(cookie.Value)
	if err != nil {
		return nil
	}
	sess, ok := a.deps.Storage.Session(r.Context())
	if !ok || sess.Username != username {
		return nil
	}
	return &auth.Identity{Username: username, Method: "session"}
}

// getCSRFToken retrieves the CSRF token from the request context
func getCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (a *Admin) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		a.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the CSRF token from form against cookie
func (a *Admin) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		// htmx requests send it as a header
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// language resolves the UI language: the stored choice, then the browser's
// Accept-Language, then the configured default.
func (a *Admin) language(r *http.Request) string {
	fallback := a.config.DefaultLanguage
	if h := r.Header.Get("Accept-Language"); h != "" {
		fallback = a.deps.Bundle.Match(h)
	}
	return a.deps.Bundle.Normalize(a.deps.Storage.Language(r.Context(), fallback))
}

// withEngine runs fn on a CRUD engine initialized on kind, holding a.mu
// until fn returns.
func (a *Admin) withEngine(ctx context.Context, kind entity.Kind, lang string, fn func(e *crud.Engine)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a.engine(ctx, kind, lang))
}

// engine builds a CRUD engine initialized on kind. Callers hold a.mu.
func (a *Admin) engine(ctx context.Context, kind entity.Kind, lang string) *crud.Engine {
	e := crud.New(crud.Deps{
		Storage:   a.deps.Storage,
		Generator: a.deps.Generator,
		Remote:    a.deps.Remote,
		Registry:  a.deps.Registry,
		Logger:    a.logger,
	})
	e.Initialize(ctx, kind, crud.Config{
		Remote:       a.config.Remote,
		Source:       a.config.Source,
		Sources:      a.config.Sources,
		ItemsPerPage: a.config.ItemsPerPage,
		Language:     language.Make(lang),
	})
	return e
}

// handleLoginPage renders the login page
func (a *Admin) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if a.sessionIdentity(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	r, _ = a.ensureCSRFToken(w, r)
	a.renderLogin(w, r, http.StatusOK, "", "")
}

// handleLogin processes login form submission
func (a *Admin) handleLogin(w http.ResponseWriter, r *http.Request) {
	lang := a.language(r)
	if err := r.ParseForm(); err != nil {
		r, _ = a.ensureCSRFToken(w, r)
		a.renderLogin(w, r, http.StatusBadRequest, "", a.deps.Bundle.T(lang, "error.server"))
		return
	}

	if !a.validateCSRF(r) {
		r, _ = a.ensureCSRFToken(w, r)
		a.renderLogin(w, r, http.StatusForbidden, "", a.deps.Bundle.T(lang, "error.csrf"))
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	if err := a.deps.Auth.Check(username, password); err != nil {
		a.logger.Warn("admin login failed", "username", username)
		r, _ = a.ensureCSRFToken(w, r)
		a.renderLogin(w, r, http.StatusUnauthorized, username, a.deps.Bundle.T(lang, "login.error"))
		return
	}

	token, err := a.deps.Tokens.Generate(username)
	if err != nil {
		a.logger.Error("failed to sign session token", "error", err)
		r, _ = a.ensureCSRFToken(w, r)
		a.renderLogin(w, r, http.StatusInternalServerError, username, a.deps.Bundle.T(lang, "error.server"))
		return
	}

	now := a.now()
	if err := a.deps.Storage.StartSession(r.Context(), username, now); err != nil {
		a.logger.Error("failed to store session", "error", err)
		r, _ = a.ensureCSRFToken(w, r)
		a.renderLogin(w, r, http.StatusInternalServerError, username, a.deps.Bundle.T(lang, "error.server"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(a.deps.Tokens.TTL()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	a.logger.Info("admin login successful", "username", username)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout logs out the current user
func (a *Admin) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		// Logout is not blocked on a bad token; the worst case is a forced logout.
		if !a.validateCSRF(r) {
			a.logger.Warn("logout request with invalid CSRF token")
		}
	}

	if err := a.deps.Storage.EndSession(r.Context()); err != nil {
		a.logger.Error("failed to clear session keys", "error", err)
	}

	a.clearSessionCookie(w)
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *Admin) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// handleLanguage stores the chosen language and returns to the page it came from.
func (a *Admin) handleLanguage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !a.validateCSRF(r) {
		http.Error(w, a.deps.Bundle.T(a.language(r), "error.csrf"), http.StatusForbidden)
		return
	}

	lang := r.FormValue("lang")
	if !a.deps.Bundle.Supports(lang) {
		http.Error(w, "unsupported language", http.StatusBadRequest)
		return
	}
	if err := a.deps.Storage.SetLanguage(r.Context(), lang); err != nil {
		a.logger.Error("failed to store language", "error", err)
	}

	http.Redirect(w, r, localReferer(r, "/dashboard"), http.StatusSeeOther)
}

// localReferer returns the path and query of the Referer header when it
// points at this host, else fallback.
func localReferer(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

// handleHome sends the root URL to the dashboard
func (a *Admin) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// kindFromPath validates the {kind} path value.
func kindFromPath(r *http.Request) (entity.Kind, error) {
	return entity.ParseKind(r.PathValue("kind"))
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
