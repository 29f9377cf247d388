// ABOUTME: JSON REST surface over the CRUD engine, routed with chi
// ABOUTME: Speaks the remote HTTP contract so one instance can serve as another's source

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/auth"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/crud"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/storage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Config holds API configuration.
type Config struct {
	Remote       bool
	Source       string
	Sources      []string
	ItemsPerPage int
	Language     language.Tag
	// TokenTTL is the lifetime of tokens from POST /api/login; zero means
	// the issuer's session lifetime.
	TokenTTL time.Duration
}

// Deps are the collaborators the API drives.
type Deps struct {
	Storage   *storage.Adapter
	Generator crud.Generator
	// Remote may be nil in local mode.
	Remote   crud.Remote
	Registry *entity.Registry
	Auth     *auth.Authenticator
	Tokens   *auth.TokenIssuer
	// Lock serializes engine use across the API and the web UI.
	Lock sync.Locker
}

// API serves /api routes.
type API struct {
	deps   Deps
	config Config
	logger *slog.Logger
	router chi.Router
}

// New builds the API and its router.
func New(deps Deps, cfg Config) *API {
	if deps.Registry == nil {
		deps.Registry = entity.NewRegistry()
	}
	if deps.Lock == nil {
		deps.Lock = &sync.Mutex{}
	}
	a := &API{
		deps:   deps,
		config: cfg,
		logger: slog.Default().With("component", "api"),
	}
	a.router = a.routes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *API) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", a.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.HTTPAuthMiddleware(a.deps.Tokens))
			r.Get("/kinds", a.handleKinds)
			r.Route("/{kind}", func(r chi.Router) {
				r.Use(validKind)
				r.Get("/", a.handleList)
				r.Post("/", a.handleCreate)
				r.Get("/{id}", a.handleGet)
				r.Put("/{id}", a.handleUpdate)
				r.Patch("/{id}", a.handleUpdate)
				r.Delete("/{id}", a.handleDelete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func validKind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := entity.ParseKind(chi.URLParam(r, "kind")); err != nil {
			writeError(w, http.StatusNotFound, "unknown entity kind")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withEngine runs fn on an engine for the request's kind, holding the
// shared lock until fn returns.
func (a *API) withEngine(r *http.Request, fn func(e *crud.Engine)) {
	a.deps.Lock.Lock()
	defer a.deps.Lock.Unlock()
	fn(a.engine(r.Context(), r))
}

// engine builds a CRUD engine initialized on the request's kind. Callers
// hold the lock.
func (a *API) engine(ctx context.Context, r *http.Request) *crud.Engine {
	e := crud.New(crud.Deps{
		Storage:   a.deps.Storage,
		Generator: a.deps.Generator,
		Remote:    a.deps.Remote,
		Registry:  a.deps.Registry,
		Logger:    a.logger,
	})
	e.Initialize(ctx, entity.Kind(chi.URLParam(r, "kind")), crud.Config{
		Remote:       a.config.Remote,
		Source:       a.config.Source,
		Sources:      a.config.Sources,
		ItemsPerPage: a.config.ItemsPerPage,
		Language:     a.config.Language,
	})
	return e
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleLogin exchanges the administrator credentials for a bearer token.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.deps.Auth.Check(req.Username, req.Password); err != nil {
		a.logger.Warn("api login failed", "username", req.Username)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	ttl := a.config.TokenTTL
	if ttl <= 0 {
		ttl = a.deps.Tokens.TTL()
	}
	token, err := a.deps.Tokens.GenerateFor(req.Username, ttl)
	if err != nil {
		a.logger.Error("failed to sign token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl).UTC().Truncate(time.Second),
	})
}

type kindInfo struct {
	Kind     entity.Kind `json:"kind"`
	Singular string      `json:"singular"`
	Plural   string      `json:"plural"`
}

func (a *API) handleKinds(w http.ResponseWriter, r *http.Request) {
	var out []kindInfo
	for _, k := range a.deps.Registry.Kinds() {
		d := a.deps.Registry.Get(k)
		out = append(out, kindInfo{Kind: k, Singular: d.Singular, Plural: d.Plural})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleList returns one page of records. Without a limit parameter the
// whole matching set is returned on one page.
func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var page crud.Page
	a.withEngine(r, func(e *crud.Engine) {
		e.ApplyParams(params, "")
		if err := e.SearchRemote(r.Context()); err != nil {
			a.logger.Warn("remote search failed", "kind", e.Kind(), "error", err)
		}
		if params.Get(crud.ParamLimit) == "" {
			e.SetItemsPerPage(max(e.Len(), 1))
		}
		page = e.Page()
	})

	w.Header().Set("X-Total-Count", strconv.Itoa(page.Pagination.TotalItems))
	writeJSON(w, http.StatusOK, page)
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	id := entity.CanonicalID(chi.URLParam(r, "id"))

	var (
		rec entity.Record
		ok  bool
	)
	a.withEngine(r, func(e *crud.Engine) {
		rec, ok = e.Find(r.Context(), id)
	})

	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	var data entity.Record
	if err := decodeBody(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		rec entity.Record
		err error
	)
	a.withEngine(r, func(e *crud.Engine) {
		rec, err = e.Create(r.Context(), data)
	})

	a.writeOutcome(w, http.StatusCreated, rec, err)
}

func (a *API) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := entity.CanonicalID(chi.URLParam(r, "id"))
	var data entity.Record
	if err := decodeBody(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	delete(data, "id")

	var (
		rec entity.Record
		err error
	)
	a.withEngine(r, func(e *crud.Engine) {
		rec, err = e.Update(r.Context(), id, data)
	})

	a.writeOutcome(w, http.StatusOK, rec, err)
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := entity.CanonicalID(chi.URLParam(r, "id"))

	var err error
	a.withEngine(r, func(e *crud.Engine) {
		err = e.Delete(r.Context(), id)
	})

	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			a.logger.Error("delete failed", "kind", chi.URLParam(r, "kind"), "id", id, "error", err)
		}
		writeJSON(w, status, deleteResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Success: true, Message: "Item " + id + " deleted"})
}

// writeOutcome writes the {success, data|error} result of a mutation.
func (a *API) writeOutcome(w http.ResponseWriter, okStatus int, rec entity.Record, err error) {
	res := crud.Outcome(rec, err)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			a.logger.Error("mutation failed", "error", err)
		}
		writeJSON(w, status, res)
		return
	}
	writeJSON(w, okStatus, res)
}

func statusFor(err error) int {
	if errors.Is(err, crud.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

var errEmptyBody = errors.New("request body is empty")

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, crud.Result{Error: msg})
}
