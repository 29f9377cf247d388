// ABOUTME: Remote fetch facade: JSON CRUD against external sources with a 5-minute response cache
// ABOUTME: Resolves (kind, source) to base URL + path through a lookup table with a /<kind> fallback

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/cache"
	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/entity"
)

// DefaultSource is used when a caller passes an empty source.
const DefaultSource = "jsonplaceholder"

// ErrRequestFailed matches every non-2xx response (see RequestError).
var ErrRequestFailed = errors.New("remote request failed")

// ErrUnknownSource is returned when a source has no base URL.
var ErrUnknownSource = errors.New("unknown remote source")

// ErrUnexpectedPayload is returned when a response body is not a record or list of records.
var ErrUnexpectedPayload = errors.New("unexpected remote payload")

// RequestError carries the HTTP status of a failed request.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("API error: %s %s: %s", e.Method, e.URL, e.Status)
}

// Is makes errors.Is(err, ErrRequestFailed) true for any RequestError.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// DefaultBaseURLs are the public demo APIs the facade knows out of the box.
var DefaultBaseURLs = map[string]string{
	"jsonplaceholder": "https://jsonplaceholder.typicode.com",
	"fakestore":       "https://fakestoreapi.com",
	"dummyapi":        "https://dummyapi.io/data/v1",
	"reqres":          "https://reqres.in/api",
}

// DefaultEndpoints maps kind -> source -> path.
var DefaultEndpoints = map[string]map[string]string{
	"users":    {"jsonplaceholder": "/users", "reqres": "/users", "dummyapi": "/user"},
	"products": {"fakestore": "/products"},
	"orders":   {"fakestore": "/carts"},
	"posts":    {"jsonplaceholder": "/posts"},
	"comments": {"jsonplaceholder": "/comments"},
}

// Config configures a Client. Entries in BaseURLs and Endpoints are merged
// over the defaults.
type Config struct {
	BaseURLs  map[string]string
	Endpoints map[string]map[string]string
	CacheTTL  time.Duration
	Timeout   time.Duration
	// Token is sent as a bearer token when set.
	Token string
}

// DeleteResult is the outcome reported by Delete.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client is the remote fetch facade.
type Client struct {
	http      *http.Client
	baseURLs  map[string]string
	endpoints map[string]map[string]string
	token     string
	cache     *cache.Cache
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, for tests or custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a Client. Close it to stop the cache sweeper.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	baseURLs := maps.Clone(DefaultBaseURLs)
	maps.Copy(baseURLs, cfg.BaseURLs)

	endpoints := make(map[string]map[string]string, len(DefaultEndpoints))
	for kind, bySource := range DefaultEndpoints {
		endpoints[kind] = maps.Clone(bySource)
	}
	for kind, bySource := range cfg.Endpoints {
		if endpoints[kind] == nil {
			endpoints[kind] = make(map[string]string)
		}
		maps.Copy(endpoints[kind], bySource)
	}

	c := &Client{
		http:      &http.Client{Timeout: timeout},
		baseURLs:  baseURLs,
		endpoints: endpoints,
		token:     cfg.Token,
		cache:     cache.New(cfg.CacheTTL, 512),
		logger:    slog.Default().With("component", "remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the response cache.
func (c *Client) Close() {
	c.cache.Close()
}

// Sources lists the configured source names, sorted.
func (c *Client) Sources() []string {
	return slices.Sorted(maps.Keys(c.baseURLs))
}

// CheckSources fails with ErrUnknownSource for the first name that has no
// base URL.
func (c *Client) CheckSources(names []string) error {
	known := c.Sources()
	for _, name := range names {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: %q (known: %s)", ErrUnknownSource, name, strings.Join(known, ", "))
		}
	}
	return nil
}

// URL resolves the collection URL for (kind, source).
func (c *Client) URL(kind entity.Kind, source string) (string, error) {
	if source == "" {
		source = DefaultSource
	}
	base, ok := c.baseURLs[source]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	path, ok := c.endpoints[string(kind)][source]
	if !ok {
		path = "/" + string(kind)
	}
	return strings.TrimRight(base, "/") + path, nil
}

// CacheKey is the response cache key for a list request.
func CacheKey(kind entity.Kind, source string, params url.Values) string {
	if source == "" {
		source = DefaultSource
	}
	return string(kind) + "_" + source + "_" + params.Encode()
}

// Fetch lists records, serving repeated requests from the cache for the
// cache TTL.
func (c *Client) Fetch(ctx context.Context, kind entity.Kind, source string, params url.Values) ([]entity.Record, error) {
	key := CacheKey(kind, source, params)
	if cached, ok := c.cache.Get(key); ok {
		c.logger.Debug("serving from cache", "key", key)
		return entity.CloneAll(cached.([]entity.Record)), nil
	}

	u, err := c.URL(kind, source)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s from %s: %w", kind, source, err)
	}

	c.cache.Set(key, entity.CloneAll(records))
	return records, nil
}

// Search runs a free-text query through the q parameter.
func (c *Client) Search(ctx context.Context, kind entity.Kind, source, query string) ([]entity.Record, error) {
	return c.Fetch(ctx, kind, source, url.Values{"q": {query}})
}

// FetchByID fetches a single record.
func (c *Client) FetchByID(ctx context.Context, kind entity.Kind, source, id string) (entity.Record, error) {
	u, err := c.URL(kind, source)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodGet, u+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

// Create posts data and returns the created record.
func (c *Client) Create(ctx context.Context, kind entity.Kind, source string, data entity.Record) (entity.Record, error) {
	u, err := c.URL(kind, source)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, u, data)
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

// Update replaces the record with id and returns the server's copy.
func (c *Client) Update(ctx context.Context, kind entity.Kind, source, id string, data entity.Record) (entity.Record, error) {
	u, err := c.URL(kind, source)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPut, u+"/"+url.PathEscape(id), data)
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

// Delete removes the record with id.
func (c *Client) Delete(ctx context.Context, kind entity.Kind, source, id string) (DeleteResult, error) {
	u, err := c.URL(kind, source)
	if err != nil {
		return DeleteResult{}, err
	}
	if _, err := c.do(ctx, http.MethodDelete, u+"/"+url.PathEscape(id), nil); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Success: true, Message: "Élément supprimé avec succès"}, nil
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.logger.Debug("cache cleared")
}

func (c *Client) do(ctx context.Context, method, u string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("remote request", "method", method, "url", u)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("remote request failed", "method", method, "url", u, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("remote request rejected", "method", method, "url", u, "status", resp.StatusCode)
		return nil, &RequestError{Method: method, URL: u, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return data, nil
}

// decodeList accepts a JSON array of records or an object wrapping one
// under "data".
func decodeList(body []byte) ([]entity.Record, error) {
	var list []entity.Record
	if err := json.Unmarshal(body, &list); err == nil {
		return entity.Normalize(list), nil
	}

	var wrapped struct {
		Data []entity.Record `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil || wrapped.Data == nil {
		return nil, ErrUnexpectedPayload
	}
	return entity.Normalize(wrapped.Data), nil
}

// decodeOne accepts a record or an envelope wrapping one under "data".
// An empty body yields an empty record.
func decodeOne(body []byte) (entity.Record, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return entity.Record{}, nil
	}
	var rec entity.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, ErrUnexpectedPayload
	}
	if inner, ok := rec["data"].(map[string]any); ok && isEnvelope(rec) {
		rec = entity.Record(inner)
	}
	entity.Normalize([]entity.Record{rec})
	return rec, nil
}

// envelopeKeys are the only keys a wrapper object carries: the
// success/message/error/data result shape, plus the support block reqres
// adds. Anything else, an id included, marks the object as a record.
var envelopeKeys = map[string]bool{"data": true, "success": true, "message": true, "error": true, "support": true}

func isEnvelope(rec entity.Record) bool {
	for k := range rec {
		if !envelopeKeys[k] {
			return false
		}
	}
	return true
}
