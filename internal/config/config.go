// ABOUTME: Configuration loading and parsing for mymanager
// ABOUTME: Supports YAML or TOML files, .env files, environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "MYMANAGER_CONFIG"

// Supported values
var (
	storageDrivers = []string{"sqlite", "sqlite3", "postgres", "memory"}
	dataModes      = []string{ModeLocal, ModeRemote}
	languages      = []string{"fr", "en", "ar"}
	logLevels      = []string{"debug", "info", "warn", "error"}
)

// Data modes
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config represents the complete mymanager configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	Data      DataConfig      `yaml:"data" toml:"data"`
	Remote    RemoteConfig    `yaml:"remote" toml:"remote"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	I18n      I18nConfig      `yaml:"i18n" toml:"i18n"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
	// BaseURL is the external URL, used in CLI output and health checks
	BaseURL string `yaml:"base_url" toml:"base_url"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"`
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // public Funnel, implies HTTPS
}

// StorageConfig selects the key/value backend
type StorageConfig struct {
	Driver     string `yaml:"driver" toml:"driver"`
	Path       string `yaml:"path" toml:"path"`
	DSN        string `yaml:"dsn" toml:"dsn"`
	QuotaBytes int    `yaml:"quota_bytes" toml:"quota_bytes"`
}

// DataConfig selects where entity data comes from
type DataConfig struct {
	Mode   string `yaml:"mode" toml:"mode"`
	Source string `yaml:"source" toml:"source"`
	// Sources, when set, are all fetched and merged in remote mode. Source
	// (or the first entry) stays the target of searches and mutations.
	Sources      []string `yaml:"sources" toml:"sources"`
	ItemsPerPage int      `yaml:"items_per_page" toml:"items_per_page"`
}

// SourceNames lists every configured remote source, Source first.
func (d DataConfig) SourceNames() []string {
	var out []string
	if d.Source != "" {
		out = append(out, d.Source)
	}
	for _, s := range d.Sources {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// RemoteConfig configures the remote fetch facade
type RemoteConfig struct {
	Timeout  time.Duration `yaml:"-" toml:"-"`
	CacheTTL time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	TimeoutRaw  string `yaml:"timeout" toml:"timeout"`
	CacheTTLRaw string `yaml:"cache_ttl" toml:"cache_ttl"`

	BaseURLs  map[string]string            `yaml:"base_urls" toml:"base_urls"`
	Endpoints map[string]map[string]string `yaml:"endpoints" toml:"endpoints"`
	Token     string                       `yaml:"token" toml:"token"`
}

// AuthConfig holds the backoffice credential and session settings
type AuthConfig struct {
	Username string `yaml:"username" toml:"username"`
	// Password is a plaintext fallback; prefer PasswordHash (see `mymanager passwd`)
	Password      string `yaml:"password" toml:"password"`
	PasswordHash  string `yaml:"password_hash" toml:"password_hash"`
	SessionSecret string `yaml:"session_secret" toml:"session_secret"`

	SessionTTL    time.Duration `yaml:"-" toml:"-"`
	SessionTTLRaw string        `yaml:"session_ttl" toml:"session_ttl"`

	// APITokenTTL is the lifetime of bearer tokens from POST /api/login
	APITokenTTL    time.Duration `yaml:"-" toml:"-"`
	APITokenTTLRaw string        `yaml:"api_token_ttl" toml:"api_token_ttl"`
}

// I18nConfig holds language settings
type I18nConfig struct {
	DefaultLanguage string `yaml:"default_language" toml:"default_language"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a configuration that runs out of the box: SQLite under
// ./data, local mode, admin/admin.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	if err := parseDurations(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// A .env file in the config's directory and in the working directory is loaded first
// (existing variables win). Environment variables in the format ${VAR_NAME} are expanded.
// Files ending in .toml are parsed as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Resolve finds the config file to use: the explicit path, then
// $MYMANAGER_CONFIG, then ./mymanager.yaml or ./mymanager.toml. It returns
// Default() when none exists.
func Resolve(path string) (*Config, string, error) {
	candidates := []string{path, os.Getenv(EnvConfigPath), "mymanager.yaml", "mymanager.toml"}
	for i, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if i < 2 {
				// explicitly requested files must exist
				return nil, "", fmt.Errorf("config file %s: %w", p, err)
			}
			continue
		}
		cfg, err := Load(p)
		return cfg, p, err
	}

	loadDotEnv(".env")
	return Default(), "", nil
}

func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" && !cfg.Tailscale.Enabled {
		cfg.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.Path == "" && strings.HasPrefix(cfg.Storage.Driver, "sqlite") {
		cfg.Storage.Path = filepath.Join("data", "mymanager.db")
	}
	if cfg.Data.Mode == "" {
		cfg.Data.Mode = ModeLocal
	}
	if cfg.Data.ItemsPerPage == 0 {
		cfg.Data.ItemsPerPage = 10
	}
	if cfg.Remote.CacheTTLRaw == "" {
		cfg.Remote.CacheTTLRaw = "5m"
	}
	if cfg.Remote.TimeoutRaw == "" {
		cfg.Remote.TimeoutRaw = "15s"
	}
	if cfg.Auth.Username == "" {
		cfg.Auth.Username = "admin"
	}
	if cfg.Auth.Password == "" && cfg.Auth.PasswordHash == "" {
		cfg.Auth.Password = "admin"
	}
	if cfg.Auth.SessionTTLRaw == "" {
		cfg.Auth.SessionTTLRaw = "24h"
	}
	if cfg.Auth.APITokenTTLRaw == "" {
		cfg.Auth.APITokenTTLRaw = "1h"
	}
	if cfg.I18n.DefaultLanguage == "" {
		cfg.I18n.DefaultLanguage = "fr"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Tailscale.Enabled && cfg.Tailscale.StateDir == "" {
		cfg.Tailscale.StateDir = filepath.Join("data", "tsnet")
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return errors.New("server.http_addr is required (or enable tailscale)")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return errors.New("tailscale.hostname is required when tailscale is enabled")
	}

	if !slices.Contains(storageDrivers, c.Storage.Driver) {
		return fmt.Errorf("storage.driver %q must be one of %v", c.Storage.Driver, storageDrivers)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return errors.New("storage.dsn is required for the postgres driver")
	}
	if strings.HasPrefix(c.Storage.Driver, "sqlite") && c.Storage.Path == "" {
		return errors.New("storage.path is required for sqlite drivers")
	}
	if c.Storage.QuotaBytes < 0 {
		return errors.New("storage.quota_bytes cannot be negative")
	}

	if !slices.Contains(dataModes, c.Data.Mode) {
		return fmt.Errorf("data.mode %q must be one of %v", c.Data.Mode, dataModes)
	}
	if c.Data.ItemsPerPage < 0 {
		return errors.New("data.items_per_page must be positive")
	}
	if slices.Contains(c.Data.Sources, "") {
		return errors.New("data.sources cannot contain an empty name")
	}

	if !slices.Contains(languages, c.I18n.DefaultLanguage) {
		return fmt.Errorf("i18n.default_language %q must be one of %v", c.I18n.DefaultLanguage, languages)
	}
	if !slices.Contains(logLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level %q must be one of %v", c.Logging.Level, logLevels)
	}

	if c.Auth.SessionSecret != "" && len(c.Auth.SessionSecret) < 32 {
		return errors.New("auth.session_secret must be at least 32 bytes")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"remote.timeout", cfg.Remote.TimeoutRaw, &cfg.Remote.Timeout},
		{"remote.cache_ttl", cfg.Remote.CacheTTLRaw, &cfg.Remote.CacheTTL},
		{"auth.session_ttl", cfg.Auth.SessionTTLRaw, &cfg.Auth.SessionTTL},
		{"auth.api_token_ttl", cfg.Auth.APITokenTTLRaw, &cfg.Auth.APITokenTTL},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %q", f.name, f.raw)
		}
		*f.dst = d
	}
	return nil
}
