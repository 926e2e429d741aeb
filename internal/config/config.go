// Package config provides centralized configuration management for the relay.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Sheet    SheetConfig
	Security SecurityConfig
	Static   StaticConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 5050)
	Port int `env:"PORT" envAlt:"SERVER_PORT" default:"5050"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout must outlast the upstream fetch timeout (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// Debug mirrors the FLASK_DEBUG convention: only "1" turns it on.
	Debug string `env:"FLASK_DEBUG" envAlt:"APP_DEBUG" default:"0"`
}

// SheetConfig holds settings for the upstream spreadsheet fetch.
type SheetConfig struct {
	// URL is the published CSV link. Empty is allowed at startup; /data
	// reports it per request.
	URL string `env:"SHEET_CSV_URL"`

	// FetchTimeout bounds the whole upstream request (default: 20s)
	FetchTimeout time.Duration `env:"SHEET_FETCH_TIMEOUT" default:"20s"`

	// MaxBodyBytes caps the upstream body size (default: 10MB)
	MaxBodyBytes int64 `env:"SHEET_MAX_BODY_BYTES" default:"10485760"`

	// UserAgent is sent on outbound requests
	UserAgent string `env:"SHEET_USER_AGENT" default:"sheetrelay/1.0"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// StaticConfig controls where the front-end assets come from.
type StaticConfig struct {
	// Dir overrides the embedded assets with a directory on disk
	Dir string `env:"STATIC_DIR"`

	// PageTitle is rendered into the landing page
	PageTitle string `env:"PAGE_TITLE" default:"Sheet Data"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DebugEnabled reports whether debug mode was requested.
func (c *ServerConfig) DebugEnabled() bool {
	return strings.TrimSpace(c.Debug) == "1"
}

// SourceURL returns the configured CSV URL with surrounding whitespace removed.
// An empty result means the source is not configured.
func (c *SheetConfig) SourceURL() string {
	return strings.TrimSpace(c.URL)
}

// Host returns only the host of the source URL, for log lines.
func (c *SheetConfig) Host() string {
	u, err := url.Parse(c.SourceURL())
	if err != nil {
		return ""
	}
	return u.Host
}

// EffectiveLevel returns the log level, forced to debug in debug mode.
func (c *Config) EffectiveLevel() string {
	if c.Server.DebugEnabled() {
		return "debug"
	}
	return c.Logging.Level
}
