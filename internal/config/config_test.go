package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// clearEnv blanks every variable the loader reads so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SERVER_HOST", "PORT", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT", "SERVER_REQUEST_TIMEOUT",
		"FLASK_DEBUG", "APP_DEBUG", "SHEET_CSV_URL", "SHEET_FETCH_TIMEOUT",
		"SHEET_MAX_BODY_BYTES", "SHEET_USER_AGENT", "TRUSTED_PROXIES", "SECURITY_ENABLE_CSP",
		"STATIC_DIR", "PAGE_TITLE", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ENABLED", "METRICS_PATH",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 5050 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 5050)
	}
	if cfg.Sheet.FetchTimeout != 20*time.Second {
		t.Errorf("Sheet.FetchTimeout = %v, want %v", cfg.Sheet.FetchTimeout, 20*time.Second)
	}
	if cfg.Sheet.MaxBodyBytes != 10485760 {
		t.Errorf("Sheet.MaxBodyBytes = %d, want %d", cfg.Sheet.MaxBodyBytes, 10485760)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Server.DebugEnabled() {
		t.Error("DebugEnabled() = true, want false")
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v, want enabled at /metrics", cfg.Metrics)
	}
	if got := cfg.Sheet.SourceURL(); got != "" {
		t.Errorf("SourceURL() = %q, want empty", got)
	}
}

func TestLoad_MissingSheetURLIsNotFatal(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v, want nil without SHEET_CSV_URL", err)
	}
}

func TestLoad_SourceURLTrimmed(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHEET_CSV_URL", "  https://docs.google.com/spreadsheets/d/e/abc/pub?output=csv \n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := "https://docs.google.com/spreadsheets/d/e/abc/pub?output=csv"
	if got := cfg.Sheet.SourceURL(); got != want {
		t.Errorf("SourceURL() = %q, want %q", got, want)
	}
	if got := cfg.Sheet.Host(); got != "docs.google.com" {
		t.Errorf("Host() = %q, want %q", got, "docs.google.com")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SHEET_FETCH_TIMEOUT", "1m30s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Sheet.FetchTimeout != 90*time.Second {
		t.Errorf("Sheet.FetchTimeout = %v, want %v", cfg.Sheet.FetchTimeout, 90*time.Second)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:9090" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:9090")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("APP_DEBUG", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7070)
	}
	if !cfg.Server.DebugEnabled() {
		t.Error("DebugEnabled() = false, want true from APP_DEBUG")
	}
}

func TestLoad_PrimaryWinsOverAlt(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "6000")
	t.Setenv("SERVER_PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 6000)
	}
}

func TestDebugEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{" 1 ", true},
		{"0", false},
		{"true", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c := ServerConfig{Debug: tt.value}
			if got := c.DebugEnabled(); got != tt.want {
				t.Errorf("DebugEnabled(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestEffectiveLevel(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "warn"}}
	if got := cfg.EffectiveLevel(); got != "warn" {
		t.Errorf("EffectiveLevel() = %q, want %q", got, "warn")
	}

	cfg.Server.Debug = "1"
	if got := cfg.EffectiveLevel(); got != "debug" {
		t.Errorf("EffectiveLevel() in debug = %q, want %q", got, "debug")
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , ,192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if diff := cmp.Diff(want, cfg.Security.TrustedProxies); diff != "" {
		t.Errorf("TrustedProxies mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "port not a number",
			env:     map[string]string{"PORT": "abc"},
			wantErr: "invalid value for PORT",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"PORT": "70000"},
			wantErr: "PORT (70000) must be 1-65535",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"SHEET_FETCH_TIMEOUT": "soon"},
			wantErr: "invalid duration",
		},
		{
			name:    "zero fetch timeout",
			env:     map[string]string{"SHEET_FETCH_TIMEOUT": "0s"},
			wantErr: "SHEET_FETCH_TIMEOUT must be positive",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			env:     map[string]string{"LOG_FORMAT": "xml"},
			wantErr: "LOG_FORMAT",
		},
		{
			name:    "bad metrics path",
			env:     map[string]string{"METRICS_PATH": "metrics"},
			wantErr: "METRICS_PATH",
		},
		{
			name:    "bad boolean",
			env:     map[string]string{"METRICS_ENABLED": "maybe"},
			wantErr: "invalid boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 0, ShutdownTimeout: time.Second, RequestTimeout: time.Second},
		Sheet:   SheetConfig{FetchTimeout: 0, MaxBodyBytes: 0},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}

	for _, want := range []string{"PORT", "SHEET_FETCH_TIMEOUT", "SHEET_MAX_BODY_BYTES"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestConfigString_HidesDocumentKey(t *testing.T) {
	cfg := &Config{
		Sheet: SheetConfig{URL: "https://docs.google.com/spreadsheets/d/e/SECRETKEY/pub?output=csv"},
	}

	s := cfg.String()
	if strings.Contains(s, "SECRETKEY") {
		t.Errorf("String() leaked document key: %s", s)
	}
	if !strings.Contains(s, "docs.google.com") {
		t.Errorf("String() = %s, want sheet host", s)
	}
}

func TestLoadStruct_RequiredAndUnsupported(t *testing.T) {
	type needsToken struct {
		Token string `env:"SHEETRELAY_TEST_TOKEN" required:"true"`
	}
	t.Setenv("SHEETRELAY_TEST_TOKEN", "")

	var cfg needsToken
	err := loadStruct(reflect.ValueOf(&cfg).Elem())
	if err == nil || !strings.Contains(err.Error(), "SHEETRELAY_TEST_TOKEN") {
		t.Fatalf("loadStruct() error = %v, want missing SHEETRELAY_TEST_TOKEN", err)
	}

	t.Setenv("SHEETRELAY_TEST_TOKEN", "abc")
	if err := loadStruct(reflect.ValueOf(&cfg).Elem()); err != nil {
		t.Fatalf("loadStruct() error = %v", err)
	}
	if cfg.Token != "abc" {
		t.Errorf("Token = %q, want %q", cfg.Token, "abc")
	}

	type badKind struct {
		Ratio float64 `env:"SHEETRELAY_TEST_RATIO"`
	}
	t.Setenv("SHEETRELAY_TEST_RATIO", "0.5")
	var bad badKind
	if err := loadStruct(reflect.ValueOf(&bad).Elem()); err == nil {
		t.Error("loadStruct() expected error for float field")
	}
}

func TestLoad_CriticalLevelAccepted(t *testing.T) {
	for _, level := range []string{"CRITICAL", "fatal"} {
		t.Run(level, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LOG_LEVEL", level)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Logging.Level != level {
				t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, level)
			}
		})
	}
}
