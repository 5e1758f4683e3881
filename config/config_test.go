package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// clearEnv blanks every override variable; viper treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DEVPULSE_API_URL", "API_URL", "DEVPULSE_PORT",
		"DEVPULSE_POLL_INTERVAL", "DEVPULSE_TIMEOUT", "DEVPULSE_TITLE",
	} {
		t.Setenv(k, "")
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.PollInterval.Duration() != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.PollInterval.Duration())
	}
	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout.Duration() != 5*time.Second {
		t.Errorf("API.Timeout = %v, want 5s", cfg.API.Timeout.Duration())
	}
	if cfg.Title != "" {
		t.Errorf("Title = %q, want empty (defaulted at render time)", cfg.Title)
	}
}

func TestParse_FullConfig(t *testing.T) {
	clearEnv(t)
	data := `
title: Acme
subtitle: Local stack
port: 4000
poll_interval: 30s

api:
  base_url: https://api.acme.local/
  timeout: 2s
  health_path: /livez
  db_check_path: /v1/db
  info_path: /v1/info
  headers:
    Authorization: Bearer dev
  version_field: build.version
  env_field: build.env

links:
  - name: Backend
    url: https://api.acme.local
  - name: Database
    url: localhost:5432
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Acme" || cfg.Subtitle != "Local stack" {
		t.Errorf("Title/Subtitle = %q/%q", cfg.Title, cfg.Subtitle)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
	if cfg.PollInterval.Duration() != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval.Duration())
	}
	if cfg.API.Timeout.Duration() != 2*time.Second {
		t.Errorf("API.Timeout = %v", cfg.API.Timeout.Duration())
	}
	if cfg.API.HealthPath != "/livez" || cfg.API.DBCheckPath != "/v1/db" || cfg.API.InfoPath != "/v1/info" {
		t.Errorf("paths = %q %q %q", cfg.API.HealthPath, cfg.API.DBCheckPath, cfg.API.InfoPath)
	}
	if cfg.API.Headers["Authorization"] != "Bearer dev" {
		t.Errorf("Headers = %v", cfg.API.Headers)
	}
	if cfg.API.VersionField != "build.version" || cfg.API.EnvField != "build.env" {
		t.Errorf("fields = %q/%q", cfg.API.VersionField, cfg.API.EnvField)
	}
	if len(cfg.Links) != 2 || cfg.Links[1].URL != "localhost:5432" {
		t.Errorf("Links = %+v", cfg.Links)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_API_HOST", "api.internal")
	t.Setenv("TEST_TOKEN", "secret")

	data := `
api:
  base_url: http://${TEST_API_HOST}:8080
  headers:
    Authorization: Bearer ${TEST_TOKEN}
links:
  - name: Docs
    url: ${TEST_DOCS_URL:-http://localhost:4000}
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.API.BaseURL != "http://api.internal:8080" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Headers["Authorization"] != "Bearer secret" {
		t.Errorf("Authorization = %q", cfg.API.Headers["Authorization"])
	}
	if cfg.Links[0].URL != "http://localhost:4000" {
		t.Errorf("link URL = %q", cfg.Links[0].URL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	clearEnv(t)
	data := `
api:
  base_url: ${DEVPULSE_TEST_UNSET_VAR}
`
	_, err := Parse([]byte(data))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var")
	}
	if !strings.Contains(err.Error(), "DEVPULSE_TEST_UNSET_VAR") {
		t.Errorf("error = %v, want variable name", err)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVPULSE_API_URL", "http://override:9000")
	t.Setenv("DEVPULSE_PORT", "4100")
	t.Setenv("DEVPULSE_POLL_INTERVAL", "3s")
	t.Setenv("DEVPULSE_TIMEOUT", "750ms")
	t.Setenv("DEVPULSE_TITLE", "From Env")

	data := `
title: From File
port: 4000
poll_interval: 30s
api:
  base_url: http://file:8080
  timeout: 2s
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.API.BaseURL != "http://override:9000" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Port != 4100 {
		t.Errorf("Port = %d, want 4100", cfg.Port)
	}
	if cfg.PollInterval.Duration() != 3*time.Second {
		t.Errorf("PollInterval = %v, want 3s", cfg.PollInterval.Duration())
	}
	if cfg.API.Timeout.Duration() != 750*time.Millisecond {
		t.Errorf("API.Timeout = %v, want 750ms", cfg.API.Timeout.Duration())
	}
	if cfg.Title != "From Env" {
		t.Errorf("Title = %q, want From Env", cfg.Title)
	}
}

func TestParse_APIURLFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_URL", "http://backend:8080")

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.API.BaseURL != "http://backend:8080" {
		t.Errorf("API.BaseURL = %q, want API_URL value", cfg.API.BaseURL)
	}

	t.Setenv("DEVPULSE_API_URL", "http://preferred:8080")
	cfg, err = Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.API.BaseURL != "http://preferred:8080" {
		t.Errorf("API.BaseURL = %q, DEVPULSE_API_URL should win", cfg.API.BaseURL)
	}
}

func TestParse_InvalidEnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port not a number", "DEVPULSE_PORT", "abc"},
		{"bad interval", "DEVPULSE_POLL_INTERVAL", "often"},
		{"bad timeout", "DEVPULSE_TIMEOUT", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Parse(nil)
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error = %v, want mention of %s", err, tt.key)
			}
		})
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"port too high", "port: 70000", "port must be between"},
		{"negative port", "port: -1", "port must be between"},
		{"poll interval too short", "poll_interval: 100ms", "poll_interval must be at least"},
		{"timeout too short", "api:\n  timeout: 10ms", "api.timeout must be at least"},
		{"base url without scheme", "api:\n  base_url: localhost:8080", "api.base_url"},
		{"base url ftp", "api:\n  base_url: ftp://example.com", "scheme must be http or https"},
		{"base url without host", "api:\n  base_url: http://", "must have a host"},
		{"link without name", "links:\n  - url: http://x", "links[0]: name is required"},
		{"link without url", "links:\n  - name: API", "url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	clearEnv(t)
	if _, err := Parse([]byte("port: [unclosed")); err == nil {
		t.Error("Parse() expected error for invalid YAML")
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	clearEnv(t)
	_, err := Parse([]byte("poll_interval: soon"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v", err)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"500ms", 500 * time.Millisecond, false},
		{"10", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := yaml.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.Duration() != tt.want {
				t.Errorf("Duration() = %v, want %v", d.Duration(), tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "devpulse.yaml")
	if err := os.WriteFile(path, []byte("port: 3100\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 3100 {
		t.Errorf("Port = %d, want 3100", cfg.Port)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want default 3000", cfg.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET_DEVPULSE_VAR:-default}", "default", false},
		{"missing required", "${MISSING_DEVPULSE_VAR}", "", true},
		{"empty default", "${UNSET_DEVPULSE_VAR:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}
