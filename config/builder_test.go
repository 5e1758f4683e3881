package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/jpalmerr/devpulse"
)

func TestBuildBackend_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	be, err := BuildBackend(cfg)
	if err != nil {
		t.Fatalf("BuildBackend() error = %v", err)
	}
	if be.HealthURL() != "http://localhost:8080/health" {
		t.Errorf("HealthURL() = %q", be.HealthURL())
	}
	if be.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v", be.Timeout())
	}
}

func TestBuildBackend_AllOptions(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			BaseURL:      "https://api.acme.local",
			Timeout:      Duration(2 * time.Second),
			HealthPath:   "/livez",
			DBCheckPath:  "/v1/db",
			InfoPath:     "/v1/info",
			Headers:      map[string]string{"X-B": "2", "X-A": "1"},
			VersionField: "build.version",
		},
	}

	be, err := BuildBackend(cfg)
	if err != nil {
		t.Fatalf("BuildBackend() error = %v", err)
	}

	if be.HealthURL() != "https://api.acme.local/livez" {
		t.Errorf("HealthURL() = %q", be.HealthURL())
	}
	if be.DBCheckURL() != "https://api.acme.local/v1/db" {
		t.Errorf("DBCheckURL() = %q", be.DBCheckURL())
	}
	if be.InfoURL() != "https://api.acme.local/v1/info" {
		t.Errorf("InfoURL() = %q", be.InfoURL())
	}
	if be.Timeout() != 2*time.Second {
		t.Errorf("Timeout() = %v", be.Timeout())
	}
	if !reflect.DeepEqual(be.Headers(), map[string]string{"X-A": "1", "X-B": "2"}) {
		t.Errorf("Headers() = %v", be.Headers())
	}

	info, err := be.InfoExtractor()([]byte(`{"build":{"version":"5.0"},"env":"qa"}`))
	if err != nil {
		t.Fatalf("extractor error = %v", err)
	}
	if info.Version != "5.0" || info.Environment != "qa" {
		t.Errorf("info = %+v, want version from build.version and env from default field", info)
	}
}

func TestBuildBackend_InvalidPath(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8080",
			Timeout:    Duration(time.Second),
			HealthPath: "/health?verbose=1",
		},
	}
	if _, err := BuildBackend(cfg); err == nil {
		t.Error("BuildBackend() expected error for path with query")
	}
}

func TestBuildOptions(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]byte(`
title: Acme
subtitle: Local
port: 4000
poll_interval: 20s
links:
  - name: Backend
    url: http://localhost:8080
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	opts, err := BuildOptions(cfg)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}

	dp, err := devpulse.New(opts...)
	if err != nil {
		t.Fatalf("devpulse.New() error = %v", err)
	}
	if dp.Port() != 4000 {
		t.Errorf("Port() = %d, want 4000", dp.Port())
	}
	if dp.PollingInterval() != 20*time.Second {
		t.Errorf("PollingInterval() = %v, want 20s", dp.PollingInterval())
	}
	if dp.Backend().BaseURL() != "http://localhost:8080" {
		t.Errorf("Backend().BaseURL() = %q", dp.Backend().BaseURL())
	}
}

func TestMapToKeyValuePairs_Sorted(t *testing.T) {
	got := mapToKeyValuePairs(map[string]string{"b": "2", "a": "1", "c": "3"})
	want := []string{"a", "1", "b", "2", "c", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mapToKeyValuePairs() = %v, want %v", got, want)
	}
}
