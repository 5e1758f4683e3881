package devpulse

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is used when no backend URL is configured.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultTimeout bounds each outbound probe.
	DefaultTimeout = 5 * time.Second

	defaultHealthPath  = "/health"
	defaultDBCheckPath = "/api/db-check"
	defaultInfoPath    = "/api"
)

// Backend describes the API the poller probes: a base URL and the paths of
// the health check, db check and info call.
//
// Backend is immutable after creation via [NewBackend]. Getters return
// copies of mutable data.
type Backend struct {
	baseURL       string
	healthPath    string
	dbCheckPath   string
	infoPath      string
	headers       map[string]string
	timeout       time.Duration
	infoExtractor InfoExtractor
}

// NewBackend creates a [Backend] rooted at baseURL.
//
// baseURL must be an absolute http or https URL; a trailing slash is
// ignored. An empty baseURL selects [DefaultBaseURL]. Defaults: paths
// /health, /api/db-check and /api, a 5 second timeout and
// [DefaultInfoExtractor].
//
// Example:
//
//	be, err := devpulse.NewBackend(os.Getenv("API_URL"),
//	    devpulse.WithHeaders("Authorization", "Bearer dev"),
//	)
func NewBackend(baseURL string, opts ...BackendOption) (Backend, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return Backend{}, fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Backend{}, errors.New("base URL must have an http:// or https:// scheme")
	}
	if parsed.Host == "" {
		return Backend{}, errors.New("base URL must have a host")
	}

	cfg := &backendConfig{
		healthPath:    defaultHealthPath,
		dbCheckPath:   defaultDBCheckPath,
		infoPath:      defaultInfoPath,
		headers:       make(map[string]string),
		timeout:       DefaultTimeout,
		infoExtractor: DefaultInfoExtractor,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Backend{}, err
		}
	}

	return Backend{
		baseURL:       strings.TrimRight(baseURL, "/"),
		healthPath:    cfg.healthPath,
		dbCheckPath:   cfg.dbCheckPath,
		infoPath:      cfg.infoPath,
		headers:       cfg.headers,
		timeout:       cfg.timeout,
		infoExtractor: cfg.infoExtractor,
	}, nil
}

// BaseURL returns the base URL without a trailing slash.
func (b Backend) BaseURL() string {
	return b.baseURL
}

// HealthURL returns the full URL of the health check.
func (b Backend) HealthURL() string {
	return b.baseURL + b.healthPath
}

// DBCheckURL returns the full URL of the db check.
func (b Backend) DBCheckURL() string {
	return b.baseURL + b.dbCheckPath
}

// InfoURL returns the full URL of the info call.
func (b Backend) InfoURL() string {
	return b.baseURL + b.infoPath
}

// Headers returns a copy of the headers sent with every probe.
func (b Backend) Headers() map[string]string {
	return copyMap(b.headers)
}

// Timeout returns the per-probe timeout.
func (b Backend) Timeout() time.Duration {
	return b.timeout
}

// InfoExtractor returns the decoder applied to the info call body.
func (b Backend) InfoExtractor() InfoExtractor {
	return b.infoExtractor
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
