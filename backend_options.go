package devpulse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// backendConfig holds mutable state during backend construction.
type backendConfig struct {
	healthPath    string
	dbCheckPath   string
	infoPath      string
	headers       map[string]string
	timeout       time.Duration
	infoExtractor InfoExtractor
}

// BackendOption configures a [Backend] during [NewBackend].
type BackendOption func(*backendConfig) error

// WithHealthPath overrides the health check path (default "/health").
func WithHealthPath(path string) BackendOption {
	return func(cfg *backendConfig) error {
		p, err := normalizePath("health", path)
		if err != nil {
			return err
		}
		cfg.healthPath = p
		return nil
	}
}

// WithDBCheckPath overrides the db check path (default "/api/db-check").
func WithDBCheckPath(path string) BackendOption {
	return func(cfg *backendConfig) error {
		p, err := normalizePath("db check", path)
		if err != nil {
			return err
		}
		cfg.dbCheckPath = p
		return nil
	}
}

// WithInfoPath overrides the info call path (default "/api").
func WithInfoPath(path string) BackendOption {
	return func(cfg *backendConfig) error {
		p, err := normalizePath("info", path)
		if err != nil {
			return err
		}
		cfg.infoPath = p
		return nil
	}
}

// WithHeaders adds HTTP headers sent with every probe.
//
// Accepts key-value pairs; an odd number of arguments is an error.
//
// Example:
//
//	be, err := devpulse.NewBackend(url,
//	    devpulse.WithHeaders("Authorization", "Bearer dev"),
//	)
func WithHeaders(keyValues ...string) BackendOption {
	return func(cfg *backendConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithTimeout sets the per-probe timeout (default 5s). A probe that does
// not finish in time counts as failed.
func WithTimeout(d time.Duration) BackendOption {
	return func(cfg *backendConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithInfoExtractor sets how the info call body is decoded.
// A nil extractor is rejected.
func WithInfoExtractor(e InfoExtractor) BackendOption {
	return func(cfg *backendConfig) error {
		if e == nil {
			return errors.New("info extractor cannot be nil")
		}
		cfg.infoExtractor = e
		return nil
	}
}

func normalizePath(name, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%s path cannot be empty", name)
	}
	if strings.ContainsAny(path, "?#") {
		return "", fmt.Errorf("%s path must not contain a query or fragment", name)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}
