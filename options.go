package devpulse

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// dpConfig holds mutable state during DevPulse construction.
type dpConfig struct {
	backend         *Backend
	pollingInterval time.Duration
	port            int
	title           string
	subtitle        string
	links           []Link
	logger          *zap.Logger
	statusCallbacks []func(StatusRecord)
}

// Option configures a [DevPulse] instance during [New].
//
// Options return an error if validation fails.
type Option func(*dpConfig) error

// WithBackend sets the API to probe. Create it with [NewBackend].
//
// Defaults to [DefaultBaseURL] with the default paths.
func WithBackend(b Backend) Option {
	return func(cfg *dpConfig) error {
		if b.baseURL == "" {
			return errors.New("backend is not configured, use NewBackend")
		}
		cfg.backend = &b
		return nil
	}
}

// WithPollingInterval sets how often the backend is probed.
// Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *dpConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithPort sets the HTTP port of the landing page. Defaults to 3000.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *dpConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the page heading and browser tab title.
// An empty title keeps the default "devpulse".
func WithTitle(title string) Option {
	return func(cfg *dpConfig) error {
		if title != "" {
			cfg.title = title
		}
		return nil
	}
}

// WithSubtitle sets the line under the page heading.
// An empty subtitle keeps the default "Development Environment".
func WithSubtitle(subtitle string) Option {
	return func(cfg *dpConfig) error {
		if subtitle != "" {
			cfg.subtitle = subtitle
		}
		return nil
	}
}

// WithLinks adds service addresses listed under the status widget.
//
// Example:
//
//	dp, err := devpulse.New(
//	    devpulse.WithLinks(
//	        devpulse.Link{Name: "Backend", URL: "http://localhost:8080"},
//	        devpulse.Link{Name: "Database", URL: "localhost:5432"},
//	    ),
//	)
//
// Returns an error if a link has an empty name or URL.
func WithLinks(links ...Link) Option {
	return func(cfg *dpConfig) error {
		for _, l := range links {
			if l.Name == "" || l.URL == "" {
				return errors.New("link name and URL cannot be empty")
			}
		}
		cfg.links = append(cfg.links, links...)
		return nil
	}
}

// WithLogger sets the [zap.Logger] used by the poller and the HTTP server.
// Defaults to a no-op logger.
//
// Returns an error if the logger is nil.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *dpConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithStatusCallback registers a function called with a snapshot of the
// [StatusRecord] after every field write.
//
// Callbacks run synchronously on the polling goroutines and must not block.
// Panics are recovered and logged; they do not stop polling.
//
// Example:
//
//	dp, err := devpulse.New(
//	    devpulse.WithStatusCallback(func(r devpulse.StatusRecord) {
//	        if r.DBStatus == devpulse.DBDisconnected {
//	            log.Println("database is down")
//	        }
//	    }),
//	)
//
// Nil callbacks are ignored.
func WithStatusCallback(cb func(StatusRecord)) Option {
	return func(cfg *dpConfig) error {
		if cb == nil {
			return nil
		}
		cfg.statusCallbacks = append(cfg.statusCallbacks, cb)
		return nil
	}
}
