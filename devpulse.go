package devpulse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jpalmerr/devpulse/dashboard"
	"github.com/jpalmerr/devpulse/internal/server"
)

const (
	defaultPort     = 3000
	defaultTitle    = "devpulse"
	defaultSubtitle = "Development Environment"
)

// Link is a service address shown under the status widget, such as the
// backend or database address.
type Link struct {
	Name string
	URL  string
}

// DevPulse is the landing page of a local development stack: a [Poller]
// watching the backend plus an HTTP server that shows the [StatusRecord].
//
// The typical lifecycle is:
//
//	dp, err := devpulse.New(devpulse.WithBackend(be))
//	if err != nil {
//	    logger.Fatal("failed to create devpulse", zap.Error(err))
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	dp.Start(ctx) // blocks until ctx is cancelled
//
// A DevPulse owns a single [Poller] and can only be started once.
type DevPulse struct {
	backend  Backend
	poller   *Poller
	interval time.Duration
	port     int
	title    string
	subtitle string
	links    []Link
	logger   *zap.Logger
}

// New creates a [DevPulse] with the given options.
//
// Defaults:
//   - Backend: [DefaultBaseURL] with the default paths
//   - Polling interval: 10 seconds
//   - Port: 3000
//   - Logger: no-op
//
// Returns an error if any option is invalid.
//
// Example:
//
//	be, _ := devpulse.NewBackend(os.Getenv("API_URL"))
//	dp, err := devpulse.New(
//	    devpulse.WithBackend(be),
//	    devpulse.WithPort(3000),
//	    devpulse.WithLinks(devpulse.Link{Name: "Backend", URL: be.BaseURL()}),
//	)
func New(opts ...Option) (*DevPulse, error) {
	cfg := &dpConfig{
		pollingInterval: DefaultPollInterval,
		port:            defaultPort,
		title:           defaultTitle,
		subtitle:        defaultSubtitle,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	backend := cfg.backend
	if backend == nil {
		be, err := NewBackend(DefaultBaseURL)
		if err != nil {
			return nil, err
		}
		backend = &be
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pollerOpts := []PollerOption{
		WithInterval(cfg.pollingInterval),
		WithPollerLogger(logger.Named("poller")),
	}
	for _, cb := range cfg.statusCallbacks {
		pollerOpts = append(pollerOpts, WithRecordCallback(cb))
	}

	p, err := NewPoller(*backend, pollerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create poller: %w", err)
	}

	return &DevPulse{
		backend:  *backend,
		poller:   p,
		interval: cfg.pollingInterval,
		port:     cfg.port,
		title:    cfg.title,
		subtitle: cfg.subtitle,
		links:    append([]Link(nil), cfg.links...),
		logger:   logger,
	}, nil
}

// Start begins polling the backend and serving the landing page.
//
// Start blocks until ctx is cancelled, then stops the poller and shuts the
// server down. It returns nil on graceful shutdown and an error if the
// poller or the HTTP server cannot start.
func (dp *DevPulse) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	dp.logger.Info("devpulse starting",
		zap.String("backend", dp.backend.BaseURL()),
		zap.Duration("interval", dp.interval),
		zap.String("url", fmt.Sprintf("http://localhost:%d", dp.port)),
	)

	stop, err := dp.poller.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start poller: %w", err)
	}
	defer stop()

	srv, err := server.NewServer(dp.poller.recordStore(), dp.port, dashboard.Assets, dp.page(), dp.logger.Named("http"))
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	dp.logger.Info("devpulse stopped")
	return nil
}

// Snapshot returns a copy of the current status record.
func (dp *DevPulse) Snapshot() StatusRecord {
	return dp.poller.Snapshot()
}

// Backend returns the probed backend.
func (dp *DevPulse) Backend() Backend {
	return dp.backend
}

// Port returns the configured HTTP port of the landing page.
func (dp *DevPulse) Port() int {
	return dp.port
}

// PollingInterval returns the time between poll cycles.
func (dp *DevPulse) PollingInterval() time.Duration {
	return dp.interval
}

func (dp *DevPulse) page() server.Page {
	links := make([]server.Link, len(dp.links))
	for i, l := range dp.links {
		links[i] = server.Link{Name: l.Name, URL: l.URL}
	}
	return server.Page{
		Title:    dp.title,
		Subtitle: dp.subtitle,
		Links:    links,
	}
}
