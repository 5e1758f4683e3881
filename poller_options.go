package devpulse

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is the time between poll cycles.
const DefaultPollInterval = 10 * time.Second

// pollerConfig holds mutable state during poller construction.
type pollerConfig struct {
	interval  time.Duration
	logger    *zap.Logger
	callbacks []func(StatusRecord)
}

// PollerOption configures a [Poller] during [NewPoller].
type PollerOption func(*pollerConfig) error

// WithInterval sets the time between poll cycles (default 10s).
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) PollerOption {
	return func(cfg *pollerConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithPollerLogger sets the logger used for poll cycle events.
// Defaults to a no-op logger. Returns an error if logger is nil.
func WithPollerLogger(logger *zap.Logger) PollerOption {
	return func(cfg *pollerConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithRecordCallback registers fn to be called with a snapshot after every
// applied field write. It is equivalent to calling [Poller.Subscribe] right
// after construction. Nil callbacks are ignored.
//
// Callbacks run synchronously on the polling goroutines and must not block.
// Panics are recovered and logged.
func WithRecordCallback(fn func(StatusRecord)) PollerOption {
	return func(cfg *pollerConfig) error {
		if fn == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, fn)
		return nil
	}
}
