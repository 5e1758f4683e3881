package devpulse

import (
	"errors"
	"fmt"
)

// ErrCallFailed is the single failure kind of an outbound probe: network
// error, timeout, non-2xx status or malformed body. Poll cycles catch it
// locally and map it to a status value; it is only visible in logs.
var ErrCallFailed = errors.New("outbound call failed")

var (
	// ErrAlreadyStarted is returned by [Poller.Start] on a running poller.
	ErrAlreadyStarted = errors.New("poller already started")

	// ErrStopped is returned by [Poller.Start] once the poller has been stopped.
	ErrStopped = errors.New("poller stopped")
)

// callError wraps cause as an [ErrCallFailed] for the named probe.
func callError(probe string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrCallFailed, probe, cause)
}
