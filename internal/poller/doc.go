// Package poller provides the HTTP probe client and the interval scheduler
// behind the devpulse status poller.
//
// The main components are:
//
//   - [Client]: GET-only probe client with per-request timeouts and a 1MB body limit
//   - [Response]: outcome of one probe, with [Response.Err] folding non-2xx into an error
//   - [Scheduler]: runs one task immediately and then on a fixed interval, skipping overlapping ticks
//
// Users of the devpulse library should not need to interact with this
// package directly.
package poller
