package store

import "time"

// Record is the wire representation of the status widget's state.
//
// It carries both the machine-readable status values and their display
// labels, so the landing page script never has to know the mapping.
type Record struct {
	// APIStatus is the backend liveness state ("checking", "ok", "error", ...).
	APIStatus string `json:"api_status"`

	// APILabel is the display text for APIStatus.
	APILabel string `json:"api_label"`

	// DBStatus is the database connectivity state ("checking", "connected", ...).
	DBStatus string `json:"db_status"`

	// DBLabel is the display text for DBStatus.
	DBLabel string `json:"db_label"`

	// Version is the backend version, or a placeholder until known.
	Version string `json:"version"`

	// Environment is the backend environment name, or a placeholder until known.
	Environment string `json:"environment"`

	// UpdatedAt is the time of the last applied write. Zero before the first.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines read and subscription access to the status record.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Get returns a copy of the current record.
	Get() Record

	// Subscribe returns a channel receiving the record after every applied write.
	// Caller must call Unsubscribe when done.
	Subscribe() <-chan Record

	// Unsubscribe removes a subscription and closes its channel.
	// Safe to call with an unknown or already removed channel.
	Unsubscribe(ch <-chan Record)
}
