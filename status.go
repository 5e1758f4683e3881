package devpulse

import (
	"time"

	"github.com/jpalmerr/devpulse/internal/store"
)

// Placeholder is shown for Version and Environment until the info call
// succeeds, and whenever the backend omits the field.
const Placeholder = "-"

// APIStatus is the liveness state of the backend API.
type APIStatus string

const (
	// APIUnknown means the state could not be mapped.
	APIUnknown APIStatus = "unknown"

	// APIChecking is the initial state before the first health check resolves.
	APIChecking APIStatus = "checking"

	// APIOK means the last health check returned 2xx.
	APIOK APIStatus = "ok"

	// APIError means the last health check failed.
	APIError APIStatus = "error"
)

// String implements fmt.Stringer.
func (s APIStatus) String() string {
	return string(s)
}

// Label returns the display text for the status.
func (s APIStatus) Label() string {
	switch s {
	case APIChecking:
		return "Checking..."
	case APIOK:
		return "OK"
	case APIError:
		return "Error"
	default:
		return "Unknown"
	}
}

// DBStatus is the database connectivity state reported by the backend.
type DBStatus string

const (
	// DBUnknown means the state could not be mapped.
	DBUnknown DBStatus = "unknown"

	// DBChecking is the initial state before the first db check resolves.
	DBChecking DBStatus = "checking"

	// DBConnected means the last db check returned 2xx.
	DBConnected DBStatus = "connected"

	// DBDisconnected means the last db check failed.
	DBDisconnected DBStatus = "disconnected"
)

// String implements fmt.Stringer.
func (s DBStatus) String() string {
	return string(s)
}

// Label returns the display text for the status.
func (s DBStatus) Label() string {
	switch s {
	case DBChecking:
		return "Checking..."
	case DBConnected:
		return "Connected"
	case DBDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// StatusRecord is a snapshot of the last known backend state.
//
// Every field is always set: statuses start at checking and strings start
// at [Placeholder]. Fields are updated independently, so a failure in one
// probe never touches the fields owned by another.
type StatusRecord struct {
	// APIStatus is written by the health check.
	APIStatus APIStatus

	// DBStatus is written by the db check.
	DBStatus DBStatus

	// Version is written by the info call. It keeps the last known good
	// value when later health or info calls fail.
	Version string

	// Environment is written by the info call, with the same retention rule
	// as Version.
	Environment string

	// UpdatedAt is the time of the last applied field write.
	UpdatedAt time.Time
}

// NewStatusRecord returns the record a poller starts with.
func NewStatusRecord() StatusRecord {
	return StatusRecord{
		APIStatus:   APIChecking,
		DBStatus:    DBChecking,
		Version:     Placeholder,
		Environment: Placeholder,
	}
}

// toStoreRecord converts to the wire representation, adding display labels.
func toStoreRecord(r StatusRecord) store.Record {
	return store.Record{
		APIStatus:   r.APIStatus.String(),
		APILabel:    r.APIStatus.Label(),
		DBStatus:    r.DBStatus.String(),
		DBLabel:     r.DBStatus.Label(),
		Version:     r.Version,
		Environment: r.Environment,
		UpdatedAt:   r.UpdatedAt,
	}
}

// fromStoreRecord converts the wire representation back to a StatusRecord.
func fromStoreRecord(r store.Record) StatusRecord {
	return StatusRecord{
		APIStatus:   APIStatus(r.APIStatus),
		DBStatus:    DBStatus(r.DBStatus),
		Version:     r.Version,
		Environment: r.Environment,
		UpdatedAt:   r.UpdatedAt,
	}
}

func setAPIStatus(r *store.Record, s APIStatus) {
	r.APIStatus = s.String()
	r.APILabel = s.Label()
}

func setDBStatus(r *store.Record, s DBStatus) {
	r.DBStatus = s.String()
	r.DBLabel = s.Label()
}
