package store

import (
	"sync"
	"time"
)

const subscriberBuffer = 100

// RecordStore is the in-memory [Store] owning the one status record.
//
// Writes go through [RecordStore.Apply], which runs a mutation under the
// write lock so each field update is atomic. After [RecordStore.Freeze] the
// record is read-only.
type RecordStore struct {
	mu     sync.RWMutex
	record Record
	frozen bool

	subMu       sync.RWMutex
	subscribers map[chan Record]struct{}

	now func() time.Time
}

// NewRecordStore creates a store seeded with initial.
func NewRecordStore(initial Record) *RecordStore {
	return &RecordStore{
		record:      initial,
		subscribers: make(map[chan Record]struct{}),
		now:         time.Now,
	}
}

// Get returns a copy of the current record.
func (m *RecordStore) Get() Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.record
}

// Apply runs mutate against the record and stamps UpdatedAt.
//
// It returns the resulting record and true, or the unchanged record and
// false when the store is frozen (mutate is not called in that case).
// Subscribers are notified after the lock is released.
func (m *RecordStore) Apply(mutate func(*Record)) (Record, bool) {
	m.mu.Lock()
	if m.frozen {
		rec := m.record
		m.mu.Unlock()
		return rec, false
	}
	mutate(&m.record)
	m.record.UpdatedAt = m.now()
	rec := m.record
	m.mu.Unlock()

	m.notifySubscribers(rec)
	return rec, true
}

// Freeze makes every later Apply a no-op. Idempotent.
func (m *RecordStore) Freeze() {
	m.mu.Lock()
	m.frozen = true
	m.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (m *RecordStore) Frozen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frozen
}

// Subscribe creates a subscription with a buffer of 100 records.
// If the buffer fills, updates are dropped for this subscriber.
func (m *RecordStore) Subscribe() <-chan Record {
	ch := make(chan Record, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *RecordStore) Unsubscribe(ch <-chan Record) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *RecordStore) notifySubscribers(rec Record) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- rec:
		default:
			// slow subscriber, drop
		}
	}
}
