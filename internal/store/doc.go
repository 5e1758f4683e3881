// Package store holds the single status record shown on the landing page.
//
// The record is written one field at a time through [RecordStore.Apply] and
// read through [RecordStore.Get]. Every applied write is fanned out to
// channel subscribers (used by the Server-Sent Events stream). Sends are
// non-blocking; a slow subscriber misses updates instead of stalling the
// poller.
//
// [RecordStore.Freeze] ends the write lifecycle: later writes are discarded,
// which is how a stopped poller guarantees that late results never land.
package store
