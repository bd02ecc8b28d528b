// Package oracle implements the event-driven fulfillment pipeline: the
// listener (catch-up scan + live log subscription) and the fulfiller
// (bounded worker pool, retry-with-backoff transaction submission).
package oracle

import "sync"

// Deduplicator is a process-local, non-persistent set of request ids
// already dispatched for fulfillment. Both the catch-up scan and the live
// log subscription consult it before emitting a request; the chain's own
// Pending-status check is the correctness backstop, so losing this set on
// restart is harmless.
type Deduplicator struct {
	mu   sync.Mutex
	seen map[uint64]struct{}
}

// NewDeduplicator creates an empty dedup set.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[uint64]struct{})}
}

// InsertIfAbsent returns true if requestID had not been seen before, and
// records it as seen. First-insertion wins.
func (d *Deduplicator) InsertIfAbsent(requestID uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[requestID]; ok {
		return false
	}
	d.seen[requestID] = struct{}{}
	return true
}

// Len reports how many request ids have been seen so far.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
