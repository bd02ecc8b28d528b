// Package storage persists diagnostic fulfillment history for the
// /api/jobs surface. It holds no state the fulfillment pipeline depends
// on for correctness — the in-memory Deduplicator and the chain's own
// Pending-status check are what prevent double-fulfillment, and this store can be deleted and recreated
// without affecting oracle behavior.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"

	"github.com/solana-vrf/oracle-backend/oracle"
)

const jobKeyPrefix = "job:"

// JobRecord is the persisted shape of one fulfillment attempt, keyed by
// request ID so repeated attempts against the same request overwrite
// rather than accumulate.
type JobRecord struct {
	RequestID  uint64    `json:"request_id"`
	Success    bool      `json:"success"`
	Signature  string    `json:"signature,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	Err        string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

func fromOutcome(o oracle.JobOutcome) JobRecord {
	return JobRecord{
		RequestID:  o.RequestID,
		Success:    o.Success,
		Signature:  o.Signature,
		LatencyMs:  o.LatencyMs,
		Err:        o.Err,
		FinishedAt: o.FinishedAt,
	}
}

// JobStore is a BadgerDB-backed ring of recent fulfillment outcomes with
// a bounded retention window, enforced via per-entry TTL rather than a
// count cap.
type JobStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewJobStore opens (or creates) a BadgerDB store at path. Entries older
// than ttl are dropped by BadgerDB's own expiry, so the store never
// grows unbounded even under sustained load. A ttl of zero or less
// stores entries without expiry.
func NewJobStore(path string, ttl time.Duration) (*JobStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	log.Info().Str("path", path).Dur("ttl", ttl).Msg("job store initialized")

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			_ = db.RunValueLogGC(0.5)
		}
	}()

	return &JobStore{db: db, ttl: ttl}, nil
}

// Close closes the underlying database.
func (s *JobStore) Close() error {
	return s.db.Close()
}

// RecordJob implements oracle.JobRecorder, persisting outcome keyed by
// request ID with the store's configured TTL.
func (s *JobStore) RecordJob(o oracle.JobOutcome) {
	outcome := fromOutcome(o)
	data, err := json.Marshal(outcome)
	if err != nil {
		log.Warn().Err(err).Uint64("request_id", outcome.RequestID).Msg("failed to marshal job outcome")
		return
	}

	key := []byte(fmt.Sprintf("%s%d", jobKeyPrefix, outcome.RequestID))
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		log.Warn().Err(err).Uint64("request_id", outcome.RequestID).Msg("failed to persist job outcome")
	}
}

// Recent returns up to limit job records, most recently finished first.
// It is O(n) in the number of stored jobs; fine for the small retention
// window the TTL enforces.
func (s *JobStore) Recent(limit int) []JobRecord {
	var jobs []JobRecord

	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(jobKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var rec JobRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return nil
				}
				jobs = append(jobs, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	sortJobsByFinishedAtDesc(jobs)
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs
}

func sortJobsByFinishedAtDesc(jobs []JobRecord) {
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && jobs[j].FinishedAt.After(jobs[j-1].FinishedAt); j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}
}
