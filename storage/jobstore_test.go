package storage

import (
	"os"
	"testing"
	"time"

	"github.com/solana-vrf/oracle-backend/oracle"
)

func TestJobStoreRecordAndRecent(t *testing.T) {
	testDir := "./test_jobstore_db"
	defer os.RemoveAll(testDir)

	store, err := NewJobStore(testDir, time.Hour)
	if err != nil {
		t.Fatalf("failed to create job store: %v", err)
	}
	defer store.Close()

	store.RecordJob(oracle.JobOutcome{
		RequestID:  1,
		Success:    true,
		Signature:  "sig1",
		LatencyMs:  120,
		FinishedAt: time.Now().Add(-time.Minute),
	})
	store.RecordJob(oracle.JobOutcome{
		RequestID:  2,
		Success:    false,
		Err:        "custom program error: RequestNotPending",
		FinishedAt: time.Now(),
	})

	jobs := store.Recent(10)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].RequestID != 2 {
		t.Errorf("expected most recent job first (request 2), got %d", jobs[0].RequestID)
	}
	if jobs[1].Signature != "sig1" {
		t.Errorf("expected request 1's signature preserved, got %q", jobs[1].Signature)
	}
}

func TestJobStoreRecentRespectsLimit(t *testing.T) {
	testDir := "./test_jobstore_limit_db"
	defer os.RemoveAll(testDir)

	store, err := NewJobStore(testDir, time.Hour)
	if err != nil {
		t.Fatalf("failed to create job store: %v", err)
	}
	defer store.Close()

	for i := uint64(0); i < 5; i++ {
		store.RecordJob(oracle.JobOutcome{RequestID: i, Success: true, FinishedAt: time.Now()})
	}

	jobs := store.Recent(3)
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs with limit, got %d", len(jobs))
	}
}

func TestJobStoreOverwritesOnRetry(t *testing.T) {
	testDir := "./test_jobstore_overwrite_db"
	defer os.RemoveAll(testDir)

	store, err := NewJobStore(testDir, time.Hour)
	if err != nil {
		t.Fatalf("failed to create job store: %v", err)
	}
	defer store.Close()

	store.RecordJob(oracle.JobOutcome{RequestID: 9, Success: false, Err: "blockhash not found", FinishedAt: time.Now()})
	store.RecordJob(oracle.JobOutcome{RequestID: 9, Success: true, Signature: "final-sig", FinishedAt: time.Now()})

	jobs := store.Recent(10)
	if len(jobs) != 1 {
		t.Fatalf("expected a single record for repeated request id, got %d", len(jobs))
	}
	if !jobs[0].Success || jobs[0].Signature != "final-sig" {
		t.Errorf("expected the later successful outcome to win, got %+v", jobs[0])
	}
}
