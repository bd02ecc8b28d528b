package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestSnapshotComputesAverageLatency(t *testing.T) {
	c := NewCollector()
	c.RecordSuccess(100 * time.Millisecond)
	c.RecordSuccess(300 * time.Millisecond)

	snap := c.Snapshot()
	if snap.FulfillmentCount != 2 {
		t.Fatalf("expected fulfillment_count=2, got %d", snap.FulfillmentCount)
	}
	if snap.AvgFulfillmentLatencyMs != 200 {
		t.Fatalf("expected avg latency 200ms, got %f", snap.AvgFulfillmentLatencyMs)
	}
}

func TestSnapshotAverageLatencyZeroWithNoFulfillments(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()
	if snap.AvgFulfillmentLatencyMs != 0 {
		t.Fatalf("expected zero avg latency with no fulfillments, got %f", snap.AvgFulfillmentLatencyMs)
	}
}

func TestRecordPendingDeltaTracksInFlightCount(t *testing.T) {
	c := NewCollector()
	c.RecordPendingDelta(1)
	c.RecordPendingDelta(1)
	c.RecordPendingDelta(-1)

	if got := c.Snapshot().PendingFulfillments; got != 1 {
		t.Fatalf("expected pending_fulfillments=1, got %d", got)
	}
}

func TestRecordFailureIncrementsRequestsFailed(t *testing.T) {
	c := NewCollector()
	c.RecordFailure()
	c.RecordFailure()

	if got := c.Snapshot().RequestsFailed; got != 2 {
		t.Fatalf("expected requests_failed=2, got %d", got)
	}
}

func TestPrometheusContainsAllCounters(t *testing.T) {
	c := NewCollector()
	c.RecordRequestReceived()
	c.RecordSuccess(50 * time.Millisecond)
	c.RecordFailure()

	out := c.Prometheus()
	for _, name := range []string{
		"vrf_oracle_requests_received_total",
		"vrf_oracle_requests_fulfilled_total",
		"vrf_oracle_requests_failed_total",
		"vrf_oracle_fulfillment_latency_ms_avg",
		"vrf_oracle_pending_fulfillments",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("expected prometheus output to contain %q", name)
		}
	}
}
