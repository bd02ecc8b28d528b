// Package metrics tracks in-process oracle counters for the /metrics and
// /metrics/prometheus HTTP surface.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector holds lock-free counters for the oracle's fulfillment pipeline.
type Collector struct {
	requestsReceived          uint64
	requestsFulfilled         uint64
	requestsFailed            uint64
	totalFulfillmentLatencyMs uint64
	fulfillmentCount          uint64
	pendingFulfillments       int64
	startedAt                 time.Time
}

// NewCollector creates a zeroed Collector.
func NewCollector() *Collector {
	return &Collector{startedAt: time.Now()}
}

// RecordRequestReceived increments requests_received, called once per
// deduplicated request admitted to the fulfillment queue.
func (c *Collector) RecordRequestReceived() {
	atomic.AddUint64(&c.requestsReceived, 1)
}

// RecordPendingDelta adjusts the in-flight fulfillment count, called when a
// task is dispatched (+1) and when it completes (-1).
func (c *Collector) RecordPendingDelta(delta int64) {
	atomic.AddInt64(&c.pendingFulfillments, delta)
}

// RecordSuccess records a successful fulfillment and its latency.
func (c *Collector) RecordSuccess(latency time.Duration) {
	atomic.AddUint64(&c.requestsFulfilled, 1)
	atomic.AddUint64(&c.fulfillmentCount, 1)
	atomic.AddUint64(&c.totalFulfillmentLatencyMs, uint64(latency.Milliseconds()))
}

// RecordFailure increments requests_failed for an unexpected fulfillment
// failure. Silent-skip errors must not call this.
func (c *Collector) RecordFailure() {
	atomic.AddUint64(&c.requestsFailed, 1)
}

// Snapshot is a point-in-time read of all counters, matching the /metrics
// JSON shape.
type Snapshot struct {
	RequestsReceived        uint64  `json:"requests_received"`
	RequestsFulfilled       uint64  `json:"requests_fulfilled"`
	RequestsFailed          uint64  `json:"requests_failed"`
	AvgFulfillmentLatencyMs float64 `json:"avg_fulfillment_latency_ms"`
	TotalFulfillmentLatencyMs uint64 `json:"total_fulfillment_latency_ms"`
	FulfillmentCount        uint64  `json:"fulfillment_count"`
	PendingFulfillments     int64   `json:"pending_fulfillments"`
}

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() Snapshot {
	count := atomic.LoadUint64(&c.fulfillmentCount)
	total := atomic.LoadUint64(&c.totalFulfillmentLatencyMs)

	var avg float64
	if count > 0 {
		avg = float64(total) / float64(count)
	}

	return Snapshot{
		RequestsReceived:          atomic.LoadUint64(&c.requestsReceived),
		RequestsFulfilled:         atomic.LoadUint64(&c.requestsFulfilled),
		RequestsFailed:            atomic.LoadUint64(&c.requestsFailed),
		AvgFulfillmentLatencyMs:   avg,
		TotalFulfillmentLatencyMs: total,
		FulfillmentCount:          count,
		PendingFulfillments:       atomic.LoadInt64(&c.pendingFulfillments),
	}
}

// Prometheus renders the snapshot as Prometheus text exposition, matching
// the counter names used by the JSON surface.
func (c *Collector) Prometheus() string {
	s := c.Snapshot()
	return fmt.Sprintf(`# HELP vrf_oracle_requests_received_total Randomness requests admitted to the fulfillment queue
# TYPE vrf_oracle_requests_received_total counter
vrf_oracle_requests_received_total %d

# HELP vrf_oracle_requests_fulfilled_total Successfully fulfilled randomness requests
# TYPE vrf_oracle_requests_fulfilled_total counter
vrf_oracle_requests_fulfilled_total %d

# HELP vrf_oracle_requests_failed_total Fulfillment attempts that failed with an error other than a silent-skip condition
# TYPE vrf_oracle_requests_failed_total counter
vrf_oracle_requests_failed_total %d

# HELP vrf_oracle_fulfillment_latency_ms_avg Average fulfillment latency in milliseconds
# TYPE vrf_oracle_fulfillment_latency_ms_avg gauge
vrf_oracle_fulfillment_latency_ms_avg %f

# HELP vrf_oracle_pending_fulfillments In-flight fulfillment tasks
# TYPE vrf_oracle_pending_fulfillments gauge
vrf_oracle_pending_fulfillments %d
`,
		s.RequestsReceived,
		s.RequestsFulfilled,
		s.RequestsFailed,
		s.AvgFulfillmentLatencyMs,
		s.PendingFulfillments,
	)
}
