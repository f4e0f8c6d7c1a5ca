package metrics

import (
	"sync"
	"time"
)

// Metrics counts what happened to the netlink messages of one run
type Metrics struct {
	Received   int64 // Messages delivered by the session
	Ignored    int64 // Messages of a type that is not shown
	Rejected   int64 // Routes dropped by the family or table selection
	Malformed  int64 // Messages too short to hold their header
	Rendered   int64 // Records written to the output
	Renewals   int64 // DHCP renew requests sent
	StartTime  time.Time
	LastUpdate time.Time
	mutex      sync.RWMutex
}

// Snapshot is a copy of the counters
type Snapshot struct {
	Received  int64
	Ignored   int64
	Rejected  int64
	Malformed int64
	Rendered  int64
	Renewals  int64
	Elapsed   time.Duration
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	now := time.Now()
	return &Metrics{
		StartTime:  now,
		LastUpdate: now,
	}
}

func (m *Metrics) add(counter *int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	*counter++
	m.LastUpdate = time.Now()
}

// RecordReceived records a message delivered by the session
func (m *Metrics) RecordReceived() { m.add(&m.Received) }

// RecordIgnored records a message of an unhandled type
func (m *Metrics) RecordIgnored() { m.add(&m.Ignored) }

// RecordRejected records a route dropped by the selection
func (m *Metrics) RecordRejected() { m.add(&m.Rejected) }

// RecordMalformed records a message that could not be decoded
func (m *Metrics) RecordMalformed() { m.add(&m.Malformed) }

// RecordRendered records a route written to the output
func (m *Metrics) RecordRendered() { m.add(&m.Rendered) }

// RecordRenewal records a DHCP renew request
func (m *Metrics) RecordRenewal() { m.add(&m.Renewals) }

// GetStats returns the metrics statistics
func (m *Metrics) GetStats() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return Snapshot{
		Received:  m.Received,
		Ignored:   m.Ignored,
		Rejected:  m.Rejected,
		Malformed: m.Malformed,
		Rendered:  m.Rendered,
		Renewals:  m.Renewals,
		Elapsed:   m.LastUpdate.Sub(m.StartTime),
	}
}

// Fields returns the counters as logger key/values
func (s Snapshot) Fields() map[string]interface{} {
	return map[string]interface{}{
		"received":   s.Received,
		"ignored":    s.Ignored,
		"rejected":   s.Rejected,
		"malformed":  s.Malformed,
		"rendered":   s.Rendered,
		"renewals":   s.Renewals,
		"elapsed_ms": s.Elapsed.Milliseconds(),
	}
}
