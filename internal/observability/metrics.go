package observability

import (
	"strconv"
	"sync"
	"time"
)

// Counter groups exposed by Snapshot.
const (
	groupRequests = "requests"
	groupErrors   = "errors"
	groupOutcomes = "outcomes"
	groupLatency  = "latency_ms_total"
)

// Metrics provides in-memory counters exposed on /metrics. Counters are
// grouped by concern and keyed by a per-group label.
type Metrics struct {
	mu     sync.Mutex
	groups map[string]map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{groups: map[string]map[string]int64{
		groupRequests: {},
		groupErrors:   {},
		groupOutcomes: {},
		groupLatency:  {},
	}}
}

// RecordRequest counts a finished request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	key := requestKey(path, method, status)
	m.add(groupRequests, key, 1)
	m.add(groupLatency, key, duration.Milliseconds())
}

// RecordError counts a request that resolved to a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	m.add(groupErrors, path+"|"+method+"|"+code, 1)
}

// RecordOutcome counts signing pipeline outcomes such as issued signatures,
// demotions and rejections.
func (m *Metrics) RecordOutcome(name string) {
	m.add(groupOutcomes, name, 1)
}

func (m *Metrics) add(group, key string, delta int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group][key] += delta
}

// Snapshot returns a copy of every counter group for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]map[string]int64, len(m.groups))
	for group, counters := range m.groups {
		copied := make(map[string]int64, len(counters))
		for key, value := range counters {
			copied[key] = value
		}
		out[group] = copied
	}
	return out
}

func requestKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
