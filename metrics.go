package codereview

import "sync/atomic"

// MetricID identifies one counter in the client's in-process metrics.
type MetricID uint8

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts failed login attempts.
	MetricLoginFailure
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed token refreshes.
	MetricRefreshFailure
	// MetricSessionInvalidated counts session teardowns (401, current-user
	// failure, logout).
	MetricSessionInvalidated
	// MetricNavigateAllow counts navigation attempts that rendered a view.
	MetricNavigateAllow
	// MetricNavigateLoginRedirect counts redirects to the login screen.
	MetricNavigateLoginRedirect
	// MetricNavigateForbidden counts redirects to the forbidden screen.
	MetricNavigateForbidden
	// MetricNotificationEmitted counts notifications handed to the
	// dispatcher.
	MetricNotificationEmitted

	metricIDCount
)

// Metrics holds atomic counters for the client's observable events. A nil
// or disabled Metrics is a no-op on every method.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a [Metrics] instance. When enabled is false all
// operations are no-ops and snapshots are empty.
func NewMetrics(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Inc adds one to the identified counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the identified counter's current value.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot deep-copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: map[MetricID]uint64{}}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
