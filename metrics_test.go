package codereview

import (
	"sync"
	"testing"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(true)

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricNavigateForbidden)

	if got := m.Get(MetricLoginSuccess); got != 2 {
		t.Fatalf("login success counter = %d, want 2", got)
	}
	if got := m.Get(MetricNavigateForbidden); got != 1 {
		t.Fatalf("forbidden counter = %d, want 1", got)
	}
	if got := m.Get(MetricLoginFailure); got != 0 {
		t.Fatalf("untouched counter = %d, want 0", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 2 {
		t.Fatalf("snapshot login success = %d, want 2", snap.Counters[MetricLoginSuccess])
	}

	m.Inc(MetricLoginSuccess)
	if snap.Counters[MetricLoginSuccess] != 2 {
		t.Fatal("snapshot should not track later increments")
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(false)
	m.Inc(MetricLoginSuccess)
	if got := m.Get(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled metrics counted %d increments", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("disabled snapshot has %d entries", len(snap.Counters))
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricLoginSuccess)
	if got := nilMetrics.Get(MetricLoginSuccess); got != 0 {
		t.Fatalf("nil metrics counted %d increments", got)
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics(true)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricNavigateAllow)
			}
		}()
	}
	wg.Wait()

	if got := m.Get(MetricNavigateAllow); got != workers*perWorker {
		t.Fatalf("allow counter = %d, want %d", got, workers*perWorker)
	}
}
