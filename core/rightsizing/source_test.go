// Package rightsizing - simulated source tests
package rightsizing

import (
	"testing"

	"cloudcost/core/types"
)

// TestSimulatedMetricsDeterministic proves the same instance name always
// yields the same metrics, across source instances.
func TestSimulatedMetricsDeterministic(t *testing.T) {
	a := NewSimulatedSource()
	b := NewSimulatedSource()

	for _, name := range []string{"web-1", "db-prod-01", "batch-worker-7"} {
		first := a.MetricsFor(name)
		second := b.MetricsFor(name)
		if first != second {
			t.Errorf("Metrics for %s differ across runs: %+v vs %+v", name, first, second)
		}
	}
}

// TestSimulatedMetricsBounds proves every generated pattern stays inside
// valid percentage bounds across many names.
func TestSimulatedMetricsBounds(t *testing.T) {
	s := NewSimulatedSource()

	names := []string{
		"a", "b", "web-1", "web-2", "web-3", "api-server", "db-primary",
		"db-replica", "cache-01", "cache-02", "worker-1", "worker-2",
		"worker-3", "batch", "cron", "gateway", "proxy", "frontend",
		"backend", "staging-vm",
	}
	for _, name := range names {
		m := s.MetricsFor(name)
		if m.AvgCPU <= 0 || m.AvgCPU > 100 {
			t.Errorf("%s: avg CPU %.1f out of range", name, m.AvgCPU)
		}
		if m.PeakCPU > 100 || m.PeakMemory > 100 {
			t.Errorf("%s: peak exceeds 100%% (cpu %.1f, mem %.1f)", name, m.PeakCPU, m.PeakMemory)
		}
		if m.PeakCPU < m.AvgCPU || m.PeakMemory < m.AvgMemory {
			t.Errorf("%s: peak below average (cpu %.1f/%.1f, mem %.1f/%.1f)",
				name, m.PeakCPU, m.AvgCPU, m.PeakMemory, m.AvgMemory)
		}
		if m.Samples != simulatedSamples {
			t.Errorf("%s: samples = %d, want %d", name, m.Samples, simulatedSamples)
		}
		if m.Quality != types.QualitySimulated {
			t.Errorf("%s: quality = %s, want simulated", name, m.Quality)
		}
	}
}

// TestSimulatedMetricsVary proves distinct names do not all collapse to
// one pattern.
func TestSimulatedMetricsVary(t *testing.T) {
	s := NewSimulatedSource()

	seen := make(map[float64]bool)
	for _, name := range []string{"n1", "n2", "n3", "n4", "n5", "n6", "n7", "n8"} {
		seen[s.MetricsFor(name).AvgCPU] = true
	}
	if len(seen) < 2 {
		t.Error("Expected varied metrics across instance names")
	}
}
