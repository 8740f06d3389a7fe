// Package rightsizing - utilization metric sources
package rightsizing

import (
	"hash/fnv"
	"math/rand"

	"github.com/shopspring/decimal"

	"cloudcost/core/types"
)

// UtilizationSource supplies per-instance utilization metrics.
// Implementations back onto real telemetry or synthesize data.
type UtilizationSource interface {
	// MetricsFor returns utilization metrics for the named instance
	MetricsFor(instanceName string) types.UtilizationMetrics
}

// SimulatedSource generates synthetic utilization metrics. It is a
// deterministic pure function of the instance name: the name hash seeds
// a PRNG that picks one of four load patterns, so the same name yields
// the same metrics on every run. The data is non-authoritative; it
// stands in for a telemetry integration.
type SimulatedSource struct{}

// NewSimulatedSource creates a simulated metrics source
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{}
}

// simulatedSamples mimics 7 days of hourly data points
const simulatedSamples = 168

// MetricsFor synthesizes a utilization pattern from the instance name.
func (s *SimulatedSource) MetricsFor(instanceName string) types.UtilizationMetrics {
	h := fnv.New64a()
	h.Write([]byte(instanceName))
	rng := rand.New(rand.NewSource(int64(h.Sum64() % 10000)))

	uniform := func(lo, hi float64) float64 {
		return lo + rng.Float64()*(hi-lo)
	}

	var avgCPU, avgMem, peakCPU, peakMem float64
	switch rng.Intn(4) {
	case 0: // underutilized
		avgCPU = uniform(5, 15)
		avgMem = uniform(10, 25)
		peakCPU = avgCPU * uniform(1.5, 2.5)
		peakMem = avgMem * uniform(1.3, 2.0)
	case 1: // optimal
		avgCPU = uniform(40, 60)
		avgMem = uniform(45, 65)
		peakCPU = avgCPU * uniform(1.2, 1.4)
		peakMem = avgMem * uniform(1.2, 1.3)
	case 2: // constrained
		avgCPU = uniform(70, 85)
		avgMem = uniform(75, 88)
		peakCPU = min(avgCPU*uniform(1.1, 1.3), 95)
		peakMem = min(avgMem*uniform(1.1, 1.2), 98)
	default: // variable
		avgCPU = uniform(20, 70)
		avgMem = uniform(30, 60)
		peakCPU = avgCPU * uniform(1.5, 2.0)
		peakMem = avgMem * uniform(1.4, 1.8)
	}

	return types.UtilizationMetrics{
		AvgCPU:     round1(avgCPU),
		AvgMemory:  round1(avgMem),
		PeakCPU:    round1(min(peakCPU, 100)),
		PeakMemory: round1(min(peakMem, 100)),
		Samples:    simulatedSamples,
		Quality:    types.QualitySimulated,
	}
}

func round1(v float64) float64 {
	r, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return r
}
