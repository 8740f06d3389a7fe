// Package types - utilization metrics
package types

// DataQuality tags the provenance of utilization metrics
type DataQuality string

const (
	// QualityMeasured marks metrics backed by real telemetry
	QualityMeasured DataQuality = "measured"

	// QualitySimulated marks synthetically generated metrics
	QualitySimulated DataQuality = "simulated"
)

// UtilizationMetrics describes observed (or simulated) instance load.
// All values are percentages in [0,100]. Peak >= average is expected but
// not enforced; consumers must tolerate inversions.
type UtilizationMetrics struct {
	// AvgCPU is the average CPU utilization percentage
	AvgCPU float64 `json:"avg_cpu"`

	// AvgMemory is the average memory utilization percentage
	AvgMemory float64 `json:"avg_memory"`

	// PeakCPU is the peak CPU utilization percentage
	PeakCPU float64 `json:"peak_cpu"`

	// PeakMemory is the peak memory utilization percentage
	PeakMemory float64 `json:"peak_memory"`

	// Samples is the number of data points behind the aggregates
	Samples int `json:"samples"`

	// Quality tags whether the metrics were measured or simulated
	Quality DataQuality `json:"quality"`
}
