// Package output provides output formatting for analysis results.
// This package produces human and machine-readable outputs.
package output

import (
	"encoding/json"
	"io"
	"time"

	"cloudcost/core/analysis"
	"cloudcost/core/engine"
	"cloudcost/core/rightsizing"
	"cloudcost/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable terminal report
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Report is the complete output of one analysis run. All fields are
// plain serializable records, safe to emit as JSON for piping.
type Report struct {
	// ProjectID is the analyzed project
	ProjectID string `json:"project_id,omitempty"`

	// Trends is the cost trend breakdown
	Trends analysis.TrendAnalysis `json:"cost_trends"`

	// Comparison contrasts the current and previous periods
	Comparison *analysis.PeriodComparison `json:"period_comparison,omitempty"`

	// Anomalies are the flagged cost spikes
	Anomalies []types.Anomaly `json:"anomalies,omitempty"`

	// Forecast is the budget projection
	Forecast analysis.BudgetForecast `json:"budget_forecast"`

	// Efficiency grades the resource inventory
	Efficiency analysis.ResourceEfficiency `json:"resource_efficiency"`

	// Rightsizing lists per-instance sizing findings
	Rightsizing []rightsizing.Recommendation `json:"rightsizing,omitempty"`

	// Recommendations is the final ranked action list
	Recommendations []*types.Recommendation `json:"recommendations"`

	// Summary aggregates the recommendation set
	Summary engine.Summary `json:"summary"`

	// Metadata contains execution context
	Metadata Metadata `json:"metadata"`
}

// Metadata contains execution context for a report
type Metadata struct {
	// GeneratedAt is when the report was produced
	GeneratedAt time.Time `json:"generated_at"`

	// Duration is the wall-clock analysis time
	Duration string `json:"duration"`

	// Version is the tool version
	Version string `json:"version"`
}

// RenderJSON writes the report as indented JSON
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
