// Package rightsizing decides whether a compute instance should move to
// a cheaper or larger machine type based on observed utilization.
package rightsizing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cloudcost/core/catalog"
	"cloudcost/core/types"
	"cloudcost/internal/logging"
)

// Direction labels a rightsizing decision
type Direction string

const (
	DirectionDownsize Direction = "downsize"
	DirectionUpsize   Direction = "upsize"
)

// Downsize triggers: all three must hold
const (
	downsizeAvgCPUBelow  = 20.0
	downsizeAvgMemBelow  = 30.0
	downsizePeakCPUBelow = 40.0
)

// Upsize triggers: either breach fires
const upsizePeakAbove = 90.0

// peakBuffer scales peak load when searching for a smaller type
const peakBuffer = 1.2

// growthFactor scales required capacity on a breached dimension
const growthFactor = 1.5

// Recommendation is a single instance's rightsizing finding.
type Recommendation struct {
	// Direction is downsize or upsize
	Direction Direction `json:"recommendation_type"`

	// InstanceName identifies the instance
	InstanceName string `json:"instance_name"`

	// InstanceID is the provider-assigned ID
	InstanceID string `json:"instance_id,omitempty"`

	// Zone is the instance's zone
	Zone string `json:"zone"`

	// CurrentType is the instance's machine type
	CurrentType string `json:"current_type"`

	// RecommendedType is the suggested machine type
	RecommendedType string `json:"recommended_type"`

	// Reason is the human-readable finding
	Reason string `json:"reason"`

	// CurrentMonthlyCost is the current type's monthly price
	CurrentMonthlyCost decimal.Decimal `json:"current_monthly_cost"`

	// RecommendedMonthlyCost is the suggested type's monthly price
	RecommendedMonthlyCost decimal.Decimal `json:"recommended_monthly_cost"`

	// EstimatedMonthlySavings is set for downsize recommendations
	EstimatedMonthlySavings decimal.Decimal `json:"estimated_monthly_savings"`

	// EstimatedMonthlyIncrease is set for upsize recommendations
	EstimatedMonthlyIncrease decimal.Decimal `json:"estimated_monthly_increase"`

	// ChangePct is the savings or increase relative to current cost
	ChangePct float64 `json:"change_percentage"`

	// Confidence qualifies the estimate
	Confidence types.Confidence `json:"confidence"`

	// Utilization is the metrics behind the decision
	Utilization types.UtilizationMetrics `json:"utilization_metrics"`

	// DataSource tags the metric provenance
	DataSource types.DataQuality `json:"data_source"`

	// AnalyzedAt is when the instance was analyzed
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Analyzer evaluates instances against the machine type catalog.
type Analyzer struct {
	catalog *catalog.Catalog
	source  UtilizationSource
	log     *zap.SugaredLogger
}

// New creates an analyzer. source may be nil, in which case instances
// without supplied metrics yield no recommendation.
func New(cat *catalog.Catalog, source UtilizationSource) *Analyzer {
	return &Analyzer{
		catalog: cat,
		source:  source,
		log:     logging.Named("rightsizing").Sugar(),
	}
}

// AnalyzeInstance evaluates one instance. metrics may be nil; the
// analyzer then falls back to its utilization source. Returns nil when
// the machine type is unknown, no metrics are available, or the
// instance is adequately sized.
func (a *Analyzer) AnalyzeInstance(inst types.Instance, metrics *types.UtilizationMetrics) *Recommendation {
	currentType := inst.MachineTypeName()
	current, ok := a.catalog.Lookup(currentType)
	if !ok {
		a.log.Debugw("unknown machine type", "instance", inst.Name, "machine_type", currentType)
		return nil
	}

	if metrics == nil {
		if a.source == nil {
			return nil
		}
		m := a.source.MetricsFor(inst.Name)
		metrics = &m
	}

	rec := a.decide(current, *metrics)
	if rec == nil {
		return nil
	}

	rec.InstanceName = inst.Name
	rec.InstanceID = inst.ID
	rec.Zone = inst.Zone
	rec.CurrentType = current.Name
	rec.DataSource = metrics.Quality
	rec.AnalyzedAt = time.Now()
	return rec
}

// AnalyzeInstances evaluates each instance independently. A failure to
// produce a recommendation for one instance never affects the rest.
func (a *Analyzer) AnalyzeInstances(instances []types.Instance) []Recommendation {
	var recs []Recommendation
	for _, inst := range instances {
		if rec := a.AnalyzeInstance(inst, nil); rec != nil {
			recs = append(recs, *rec)
		}
	}
	a.log.Infow("rightsizing analysis complete",
		"instances", len(instances), "recommendations", len(recs))
	return recs
}

// decide applies the two mutually exclusive sizing triggers in order.
func (a *Analyzer) decide(current catalog.MachineSpec, m types.UtilizationMetrics) *Recommendation {
	switch {
	case m.AvgCPU < downsizeAvgCPUBelow && m.AvgMemory < downsizeAvgMemBelow && m.PeakCPU < downsizePeakCPUBelow:
		return a.downsize(current, m)
	case m.PeakCPU > upsizePeakAbove || m.PeakMemory > upsizePeakAbove:
		return a.upsize(current, m)
	}
	return nil
}

func (a *Analyzer) downsize(current catalog.MachineSpec, m types.UtilizationMetrics) *Recommendation {
	requiredVCPUs := current.VCPUs * m.PeakCPU / 100 * peakBuffer
	requiredMemory := current.MemoryGB * m.PeakMemory / 100 * peakBuffer

	candidate, ok := a.cheapestFit(requiredVCPUs, requiredMemory, func(s catalog.MachineSpec) bool {
		return s.CostPerHour.LessThan(current.CostPerHour)
	})
	if !ok {
		return nil
	}

	monthlyCurrent := current.MonthlyCost()
	monthlyNew := candidate.MonthlyCost()
	savings := monthlyCurrent.Sub(monthlyNew)

	confidence := types.ConfidenceLow
	if m.AvgCPU < 10 {
		confidence = types.ConfidenceMedium
	}

	return &Recommendation{
		Direction:       DirectionDownsize,
		RecommendedType: candidate.Name,
		Reason: fmt.Sprintf("Instance is underutilized (avg CPU: %.1f%%, avg memory: %.1f%%)",
			m.AvgCPU, m.AvgMemory),
		CurrentMonthlyCost:      monthlyCurrent.Round(2),
		RecommendedMonthlyCost:  monthlyNew.Round(2),
		EstimatedMonthlySavings: savings.Round(2),
		ChangePct:               changePct(savings, monthlyCurrent),
		Confidence:              confidence,
		Utilization:             m,
	}
}

func (a *Analyzer) upsize(current catalog.MachineSpec, m types.UtilizationMetrics) *Recommendation {
	requiredVCPUs := current.VCPUs
	if m.PeakCPU > upsizePeakAbove {
		requiredVCPUs *= growthFactor
	}
	requiredMemory := current.MemoryGB
	if m.PeakMemory > upsizePeakAbove {
		requiredMemory *= growthFactor
	}

	candidate, ok := a.cheapestFit(requiredVCPUs, requiredMemory, func(s catalog.MachineSpec) bool {
		return s.CostPerHour.GreaterThan(current.CostPerHour)
	})
	if !ok {
		return nil
	}

	monthlyCurrent := current.MonthlyCost()
	monthlyNew := candidate.MonthlyCost()
	increase := monthlyNew.Sub(monthlyCurrent)

	return &Recommendation{
		Direction:       DirectionUpsize,
		RecommendedType: candidate.Name,
		Reason: fmt.Sprintf("Instance is resource-constrained (peak CPU: %.1f%%, peak memory: %.1f%%)",
			m.PeakCPU, m.PeakMemory),
		CurrentMonthlyCost:       monthlyCurrent.Round(2),
		RecommendedMonthlyCost:   monthlyNew.Round(2),
		EstimatedMonthlyIncrease: increase.Round(2),
		ChangePct:                changePct(increase, monthlyCurrent),
		Confidence:               types.ConfidenceMedium,
		Utilization:              m,
	}
}

// cheapestFit scans the catalog in identifier order for the
// minimum-cost spec meeting both capacity constraints and the cost
// direction constraint. Identifier order makes equal-cost ties
// deterministic.
func (a *Analyzer) cheapestFit(requiredVCPUs, requiredMemory float64, costOK func(catalog.MachineSpec) bool) (catalog.MachineSpec, bool) {
	var best catalog.MachineSpec
	found := false
	for _, s := range a.catalog.Specs() {
		if s.VCPUs < requiredVCPUs || s.MemoryGB < requiredMemory || !costOK(s) {
			continue
		}
		if !found || s.CostPerHour.LessThan(best.CostPerHour) {
			best = s
			found = true
		}
	}
	return best, found
}

func changePct(delta, base decimal.Decimal) float64 {
	if !base.IsPositive() {
		return 0
	}
	pct, _ := delta.Div(base).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return pct
}
