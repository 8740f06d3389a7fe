// Package engine consolidates heterogeneous cost findings into a
// single prioritized, ranked recommendation list with summary
// statistics.
package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cloudcost/core/catalog"
	"cloudcost/core/rightsizing"
	"cloudcost/core/types"
	"cloudcost/internal/logging"
)

// Shared priority thresholds (monthly savings in USD)
var (
	criticalSavings = decimal.NewFromInt(500)
	highSavings     = decimal.NewFromInt(100)
	mediumSavings   = decimal.NewFromInt(20)
	idleHighCutoff  = decimal.NewFromInt(100)
	unusedMedCutoff = decimal.NewFromInt(50)
)

// Engine accumulates recommendations across producer calls for one
// analysis run. It is a single-writer accumulator: serialize Add calls
// or shard per goroutine and merge. Call Clear between independent
// runs sharing one engine.
type Engine struct {
	costs *catalog.CostTable
	recs  []*types.Recommendation
	log   *zap.SugaredLogger
}

// New creates an engine backed by the given cost table. A nil table
// falls back to the compiled-in defaults.
func New(costs *catalog.CostTable) *Engine {
	if costs == nil {
		costs = catalog.DefaultCostTable()
	}
	return &Engine{
		costs: costs,
		log:   logging.Named("engine").Sugar(),
	}
}

func (e *Engine) add(rec *types.Recommendation) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	e.recs = append(e.recs, rec)
}

// AddIdleInstances folds idle instance findings into the engine.
// Monthly cost comes from the static cost table; HIGH priority above
// $100/month, MEDIUM otherwise.
func (e *Engine) AddIdleInstances(instances []types.Instance) {
	for _, inst := range instances {
		savings := e.costs.InstanceCost(inst.MachineType)

		priority := types.PriorityMedium
		if savings.GreaterThan(idleHighCutoff) {
			priority = types.PriorityHigh
		}

		status := string(inst.Status)
		if status == "" {
			status = "UNKNOWN"
		}

		e.add(&types.Recommendation{
			Kind:                    types.KindIdleInstance,
			ResourceType:            "compute_instance",
			ResourceName:            inst.Name,
			ResourceID:              inst.ID,
			Status:                  status,
			Reason:                  fmt.Sprintf("Instance is %s - consider deletion", lowerStatus(inst.Status)),
			Action:                  "Delete instance if no longer needed",
			EstimatedMonthlySavings: savings,
			Priority:                priority,
			Confidence:              types.ConfidenceHigh,
			Risk:                    types.RiskLow,
			Effort:                  types.EffortEasy,
			Automatable:             true,
		})
	}
}

// AddRightsizing folds rightsizing findings into the engine, inheriting
// their savings or increase figures. Priority follows the shared
// savings/confidence rule; downsizing carries medium risk.
func (e *Engine) AddRightsizing(recs []rightsizing.Recommendation) {
	for _, r := range recs {
		risk := types.RiskLow
		if r.Direction == rightsizing.DirectionDownsize {
			risk = types.RiskMedium
		}

		m := r.Utilization
		e.add(&types.Recommendation{
			Kind:                     types.KindRightsizing,
			ResourceType:             "compute_instance",
			ResourceName:             r.InstanceName,
			ResourceID:               r.InstanceID,
			CurrentType:              r.CurrentType,
			RecommendedType:          r.RecommendedType,
			Reason:                   r.Reason,
			Action:                   fmt.Sprintf("Change instance type from %s to %s", r.CurrentType, r.RecommendedType),
			EstimatedMonthlySavings:  r.EstimatedMonthlySavings,
			EstimatedMonthlyIncrease: r.EstimatedMonthlyIncrease,
			Priority:                 savingsPriority(r.EstimatedMonthlySavings, r.Confidence),
			Confidence:               r.Confidence,
			Risk:                     risk,
			Effort:                   types.EffortModerate,
			Automatable:              true,
			Utilization:              &m,
		})
	}
}

// AddUnusedResources folds unused resource findings into the engine.
// Monthly cost is estimated from the resource type and size; MEDIUM
// priority above $50/month, LOW otherwise.
func (e *Engine) AddUnusedResources(resources []types.ResourceRecord) {
	for _, res := range resources {
		savings := e.costs.ResourceCost(res.AssetType, res.SizeGB)

		priority := types.PriorityLow
		if savings.GreaterThan(unusedMedCutoff) {
			priority = types.PriorityMedium
		}

		// Deleting a snapshot is cheap to undo relative to a live disk.
		risk := types.RiskMedium
		if containsFold(res.AssetType, "snapshot") {
			risk = types.RiskLow
		}

		e.add(&types.Recommendation{
			Kind:                    types.KindUnusedResource,
			ResourceType:            res.AssetType,
			ResourceName:            res.Name,
			Reason:                  fmt.Sprintf("Unused %s detected", res.AssetType),
			Action:                  fmt.Sprintf("Delete unused %s", res.AssetType),
			EstimatedMonthlySavings: savings,
			Priority:                priority,
			Confidence:              types.ConfidenceHigh,
			Risk:                    risk,
			Effort:                  types.EffortEasy,
			Automatable:             true,
		})
	}
}

// AddCostAnomalies folds anomaly findings into the engine. Anomalies
// carry no savings estimate; their impact is investigative. CRITICAL
// for high severity, HIGH otherwise.
func (e *Engine) AddCostAnomalies(anomalies []types.Anomaly) {
	for _, a := range anomalies {
		priority := types.PriorityHigh
		if a.Severity == types.SeverityHigh {
			priority = types.PriorityCritical
		}

		e.add(&types.Recommendation{
			Kind:         types.KindCostAnomaly,
			ResourceType: "billing",
			Date:         a.Date,
			Reason:       fmt.Sprintf("Cost spike detected on %s", a.Date),
			Action:       fmt.Sprintf("Investigate %.1f%% cost increase", a.DeviationPct),
			AnomalyDetails: &types.AnomalyDetails{
				ActualCost:   a.Cost,
				ExpectedCost: a.AverageCost,
				DeviationPct: a.DeviationPct,
			},
			Priority:    priority,
			Confidence:  types.ConfidenceMedium,
			Risk:        types.RiskNone,
			Effort:      types.EffortInvestigation,
			Automatable: false,
		})
	}
}

// Prioritized filters out recommendations saving less than minSavings
// per month, sorts by priority ordinal ascending then savings
// descending (stable beyond that), truncates to maxCount when positive,
// and finalizes the survivors in place with a 1-based rank and a
// priority label. Repeated calls with identical arguments and no
// intervening adds return identical rankings.
func (e *Engine) Prioritized(maxCount int, minSavings decimal.Decimal) []*types.Recommendation {
	filtered := lo.Filter(e.recs, func(r *types.Recommendation, _ int) bool {
		return r.EstimatedMonthlySavings.GreaterThanOrEqual(minSavings)
	})

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Priority != filtered[j].Priority {
			return filtered[i].Priority < filtered[j].Priority
		}
		return filtered[i].EstimatedMonthlySavings.GreaterThan(filtered[j].EstimatedMonthlySavings)
	})

	if maxCount > 0 && len(filtered) > maxCount {
		filtered = filtered[:maxCount]
	}

	for i, rec := range filtered {
		rec.Rank = i + 1
		rec.PriorityLabel = rec.Priority.String()
	}

	return filtered
}

// KindSummary aggregates one recommendation kind
type KindSummary struct {
	// Count is the number of recommendations of this kind
	Count int `json:"count"`

	// TotalSavings is the kind's summed monthly savings
	TotalSavings decimal.Decimal `json:"total_savings"`

	// TotalIncrease is the kind's summed monthly increases
	TotalIncrease decimal.Decimal `json:"total_increase"`
}

// Summary aggregates the engine's full recommendation set
type Summary struct {
	// TotalRecommendations is the accumulated count
	TotalRecommendations int `json:"total_recommendations"`

	// TotalMonthlySavings sums all savings estimates
	TotalMonthlySavings decimal.Decimal `json:"total_monthly_savings"`

	// TotalAnnualSavings is monthly savings x 12
	TotalAnnualSavings decimal.Decimal `json:"total_annual_savings"`

	// TotalMonthlyIncreases sums all increase estimates
	TotalMonthlyIncreases decimal.Decimal `json:"total_monthly_increases"`

	// NetMonthlyImpact is savings minus increases
	NetMonthlyImpact decimal.Decimal `json:"net_monthly_impact"`

	// NetAnnualImpact is the net impact x 12
	NetAnnualImpact decimal.Decimal `json:"net_annual_impact"`

	// ByKind groups counts and sums per recommendation kind
	ByKind map[types.Kind]KindSummary `json:"recommendations_by_type"`

	// ByPriority counts recommendations per priority label; only
	// priorities with at least one member appear
	ByPriority map[string]int `json:"recommendations_by_priority"`

	// Automatable counts recommendations that can be automated
	Automatable int `json:"automatable_recommendations"`

	// AutomationPct is the automatable share; 0 when the list is empty
	AutomationPct float64 `json:"automation_percentage"`

	// GeneratedAt is when the summary was produced
	GeneratedAt time.Time `json:"generated_at"`
}

// Summarize aggregates totals, per-kind and per-priority counts, and
// the automatable share over everything accumulated so far.
func (e *Engine) Summarize() Summary {
	totalSavings := decimal.Zero
	totalIncreases := decimal.Zero
	byKind := make(map[types.Kind]KindSummary)

	for _, rec := range e.recs {
		totalSavings = totalSavings.Add(rec.EstimatedMonthlySavings)
		totalIncreases = totalIncreases.Add(rec.EstimatedMonthlyIncrease)

		ks := byKind[rec.Kind]
		ks.Count++
		ks.TotalSavings = ks.TotalSavings.Add(rec.EstimatedMonthlySavings)
		ks.TotalIncrease = ks.TotalIncrease.Add(rec.EstimatedMonthlyIncrease)
		byKind[rec.Kind] = ks
	}

	byPriority := make(map[string]int)
	for _, p := range types.Priorities {
		count := lo.CountBy(e.recs, func(r *types.Recommendation) bool {
			return r.Priority == p
		})
		if count > 0 {
			byPriority[p.String()] = count
		}
	}

	automatable := lo.CountBy(e.recs, func(r *types.Recommendation) bool {
		return r.Automatable
	})

	automationPct := 0.0
	if len(e.recs) > 0 {
		pct := decimal.NewFromInt(int64(automatable)).
			Div(decimal.NewFromInt(int64(len(e.recs)))).
			Mul(decimal.NewFromInt(100)).
			Round(1)
		automationPct, _ = pct.Float64()
	}

	net := totalSavings.Sub(totalIncreases)
	twelve := decimal.NewFromInt(12)

	return Summary{
		TotalRecommendations:  len(e.recs),
		TotalMonthlySavings:   totalSavings.Round(2),
		TotalAnnualSavings:    totalSavings.Mul(twelve).Round(2),
		TotalMonthlyIncreases: totalIncreases.Round(2),
		NetMonthlyImpact:      net.Round(2),
		NetAnnualImpact:       net.Mul(twelve).Round(2),
		ByKind:                byKind,
		ByPriority:            byPriority,
		Automatable:           automatable,
		AutomationPct:         automationPct,
		GeneratedAt:           time.Now(),
	}
}

// Len returns the accumulated recommendation count
func (e *Engine) Len() int {
	return len(e.recs)
}

// Clear resets the accumulator. Must be called between independent
// runs sharing one engine instance; there is no implicit reset.
func (e *Engine) Clear() {
	e.recs = nil
	e.log.Info("cleared all recommendations")
}

func lowerStatus(s types.InstanceStatus) string {
	if s == "" {
		return "idle"
	}
	return strings.ToLower(string(s))
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// savingsPriority applies the shared savings/confidence rule.
func savingsPriority(savings decimal.Decimal, confidence types.Confidence) types.Priority {
	switch {
	case savings.GreaterThan(criticalSavings) &&
		(confidence == types.ConfidenceHigh || confidence == types.ConfidenceMedium):
		return types.PriorityCritical
	case savings.GreaterThan(highSavings):
		return types.PriorityHigh
	case savings.GreaterThan(mediumSavings):
		return types.PriorityMedium
	}
	return types.PriorityLow
}
