// Package analysis provides cost trend, anomaly, forecast, and
// efficiency analysis over normalized billing and resource records.
//
// Every function is side-effect-free and total: missing input yields an
// explicit no-data status and internal faults surface as an error
// status on the result, never as a panic or returned error that could
// abort the surrounding pipeline.
package analysis

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"cloudcost/core/types"
	"cloudcost/internal/logging"
)

// Status reports the outcome of an analysis function
type Status string

const (
	StatusSuccess          Status = "success"
	StatusNoData           Status = "no_data"
	StatusInsufficientData Status = "insufficient_data"
	StatusError            Status = "error"
)

// BreakdownEntry is one group's share of total cost
type BreakdownEntry struct {
	// Name is the group name on the chosen dimension
	Name string `json:"name"`

	// Cost is the group's summed cost
	Cost decimal.Decimal `json:"cost"`

	// Percentage is the group's share of total cost
	Percentage float64 `json:"percentage"`
}

// TrendAnalysis is the result of AnalyzeCostTrends
type TrendAnalysis struct {
	Status Status `json:"status"`

	// Message explains a non-success status
	Message string `json:"message,omitempty"`

	// TotalCost is the summed cost across all records
	TotalCost decimal.Decimal `json:"total_cost"`

	// Breakdown is sorted by cost descending
	Breakdown []BreakdownEntry `json:"breakdown,omitempty"`

	// TopCostDriver is the name of the largest group, empty when none
	TopCostDriver string `json:"top_cost_driver,omitempty"`

	// AnalyzedAt is when the analysis ran
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// AnalyzeCostTrends groups billing records on the chosen dimension,
// sums cost per group, and computes each group's percentage of total.
func AnalyzeCostTrends(records []types.BillingRecord, groupBy types.GroupBy) TrendAnalysis {
	now := time.Now()
	if len(records) == 0 {
		return TrendAnalysis{
			Status:     StatusNoData,
			Message:    "no billing data available for analysis",
			AnalyzedAt: now,
		}
	}

	grouped := make(map[string]decimal.Decimal)
	var order []string
	total := decimal.Zero

	for _, r := range records {
		name := r.GroupName(groupBy)
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = grouped[name].Add(r.Cost)
		total = total.Add(r.Cost)
	}

	// Stable sort over insertion order keeps equal-cost groups deterministic.
	sort.SliceStable(order, func(i, j int) bool {
		return grouped[order[i]].GreaterThan(grouped[order[j]])
	})

	breakdown := lo.Map(order, func(name string, _ int) BreakdownEntry {
		cost := grouped[name]
		pct := 0.0
		if total.IsPositive() {
			pct, _ = cost.Div(total).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		}
		return BreakdownEntry{
			Name:       name,
			Cost:       cost.Round(2),
			Percentage: pct,
		}
	})

	top := ""
	if len(breakdown) > 0 {
		top = breakdown[0].Name
	}

	return TrendAnalysis{
		Status:        StatusSuccess,
		TotalCost:     total.Round(2),
		Breakdown:     breakdown,
		TopCostDriver: top,
		AnalyzedAt:    now,
	}
}

// Trend labels the direction of a period comparison
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
)

// PeriodComparison is the result of ComparePeriods
type PeriodComparison struct {
	Status Status `json:"status"`

	// CurrentPeriodCost is the current period total
	CurrentPeriodCost decimal.Decimal `json:"current_period_cost"`

	// PreviousPeriodCost is the previous period total
	PreviousPeriodCost decimal.Decimal `json:"previous_period_cost"`

	// AbsoluteChange is current minus previous
	AbsoluteChange decimal.Decimal `json:"absolute_change"`

	// PercentageChange is the relative change; 100 when the previous
	// total is zero and the current is positive, 0 when both are zero
	PercentageChange float64 `json:"percentage_change"`

	// Trend is "increasing" iff current is strictly greater than
	// previous; equal totals are labeled "decreasing"
	Trend Trend `json:"trend"`

	// AnalyzedAt is when the analysis ran
	AnalyzedAt time.Time `json:"analyzed_at"`
}

func sumCosts(records []types.BillingRecord) decimal.Decimal {
	return lo.Reduce(records, func(acc decimal.Decimal, r types.BillingRecord, _ int) decimal.Decimal {
		return acc.Add(r.Cost)
	}, decimal.Zero)
}

// ComparePeriods compares total cost between two record sets.
func ComparePeriods(current, previous []types.BillingRecord) PeriodComparison {
	currentTotal := sumCosts(current)
	previousTotal := sumCosts(previous)

	var pctChange float64
	if previousTotal.IsZero() {
		// Division-by-zero convention: a jump from nothing counts as 100%.
		if currentTotal.IsPositive() {
			pctChange = 100.0
		}
	} else {
		pctChange, _ = currentTotal.Sub(previousTotal).
			Div(previousTotal).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			Float64()
	}

	trend := TrendDecreasing
	if currentTotal.GreaterThan(previousTotal) {
		trend = TrendIncreasing
	}

	return PeriodComparison{
		Status:             StatusSuccess,
		CurrentPeriodCost:  currentTotal.Round(2),
		PreviousPeriodCost: previousTotal.Round(2),
		AbsoluteChange:     currentTotal.Sub(previousTotal).Round(2),
		PercentageChange:   pctChange,
		Trend:              trend,
		AnalyzedAt:         time.Now(),
	}
}

// DefaultAnomalyThresholdPct is the default deviation threshold
const DefaultAnomalyThresholdPct = 20.0

// IdentifyAnomalies buckets cost by calendar date and flags days whose
// deviation from the mean exceeds thresholdPct. At least two distinct
// dates are required; otherwise the result is empty. Buckets are
// visited in first-appearance order, so output order is deterministic
// for a given record order.
func IdentifyAnomalies(records []types.BillingRecord, thresholdPct float64) []types.Anomaly {
	daily := make(map[string]decimal.Decimal)
	var order []string

	for _, r := range records {
		day, ok := r.Day()
		if !ok {
			continue
		}
		if _, seen := daily[day]; !seen {
			order = append(order, day)
		}
		daily[day] = daily[day].Add(r.Cost)
	}

	if len(daily) < 2 {
		return nil
	}

	total := decimal.Zero
	for _, cost := range daily {
		total = total.Add(cost)
	}
	avg := total.Div(decimal.NewFromInt(int64(len(daily))))

	var anomalies []types.Anomaly
	for _, day := range order {
		cost := daily[day]

		var deviation float64
		if avg.IsPositive() {
			deviation, _ = cost.Sub(avg).Div(avg).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		}

		abs := deviation
		if abs < 0 {
			abs = -abs
		}
		if abs <= thresholdPct {
			continue
		}

		severity := types.SeverityMedium
		if abs > 50 {
			severity = types.SeverityHigh
		}

		anomalies = append(anomalies, types.Anomaly{
			Date:         day,
			Cost:         cost.Round(2),
			AverageCost:  avg.Round(2),
			DeviationPct: deviation,
			Severity:     severity,
		})
	}

	logging.Sugar.Infof("identified %d cost anomalies", len(anomalies))
	return anomalies
}

// DefaultForecastDays is the default forecast horizon
const DefaultForecastDays = 30

// BudgetForecast is the result of GenerateBudgetForecast
type BudgetForecast struct {
	Status Status `json:"status"`

	// Message explains a non-success status
	Message string `json:"message,omitempty"`

	// DailyAverage is total historical cost over distinct billed days
	DailyAverage decimal.Decimal `json:"historical_daily_average"`

	// ForecastDays is the projection horizon
	ForecastDays int `json:"forecast_period_days"`

	// ForecastedTotal is DailyAverage x ForecastDays
	ForecastedTotal decimal.Decimal `json:"forecasted_total"`

	// Confidence is always low: this is a naive linear projection,
	// not a statistical model
	Confidence types.Confidence `json:"confidence"`

	// Method names the projection method
	Method string `json:"method"`

	// GeneratedAt is when the forecast was produced
	GeneratedAt time.Time `json:"generated_at"`
}

// GenerateBudgetForecast projects spend forward from the historical
// daily average.
func GenerateBudgetForecast(history []types.BillingRecord, forecastDays int) BudgetForecast {
	now := time.Now()
	if len(history) == 0 {
		return BudgetForecast{
			Status:      StatusInsufficientData,
			Message:     "need historical data for forecasting",
			GeneratedAt: now,
		}
	}
	if forecastDays <= 0 {
		forecastDays = DefaultForecastDays
	}

	total := sumCosts(history)
	days := lo.Uniq(lo.FilterMap(history, func(r types.BillingRecord, _ int) (string, bool) {
		return r.Day()
	}))

	divisor := len(days)
	if divisor == 0 {
		divisor = 1
	}

	dailyAvg := total.Div(decimal.NewFromInt(int64(divisor)))

	return BudgetForecast{
		Status:          StatusSuccess,
		DailyAverage:    dailyAvg.Round(2),
		ForecastDays:    forecastDays,
		ForecastedTotal: dailyAvg.Mul(decimal.NewFromInt(int64(forecastDays))).Round(2),
		Confidence:      types.ConfidenceLow,
		Method:          "simple_moving_average",
		GeneratedAt:     now,
	}
}

// EfficiencyGrade is an A-F utilization grade
type EfficiencyGrade string

// ResourceEfficiency is the result of CalculateResourceEfficiency
type ResourceEfficiency struct {
	Status Status `json:"status"`

	// TotalResources is the inventory size
	TotalResources int `json:"total_resources"`

	// ActiveResources is total minus idle
	ActiveResources int `json:"active_resources"`

	// IdleResources is the idle count
	IdleResources int `json:"idle_resources"`

	// UtilizationRate is the active share in [0,100]
	UtilizationRate float64 `json:"utilization_rate"`

	// Grade is the A-F efficiency grade
	Grade EfficiencyGrade `json:"efficiency_grade"`

	// AnalyzedAt is when the analysis ran
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// CalculateResourceEfficiency computes the active share of the
// resource inventory and grades it.
func CalculateResourceEfficiency(resources []types.ResourceRecord, idle []types.Instance) ResourceEfficiency {
	total := len(resources)
	idleCount := len(idle)

	rate := 0.0
	if total > 0 {
		rate = float64(total-idleCount) / float64(total) * 100
		rate, _ = decimal.NewFromFloat(rate).Round(2).Float64()
	}

	return ResourceEfficiency{
		Status:          StatusSuccess,
		TotalResources:  total,
		ActiveResources: total - idleCount,
		IdleResources:   idleCount,
		UtilizationRate: rate,
		Grade:           gradeFor(rate),
		AnalyzedAt:      time.Now(),
	}
}

func gradeFor(utilizationRate float64) EfficiencyGrade {
	switch {
	case utilizationRate >= 90:
		return "A"
	case utilizationRate >= 80:
		return "B"
	case utilizationRate >= 70:
		return "C"
	case utilizationRate >= 60:
		return "D"
	}
	return "F"
}
