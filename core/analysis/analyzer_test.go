// Package analysis - analysis function tests
package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cloudcost/core/types"
)

func billed(service string, cost string, day time.Time) types.BillingRecord {
	return types.BillingRecord{
		ServiceName: service,
		Cost:        decimal.RequireFromString(cost),
		UsageDate:   day,
	}
}

func day(offset int) time.Time {
	return time.Date(2026, 8, 1+offset, 0, 0, 0, 0, time.UTC)
}

// TestAnalyzeCostTrendsPercentagesSumToHundred proves group percentages
// partition the total.
func TestAnalyzeCostTrendsPercentagesSumToHundred(t *testing.T) {
	records := []types.BillingRecord{
		billed("Compute Engine", "53.17", day(0)),
		billed("Cloud Storage", "29.01", day(0)),
		billed("BigQuery", "17.82", day(1)),
		billed("Compute Engine", "11.50", day(1)),
	}

	result := AnalyzeCostTrends(records, types.GroupByService)
	if result.Status != StatusSuccess {
		t.Fatalf("Expected success, got %s", result.Status)
	}

	sum := 0.0
	for _, entry := range result.Breakdown {
		sum += entry.Percentage
	}
	if math.Abs(sum-100) > 0.1 {
		t.Errorf("Percentages sum to %.4f, want 100 +/- 0.1", sum)
	}
}

// TestAnalyzeCostTrendsOrdering proves the breakdown is sorted by cost
// descending and names the top cost driver.
func TestAnalyzeCostTrendsOrdering(t *testing.T) {
	records := []types.BillingRecord{
		billed("Cloud Storage", "10", day(0)),
		billed("Compute Engine", "80", day(0)),
		billed("BigQuery", "30", day(0)),
	}

	result := AnalyzeCostTrends(records, types.GroupByService)
	if result.TopCostDriver != "Compute Engine" {
		t.Errorf("Expected top cost driver Compute Engine, got %s", result.TopCostDriver)
	}
	for i := 1; i < len(result.Breakdown); i++ {
		if result.Breakdown[i].Cost.GreaterThan(result.Breakdown[i-1].Cost) {
			t.Errorf("Breakdown not sorted descending at index %d", i)
		}
	}
	if !result.TotalCost.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected total 120, got %s", result.TotalCost)
	}
}

// TestAnalyzeCostTrendsMissingNameGroupsAsUnknown proves records missing
// the grouping field land in the Unknown bucket instead of vanishing.
func TestAnalyzeCostTrendsMissingNameGroupsAsUnknown(t *testing.T) {
	records := []types.BillingRecord{
		{Cost: decimal.NewFromInt(42), UsageDate: day(0)},
		billed("Compute Engine", "10", day(0)),
	}

	result := AnalyzeCostTrends(records, types.GroupByService)
	found := false
	for _, entry := range result.Breakdown {
		if entry.Name == "Unknown" {
			found = true
			if !entry.Cost.Equal(decimal.NewFromInt(42)) {
				t.Errorf("Unknown bucket cost = %s, want 42", entry.Cost)
			}
		}
	}
	if !found {
		t.Error("Expected an Unknown bucket for the nameless record")
	}
}

// TestAnalyzeCostTrendsNoData proves empty input yields a no_data status.
func TestAnalyzeCostTrendsNoData(t *testing.T) {
	result := AnalyzeCostTrends(nil, types.GroupByService)
	if result.Status != StatusNoData {
		t.Errorf("Expected no_data, got %s", result.Status)
	}
	if len(result.Breakdown) != 0 {
		t.Errorf("Expected empty breakdown, got %d entries", len(result.Breakdown))
	}
}

// TestComparePeriodsBothEmpty proves the zero-over-zero convention.
func TestComparePeriodsBothEmpty(t *testing.T) {
	result := ComparePeriods(nil, nil)
	if result.PercentageChange != 0 {
		t.Errorf("Expected 0%% change, got %.2f", result.PercentageChange)
	}
	if result.Trend != TrendDecreasing {
		t.Errorf("Expected decreasing trend, got %s", result.Trend)
	}
}

// TestComparePeriodsFromZero proves a jump from nothing counts as 100%.
func TestComparePeriodsFromZero(t *testing.T) {
	current := []types.BillingRecord{billed("Compute Engine", "10", day(0))}
	result := ComparePeriods(current, nil)
	if result.PercentageChange != 100 {
		t.Errorf("Expected 100%% change, got %.2f", result.PercentageChange)
	}
	if result.Trend != TrendIncreasing {
		t.Errorf("Expected increasing trend, got %s", result.Trend)
	}
}

// TestComparePeriodsDecrease checks a plain decrease.
func TestComparePeriodsDecrease(t *testing.T) {
	current := []types.BillingRecord{billed("Compute Engine", "50", day(10))}
	previous := []types.BillingRecord{billed("Compute Engine", "100", day(0))}

	result := ComparePeriods(current, previous)
	if result.PercentageChange != -50 {
		t.Errorf("Expected -50%% change, got %.2f", result.PercentageChange)
	}
	if result.Trend != TrendDecreasing {
		t.Errorf("Expected decreasing trend, got %s", result.Trend)
	}
	if !result.AbsoluteChange.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("Expected absolute change -50, got %s", result.AbsoluteChange)
	}
}

// TestComparePeriodsEqualTotalsLabeledDecreasing pins the tie convention:
// equal totals are reported as decreasing, not as a separate flat label.
func TestComparePeriodsEqualTotalsLabeledDecreasing(t *testing.T) {
	current := []types.BillingRecord{billed("Compute Engine", "100", day(10))}
	previous := []types.BillingRecord{billed("Compute Engine", "100", day(0))}

	result := ComparePeriods(current, previous)
	if result.Trend != TrendDecreasing {
		t.Errorf("Expected decreasing trend for equal totals, got %s", result.Trend)
	}
	if result.PercentageChange != 0 {
		t.Errorf("Expected 0%% change, got %.2f", result.PercentageChange)
	}
}

// TestIdentifyAnomaliesSpikeDay proves a 4-day window with one spike day
// yields exactly one high-severity anomaly.
func TestIdentifyAnomaliesSpikeDay(t *testing.T) {
	records := []types.BillingRecord{
		billed("Compute Engine", "100", day(0)),
		billed("Compute Engine", "100", day(1)),
		billed("Compute Engine", "100", day(2)),
		billed("Compute Engine", "500", day(3)),
	}

	anomalies := IdentifyAnomalies(records, 20.0)

	high := 0
	for _, a := range anomalies {
		if a.Severity == types.SeverityHigh {
			high++
			if a.Date != "2026-08-04" {
				t.Errorf("High anomaly on %s, want 2026-08-04", a.Date)
			}
			if a.DeviationPct != 150 {
				t.Errorf("Deviation = %.2f, want 150", a.DeviationPct)
			}
			if !a.AverageCost.Equal(decimal.NewFromInt(200)) {
				t.Errorf("Average = %s, want 200", a.AverageCost)
			}
		}
	}
	if high != 1 {
		t.Errorf("Expected exactly one high-severity anomaly, got %d", high)
	}
}

// TestIdentifyAnomaliesNeedsTwoDates proves single-day input never flags.
func TestIdentifyAnomaliesNeedsTwoDates(t *testing.T) {
	records := []types.BillingRecord{
		billed("Compute Engine", "100", day(0)),
		billed("Cloud Storage", "9000", day(0)),
	}
	if anomalies := IdentifyAnomalies(records, 20.0); len(anomalies) != 0 {
		t.Errorf("Expected no anomalies with one distinct date, got %d", len(anomalies))
	}
}

// TestIdentifyAnomaliesUndatedRecordsSkipped proves records without any
// timestamp never contribute to a daily bucket.
func TestIdentifyAnomaliesUndatedRecordsSkipped(t *testing.T) {
	records := []types.BillingRecord{
		{ServiceName: "Compute Engine", Cost: decimal.NewFromInt(100000)},
		billed("Compute Engine", "10", day(0)),
		billed("Compute Engine", "10", day(1)),
	}
	if anomalies := IdentifyAnomalies(records, 20.0); len(anomalies) != 0 {
		t.Errorf("Expected no anomalies, got %d", len(anomalies))
	}
}

// TestGenerateBudgetForecast checks the daily-average projection.
func TestGenerateBudgetForecast(t *testing.T) {
	records := []types.BillingRecord{
		billed("Compute Engine", "10", day(0)),
		billed("Cloud Storage", "20", day(1)),
	}

	forecast := GenerateBudgetForecast(records, 30)
	if forecast.Status != StatusSuccess {
		t.Fatalf("Expected success, got %s", forecast.Status)
	}
	if !forecast.DailyAverage.Equal(decimal.NewFromInt(15)) {
		t.Errorf("Daily average = %s, want 15", forecast.DailyAverage)
	}
	if !forecast.ForecastedTotal.Equal(decimal.NewFromInt(450)) {
		t.Errorf("Forecasted total = %s, want 450", forecast.ForecastedTotal)
	}
	if forecast.Confidence != types.ConfidenceLow {
		t.Errorf("Confidence = %s, want low", forecast.Confidence)
	}
	if forecast.Method != "simple_moving_average" {
		t.Errorf("Method = %s", forecast.Method)
	}
}

// TestGenerateBudgetForecastEmpty proves empty history yields
// insufficient_data rather than a zero forecast.
func TestGenerateBudgetForecastEmpty(t *testing.T) {
	forecast := GenerateBudgetForecast(nil, 30)
	if forecast.Status != StatusInsufficientData {
		t.Errorf("Expected insufficient_data, got %s", forecast.Status)
	}
}

// TestGenerateBudgetForecastUndatedHistory proves undated records still
// produce a forecast with a divisor of one day.
func TestGenerateBudgetForecastUndatedHistory(t *testing.T) {
	records := []types.BillingRecord{
		{ServiceName: "Compute Engine", Cost: decimal.NewFromInt(30)},
	}
	forecast := GenerateBudgetForecast(records, 10)
	if forecast.Status != StatusSuccess {
		t.Fatalf("Expected success, got %s", forecast.Status)
	}
	if !forecast.DailyAverage.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Daily average = %s, want 30", forecast.DailyAverage)
	}
	if !forecast.ForecastedTotal.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Forecasted total = %s, want 300", forecast.ForecastedTotal)
	}
}

// TestCalculateResourceEfficiency checks the grade boundaries.
func TestCalculateResourceEfficiency(t *testing.T) {
	resources := make([]types.ResourceRecord, 10)
	idle := []types.Instance{{Name: "stopped-vm", Status: types.StatusStopped}}

	result := CalculateResourceEfficiency(resources, idle)
	if result.UtilizationRate != 90.0 {
		t.Errorf("Utilization rate = %.2f, want 90.0", result.UtilizationRate)
	}
	if result.Grade != "A" {
		t.Errorf("Grade = %s, want A", result.Grade)
	}
	if result.ActiveResources != 9 {
		t.Errorf("Active = %d, want 9", result.ActiveResources)
	}
}

// TestGradeBoundaries pins the grade thresholds.
func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		rate  float64
		grade EfficiencyGrade
	}{
		{95, "A"}, {90, "A"}, {85, "B"}, {80, "B"},
		{75, "C"}, {70, "C"}, {65, "D"}, {60, "D"},
		{59.99, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		if got := gradeFor(tc.rate); got != tc.grade {
			t.Errorf("gradeFor(%.2f) = %s, want %s", tc.rate, got, tc.grade)
		}
	}
}

// TestCalculateResourceEfficiencyEmptyInventory proves an empty
// inventory yields a zero rate without a division fault.
func TestCalculateResourceEfficiencyEmptyInventory(t *testing.T) {
	result := CalculateResourceEfficiency(nil, nil)
	if result.UtilizationRate != 0 {
		t.Errorf("Utilization rate = %.2f, want 0", result.UtilizationRate)
	}
	if result.Grade != "F" {
		t.Errorf("Grade = %s, want F", result.Grade)
	}
}
