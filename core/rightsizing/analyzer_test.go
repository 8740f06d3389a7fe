// Package rightsizing - sizing decision tests
package rightsizing

import (
	"testing"

	"github.com/shopspring/decimal"

	"cloudcost/core/catalog"
	"cloudcost/core/types"
)

func metrics(avgCPU, avgMem, peakCPU, peakMem float64) *types.UtilizationMetrics {
	return &types.UtilizationMetrics{
		AvgCPU:     avgCPU,
		AvgMemory:  avgMem,
		PeakCPU:    peakCPU,
		PeakMemory: peakMem,
		Samples:    168,
		Quality:    types.QualityMeasured,
	}
}

func instance(name, machineType string) types.Instance {
	return types.Instance{
		Name:        name,
		Zone:        "us-central1-a",
		Status:      types.StatusRunning,
		MachineType: machineType,
	}
}

// TestDownsizeUnderutilizedInstance proves an underutilized n2-standard-4
// is moved to the cheapest type covering buffered peak load.
func TestDownsizeUnderutilizedInstance(t *testing.T) {
	a := New(catalog.Default(), nil)

	rec := a.AnalyzeInstance(instance("web-1", "n2-standard-4"), metrics(10, 15, 25, 30))
	if rec == nil {
		t.Fatal("Expected a downsize recommendation, got nil")
	}
	if rec.Direction != DirectionDownsize {
		t.Fatalf("Direction = %s, want downsize", rec.Direction)
	}
	// Required capacity: 4*0.25*1.2 = 1.2 vCPUs, 16*0.30*1.2 = 5.76 GB.
	// Cheapest strictly-cheaper fit is e2-standard-2.
	if rec.RecommendedType != "e2-standard-2" {
		t.Errorf("RecommendedType = %s, want e2-standard-2", rec.RecommendedType)
	}
	if !rec.CurrentMonthlyCost.Equal(decimal.RequireFromString("139.68")) {
		t.Errorf("CurrentMonthlyCost = %s, want 139.68", rec.CurrentMonthlyCost)
	}
	if !rec.EstimatedMonthlySavings.Equal(decimal.RequireFromString("91.44")) {
		t.Errorf("EstimatedMonthlySavings = %s, want 91.44", rec.EstimatedMonthlySavings)
	}
	if rec.Confidence != types.ConfidenceLow {
		t.Errorf("Confidence = %s, want low for avg CPU of 10", rec.Confidence)
	}
}

// TestDownsizeConfidenceRisesBelowTenPercent proves very low average CPU
// upgrades confidence to medium.
func TestDownsizeConfidenceRisesBelowTenPercent(t *testing.T) {
	a := New(catalog.Default(), nil)

	rec := a.AnalyzeInstance(instance("web-1", "n2-standard-4"), metrics(5, 15, 25, 30))
	if rec == nil {
		t.Fatal("Expected a downsize recommendation, got nil")
	}
	if rec.Confidence != types.ConfidenceMedium {
		t.Errorf("Confidence = %s, want medium for avg CPU of 5", rec.Confidence)
	}
}

// TestUpsizeConstrainedInstance proves a peak CPU breach above 90% moves
// the instance to the cheapest strictly pricier type with 1.5x vCPUs.
func TestUpsizeConstrainedInstance(t *testing.T) {
	a := New(catalog.Default(), nil)

	rec := a.AnalyzeInstance(instance("db-1", "n2-standard-4"), metrics(10, 15, 95, 30))
	if rec == nil {
		t.Fatal("Expected an upsize recommendation, got nil")
	}
	if rec.Direction != DirectionUpsize {
		t.Fatalf("Direction = %s, want upsize", rec.Direction)
	}
	// Required capacity: 4*1.5 = 6 vCPUs, memory unchanged at 16 GB.
	// Cheapest strictly-pricier fit is e2-standard-8.
	if rec.RecommendedType != "e2-standard-8" {
		t.Errorf("RecommendedType = %s, want e2-standard-8", rec.RecommendedType)
	}
	if !rec.EstimatedMonthlyIncrease.Equal(decimal.RequireFromString("53.28")) {
		t.Errorf("EstimatedMonthlyIncrease = %s, want 53.28", rec.EstimatedMonthlyIncrease)
	}
	if rec.Confidence != types.ConfidenceMedium {
		t.Errorf("Confidence = %s, want medium", rec.Confidence)
	}
}

// TestUpsizeWinsOverDownsizeOnlyWhenDownsizeFails proves the trigger
// order: an instance that satisfies the downsize conditions is downsized
// even if a memory peak is high.
func TestDownsizeTriggerTakesPrecedence(t *testing.T) {
	a := New(catalog.Default(), nil)

	// avg CPU 10 < 20, avg mem 15 < 30, peak CPU 25 < 40: downsize fires
	// before the peak memory breach is considered.
	rec := a.AnalyzeInstance(instance("cache-1", "n2-standard-4"), metrics(10, 15, 25, 95))
	if rec == nil {
		t.Fatal("Expected a recommendation, got nil")
	}
	if rec.Direction != DirectionDownsize {
		t.Errorf("Direction = %s, want downsize", rec.Direction)
	}
}

// TestAdequatelySizedInstance proves an instance in the comfort band
// yields no recommendation.
func TestAdequatelySizedInstance(t *testing.T) {
	a := New(catalog.Default(), nil)

	if rec := a.AnalyzeInstance(instance("app-1", "e2-standard-4"), metrics(50, 55, 70, 65)); rec != nil {
		t.Errorf("Expected nil for adequately sized instance, got %s", rec.Direction)
	}
}

// TestUnknownMachineTypeSkipped proves unknown types never produce a
// recommendation.
func TestUnknownMachineTypeSkipped(t *testing.T) {
	a := New(catalog.Default(), nil)

	if rec := a.AnalyzeInstance(instance("odd-1", "custom-96-624"), metrics(5, 5, 10, 10)); rec != nil {
		t.Error("Expected nil for unknown machine type")
	}
}

// TestNoMetricsNoSource proves the analyzer declines rather than guesses
// when it has neither metrics nor a source.
func TestNoMetricsNoSource(t *testing.T) {
	a := New(catalog.Default(), nil)

	if rec := a.AnalyzeInstance(instance("web-1", "n2-standard-4"), nil); rec != nil {
		t.Error("Expected nil without metrics or a source")
	}
}

// TestMachineTypeURLStripped proves full machine type URLs resolve
// against the catalog.
func TestMachineTypeURLStripped(t *testing.T) {
	a := New(catalog.Default(), nil)

	url := "projects/demo/zones/us-central1-a/machineTypes/n2-standard-4"
	rec := a.AnalyzeInstance(instance("web-1", url), metrics(10, 15, 25, 30))
	if rec == nil {
		t.Fatal("Expected a recommendation for URL-form machine type")
	}
	if rec.CurrentType != "n2-standard-4" {
		t.Errorf("CurrentType = %s, want n2-standard-4", rec.CurrentType)
	}
}

// TestSmallestTypeHasNoDownsizeTarget proves the cheapest catalog entry
// cannot be downsized further.
func TestSmallestTypeHasNoDownsizeTarget(t *testing.T) {
	a := New(catalog.Default(), nil)

	if rec := a.AnalyzeInstance(instance("tiny-1", "e2-micro"), metrics(5, 10, 15, 15)); rec != nil {
		t.Errorf("Expected nil for e2-micro downsize, got %s", rec.RecommendedType)
	}
}

// TestAnalyzeInstancesIsolation proves one bad instance never suppresses
// recommendations for the rest.
func TestAnalyzeInstancesIsolation(t *testing.T) {
	a := New(catalog.Default(), NewSimulatedSource())

	instances := []types.Instance{
		instance("unknown-type", "custom-96-624"),
		instance("web-1", "n2-standard-4"),
	}
	// No panic and the unknown type is simply absent from the output.
	recs := a.AnalyzeInstances(instances)
	for _, r := range recs {
		if r.InstanceName == "unknown-type" {
			t.Error("Unknown machine type should not yield a recommendation")
		}
	}
}
