// Package cmd - analyze pipeline tests
package cmd

import (
	"context"
	"testing"
	"time"

	"cloudcost/core/types"
	"cloudcost/internal/errors"
	"cloudcost/internal/logging"
)

// faultyCollector fails selected scopes and serves the rest.
type faultyCollector struct {
	failBilling   bool
	failResources bool
	failInstances bool
}

func (c *faultyCollector) BillingRecords(ctx context.Context, start, end time.Time) ([]types.BillingRecord, error) {
	if c.failBilling {
		return nil, errors.New(errors.TypeCollect, "billing export unavailable")
	}
	return []types.BillingRecord{{ServiceName: "Compute Engine"}}, nil
}

func (c *faultyCollector) Resources(ctx context.Context) ([]types.ResourceRecord, error) {
	if c.failResources {
		return nil, errors.New(errors.TypeCollect, "asset API unavailable")
	}
	return []types.ResourceRecord{{Name: "disk-1"}}, nil
}

func (c *faultyCollector) Instances(ctx context.Context) ([]types.Instance, error) {
	if c.failInstances {
		return nil, errors.New(errors.TypeCollect, "compute API unavailable")
	}
	return []types.Instance{{Name: "web-1", Status: types.StatusRunning}}, nil
}

// TestCollectAllDegradesPerScope proves one failing scope empties only
// that scope; the others still feed the analysis.
func TestCollectAllDegradesPerScope(t *testing.T) {
	log := logging.Named("analyze.test").Sugar()
	now := time.Now()

	records, resources, instances := collectAll(
		context.Background(), &faultyCollector{failBilling: true}, now, now, log)
	if records != nil {
		t.Errorf("Expected empty billing records, got %d", len(records))
	}
	if len(resources) != 1 || len(instances) != 1 {
		t.Errorf("Healthy scopes affected: %d resources, %d instances", len(resources), len(instances))
	}

	records, resources, instances = collectAll(
		context.Background(), &faultyCollector{failResources: true, failInstances: true}, now, now, log)
	if len(records) != 1 {
		t.Errorf("Healthy billing scope affected: %d records", len(records))
	}
	if resources != nil || instances != nil {
		t.Errorf("Expected failed scopes empty, got %d resources, %d instances", len(resources), len(instances))
	}
}

// TestParseGroupBy proves dimension parsing and the domain error type
// for unknown dimensions.
func TestParseGroupBy(t *testing.T) {
	for _, valid := range []string{"service", "project", "resource"} {
		got, err := parseGroupBy(valid)
		if err != nil {
			t.Errorf("parseGroupBy(%s) failed: %v", valid, err)
		}
		if string(got) != valid {
			t.Errorf("parseGroupBy(%s) = %s", valid, got)
		}
	}

	_, err := parseGroupBy("zone")
	if err == nil {
		t.Fatal("Expected an error for unknown dimension")
	}
	if !errors.IsType(err, errors.TypeInput) {
		t.Errorf("Expected an input error, got %v", err)
	}
}
