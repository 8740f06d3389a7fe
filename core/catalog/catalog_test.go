// Package catalog - reference data tests
package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

// TestDefaultCatalogOrdering proves iteration order is ascending by
// identifier, which downstream tie-breaking depends on.
func TestDefaultCatalogOrdering(t *testing.T) {
	cat := Default()
	specs := cat.Specs()
	if len(specs) == 0 {
		t.Fatal("Default catalog is empty")
	}
	for i := 1; i < len(specs); i++ {
		if specs[i].Name <= specs[i-1].Name {
			t.Errorf("Specs out of order at %d: %s after %s", i, specs[i].Name, specs[i-1].Name)
		}
	}
}

// TestLookupStripsURLPrefix proves full machine type URLs resolve.
func TestLookupStripsURLPrefix(t *testing.T) {
	cat := Default()

	spec, ok := cat.Lookup("projects/demo/zones/us-central1-a/machineTypes/e2-standard-4")
	if !ok {
		t.Fatal("Expected URL-form lookup to succeed")
	}
	if spec.Name != "e2-standard-4" {
		t.Errorf("Name = %s, want e2-standard-4", spec.Name)
	}
	if spec.VCPUs != 4 || spec.MemoryGB != 16 {
		t.Errorf("Capacity = %g vCPU / %g GB, want 4/16", spec.VCPUs, spec.MemoryGB)
	}

	if _, ok := cat.Lookup("no-such-type"); ok {
		t.Error("Expected unknown type lookup to fail")
	}
}

// TestMonthlyCost pins the 24h x 30d convention.
func TestMonthlyCost(t *testing.T) {
	cat := Default()
	spec, _ := cat.Lookup("n2-standard-4")
	if !spec.MonthlyCost().Equal(decimal.RequireFromString("139.68")) {
		t.Errorf("MonthlyCost = %s, want 139.68", spec.MonthlyCost())
	}
}

// TestNewRejectsInvalidSpecs proves reference data is validated on load.
func TestNewRejectsInvalidSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec MachineSpec
	}{
		{"missing name", MachineSpec{VCPUs: 1, MemoryGB: 1, CostPerHour: decimal.NewFromInt(1)}},
		{"zero vcpus", MachineSpec{Name: "x", MemoryGB: 1, CostPerHour: decimal.NewFromInt(1)}},
		{"zero memory", MachineSpec{Name: "x", VCPUs: 1, CostPerHour: decimal.NewFromInt(1)}},
		{"zero price", MachineSpec{Name: "x", VCPUs: 1, MemoryGB: 1}},
	}
	for _, tc := range cases {
		if _, err := New([]MachineSpec{tc.spec}); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

// TestLoadFile proves the YAML catalog override round-trips.
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machines.yaml")
	content := `
- name: test-small
  vcpus: 2
  memory_gb: 4
  cost_per_hour: "0.05"
- name: test-large
  vcpus: 8
  memory_gb: 32
  cost_per_hour: "0.40"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("Len = %d, want 2", cat.Len())
	}
	spec, ok := cat.Lookup("test-large")
	if !ok {
		t.Fatal("Expected test-large in loaded catalog")
	}
	if !spec.CostPerHour.Equal(decimal.RequireFromString("0.40")) {
		t.Errorf("CostPerHour = %s, want 0.40", spec.CostPerHour)
	}
}

// TestInstanceCostFallback proves unknown machine types get the default
// estimate rather than zero.
func TestInstanceCostFallback(t *testing.T) {
	table := DefaultCostTable()

	if got := table.InstanceCost("e2-micro"); !got.Equal(decimal.RequireFromString("5.76")) {
		t.Errorf("e2-micro = %s, want 5.76", got)
	}
	if got := table.InstanceCost("custom-96-624"); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("unknown type = %s, want default 50", got)
	}
	if got := table.InstanceCost("zones/z/machineTypes/n2-standard-4"); !got.Equal(decimal.RequireFromString("139.68")) {
		t.Errorf("URL form = %s, want 139.68", got)
	}
}

// TestResourceCost pins the per-type estimation formulas and their
// default sizes.
func TestResourceCost(t *testing.T) {
	table := DefaultCostTable()

	cases := []struct {
		assetType string
		sizeGB    float64
		want      string
	}{
		{"compute.googleapis.com/Disk", 500, "20"},
		{"compute.googleapis.com/Disk", 0, "4"},       // default 100 GB
		{"compute.googleapis.com/Snapshot", 100, "2.6"},
		{"compute.googleapis.com/Snapshot", 0, "1.3"}, // default 50 GB
		{"compute.googleapis.com/Address", 0, "7"},
		{"pubsub.googleapis.com/Topic", 0, "10"},
	}
	for _, tc := range cases {
		got := table.ResourceCost(tc.assetType, tc.sizeGB)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("ResourceCost(%s, %g) = %s, want %s", tc.assetType, tc.sizeGB, got, tc.want)
		}
	}
}
