// Package catalog - static monthly cost estimates
package catalog

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"cloudcost/internal/errors"
)

// CostTable holds static monthly cost estimates used when no billed
// figure is available. Reference data, read-only after construction.
type CostTable struct {
	// InstanceMonthly maps machine type to estimated monthly cost
	InstanceMonthly map[string]decimal.Decimal `yaml:"instance_monthly"`

	// DefaultInstanceMonthly covers machine types missing from the table
	DefaultInstanceMonthly decimal.Decimal `yaml:"default_instance_monthly"`

	// DiskGBMonthly is the per-GB monthly price for persistent disks
	DiskGBMonthly decimal.Decimal `yaml:"disk_gb_monthly"`

	// SnapshotGBMonthly is the per-GB monthly price for snapshots
	SnapshotGBMonthly decimal.Decimal `yaml:"snapshot_gb_monthly"`

	// StaticIPMonthly is the flat monthly price for a reserved address
	StaticIPMonthly decimal.Decimal `yaml:"static_ip_monthly"`

	// DefaultResourceMonthly covers resource types with no formula
	DefaultResourceMonthly decimal.Decimal `yaml:"default_resource_monthly"`

	// DefaultDiskSizeGB is assumed when a disk has no recorded size
	DefaultDiskSizeGB float64 `yaml:"default_disk_size_gb"`

	// DefaultSnapshotSizeGB is assumed when a snapshot has no recorded size
	DefaultSnapshotSizeGB float64 `yaml:"default_snapshot_size_gb"`
}

// InstanceCost returns the estimated monthly cost of a machine type,
// stripping any path prefix. Unknown types get the default estimate.
func (t *CostTable) InstanceCost(machineType string) decimal.Decimal {
	name := machineType
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if cost, ok := t.InstanceMonthly[name]; ok {
		return cost
	}
	return t.DefaultInstanceMonthly
}

// ResourceCost estimates the monthly cost of an unused resource from
// its asset type and size.
func (t *CostTable) ResourceCost(assetType string, sizeGB float64) decimal.Decimal {
	lower := strings.ToLower(assetType)
	switch {
	case strings.Contains(lower, "snapshot"):
		if sizeGB <= 0 {
			sizeGB = t.DefaultSnapshotSizeGB
		}
		return t.SnapshotGBMonthly.Mul(decimal.NewFromFloat(sizeGB))
	case strings.Contains(lower, "disk"):
		if sizeGB <= 0 {
			sizeGB = t.DefaultDiskSizeGB
		}
		return t.DiskGBMonthly.Mul(decimal.NewFromFloat(sizeGB))
	case strings.Contains(lower, "ip") || strings.Contains(lower, "address"):
		return t.StaticIPMonthly
	}
	return t.DefaultResourceMonthly
}

// LoadCostTable loads a cost table from a YAML file
func LoadCostTable(path string) (*CostTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Catalog("failed to read cost table", err)
	}

	table := DefaultCostTable()
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, errors.Catalog("failed to parse cost table", err)
	}

	return table, nil
}

func monthly(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// DefaultCostTable returns the compiled-in cost estimates.
func DefaultCostTable() *CostTable {
	return &CostTable{
		InstanceMonthly: map[string]decimal.Decimal{
			"e2-micro":      monthly("5.76"),
			"e2-small":      monthly("11.52"),
			"e2-medium":     monthly("23.76"),
			"e2-standard-2": monthly("48.24"),
			"e2-standard-4": monthly("96.48"),
			"n2-standard-2": monthly("69.84"),
			"n2-standard-4": monthly("139.68"),
		},
		DefaultInstanceMonthly: monthly("50"),
		DiskGBMonthly:          monthly("0.04"),
		SnapshotGBMonthly:      monthly("0.026"),
		StaticIPMonthly:        monthly("7"),
		DefaultResourceMonthly: monthly("10"),
		DefaultDiskSizeGB:      100,
		DefaultSnapshotSizeGB:  50,
	}
}
