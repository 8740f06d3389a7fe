// Package catalog provides the machine type catalog and static cost
// reference data used by the analyzers.
package catalog

import (
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"cloudcost/internal/errors"
)

// MachineSpec describes one machine type.
type MachineSpec struct {
	// Name is the machine type identifier (e.g., "e2-standard-4")
	Name string `json:"name" yaml:"name"`

	// VCPUs is the vCPU count; fractional for shared-core types
	VCPUs float64 `json:"vcpus" yaml:"vcpus"`

	// MemoryGB is the memory capacity in GB
	MemoryGB float64 `json:"memory_gb" yaml:"memory_gb"`

	// CostPerHour is the on-demand hourly price
	CostPerHour decimal.Decimal `json:"cost_per_hour" yaml:"cost_per_hour"`
}

// MonthlyCost returns the on-demand monthly price at 24h x 30d
func (s MachineSpec) MonthlyCost() decimal.Decimal {
	return s.CostPerHour.Mul(decimal.NewFromInt(24 * 30))
}

// Catalog is an immutable set of machine specs with deterministic
// iteration in ascending identifier order.
type Catalog struct {
	byName map[string]MachineSpec
	sorted []MachineSpec
}

// New builds a catalog from specs. Entries with a non-positive
// capacity or price are rejected.
func New(specs []MachineSpec) (*Catalog, error) {
	byName := make(map[string]MachineSpec, len(specs))
	for _, s := range specs {
		if s.Name == "" {
			return nil, errors.New(errors.TypeCatalog, "machine spec missing name")
		}
		if s.VCPUs <= 0 || s.MemoryGB <= 0 || !s.CostPerHour.IsPositive() {
			return nil, errors.Newf(errors.TypeCatalog, "invalid machine spec: %s", s.Name)
		}
		byName[s.Name] = s
	}

	sorted := make([]MachineSpec, 0, len(byName))
	for _, s := range byName {
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	return &Catalog{byName: byName, sorted: sorted}, nil
}

// MustNew builds a catalog and panics on invalid reference data.
// Reserved for the compiled-in default set.
func MustNew(specs []MachineSpec) *Catalog {
	c, err := New(specs)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup resolves a machine type identifier, stripping any
// "/"-separated path prefix (full GCP machine type URLs).
func (c *Catalog) Lookup(machineType string) (MachineSpec, bool) {
	name := machineType
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	spec, ok := c.byName[name]
	return spec, ok
}

// Specs returns all specs in ascending identifier order.
// The returned slice must not be modified.
func (c *Catalog) Specs() []MachineSpec {
	return c.sorted
}

// Len returns the number of machine types
func (c *Catalog) Len() int {
	return len(c.sorted)
}

// LoadFile loads a catalog from a YAML file so reference data can be
// updated without a rebuild.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Catalog("failed to read machine type catalog", err)
	}

	var specs []MachineSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, errors.Catalog("failed to parse machine type catalog", err)
	}

	return New(specs)
}

func spec(name string, vcpus, memoryGB float64, costPerHour string) MachineSpec {
	return MachineSpec{
		Name:        name,
		VCPUs:       vcpus,
		MemoryGB:    memoryGB,
		CostPerHour: decimal.RequireFromString(costPerHour),
	}
}

// Default returns the compiled-in GCP machine type subset.
func Default() *Catalog {
	return MustNew([]MachineSpec{
		spec("e2-micro", 0.25, 1, "0.008"),
		spec("e2-small", 0.5, 2, "0.016"),
		spec("e2-medium", 1, 4, "0.033"),
		spec("e2-standard-2", 2, 8, "0.067"),
		spec("e2-standard-4", 4, 16, "0.134"),
		spec("e2-standard-8", 8, 32, "0.268"),
		spec("n2-standard-2", 2, 8, "0.097"),
		spec("n2-standard-4", 4, 16, "0.194"),
		spec("n2-standard-8", 8, 32, "0.388"),
		spec("n2-highmem-2", 2, 16, "0.131"),
		spec("n2-highmem-4", 4, 32, "0.262"),
		spec("n2-highcpu-2", 2, 2, "0.072"),
		spec("n2-highcpu-4", 4, 4, "0.144"),
	})
}
