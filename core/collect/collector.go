// Package collect provides data-source collectors that feed the
// analysis pipeline with normalized billing, resource, and instance
// records. Collectors are simple I/O wrappers; all decision logic
// lives in the analyzers.
package collect

import (
	"context"
	"time"

	"github.com/samber/lo"

	"cloudcost/core/types"
)

// Collector is a normalized data source for one cloud project.
type Collector interface {
	// BillingRecords returns billing line items for the window
	BillingRecords(ctx context.Context, start, end time.Time) ([]types.BillingRecord, error)

	// Resources returns the project's asset inventory
	Resources(ctx context.Context) ([]types.ResourceRecord, error)

	// Instances returns the project's compute instances
	Instances(ctx context.Context) ([]types.Instance, error)
}

// IdleInstances filters instances down to deletion candidates
// (stopped, suspended, or terminated).
func IdleInstances(instances []types.Instance) []types.Instance {
	return lo.Filter(instances, func(i types.Instance, _ int) bool {
		return i.Status.IsIdle()
	})
}
