// Package collect - file-backed collector
package collect

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"cloudcost/core/types"
	"cloudcost/internal/errors"
)

// Snapshot is an exported project state: billing, inventory, and
// instances captured at one point in time. The file collector reads
// one; useful for offline analysis and fixtures.
type Snapshot struct {
	// ProjectID is the captured project
	ProjectID string `json:"project_id,omitempty"`

	// CapturedAt is when the snapshot was taken
	CapturedAt time.Time `json:"captured_at,omitempty"`

	// BillingRecords are the captured billing line items
	BillingRecords []types.BillingRecord `json:"billing_records"`

	// Resources is the captured asset inventory
	Resources []types.ResourceRecord `json:"resources"`

	// Instances are the captured compute instances
	Instances []types.Instance `json:"instances"`
}

// FileCollector serves records from a JSON snapshot file.
type FileCollector struct {
	path string

	once     sync.Once
	snapshot Snapshot
	loadErr  error
}

// NewFileCollector creates a collector over a snapshot file. The file
// is read lazily on first use.
func NewFileCollector(path string) *FileCollector {
	return &FileCollector{path: path}
}

func (c *FileCollector) load() error {
	c.once.Do(func() {
		data, err := os.ReadFile(c.path)
		if err != nil {
			c.loadErr = errors.Collect("failed to read snapshot file", err).
				WithContext("path", c.path)
			return
		}
		if err := json.Unmarshal(data, &c.snapshot); err != nil {
			c.loadErr = errors.Collect("failed to parse snapshot file", err).
				WithContext("path", c.path)
		}
	})
	return c.loadErr
}

// BillingRecords returns snapshot billing records whose date falls in
// [start, end]. Records with no date are included: a snapshot already
// represents a bounded window.
func (c *FileCollector) BillingRecords(ctx context.Context, start, end time.Time) ([]types.BillingRecord, error) {
	if err := c.load(); err != nil {
		return nil, err
	}

	var out []types.BillingRecord
	for _, r := range c.snapshot.BillingRecords {
		if !r.UsageDate.IsZero() && (r.UsageDate.Before(start) || r.UsageDate.After(end)) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Resources returns the snapshot's asset inventory
func (c *FileCollector) Resources(ctx context.Context) ([]types.ResourceRecord, error) {
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.snapshot.Resources, nil
}

// Instances returns the snapshot's compute instances
func (c *FileCollector) Instances(ctx context.Context) ([]types.Instance, error) {
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.snapshot.Instances, nil
}
