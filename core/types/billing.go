// Package types defines the data model shared across the analysis pipeline.
package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GroupBy selects the billing dimension used for cost grouping
type GroupBy string

const (
	GroupByService  GroupBy = "service"
	GroupByProject  GroupBy = "project"
	GroupByResource GroupBy = "resource"
)

// String returns the string representation
func (g GroupBy) String() string {
	return string(g)
}

// BillingRecord is a single normalized billing line item.
// Records are externally supplied and never mutated by the pipeline.
type BillingRecord struct {
	// ServiceName is the billed service (e.g., "Compute Engine")
	ServiceName string `json:"service_name,omitempty"`

	// ProjectName is the billed project
	ProjectName string `json:"project_name,omitempty"`

	// ResourceName is the billed resource
	ResourceName string `json:"resource_name,omitempty"`

	// Cost is the billed amount, non-negative
	Cost decimal.Decimal `json:"cost"`

	// UsageDate is when the cost was incurred
	UsageDate time.Time `json:"usage_date,omitempty"`

	// CollectedAt is when the record was collected; used as a
	// fallback date when UsageDate is unset
	CollectedAt time.Time `json:"collected_at,omitempty"`
}

// GroupName returns the record's name on the given dimension,
// or "Unknown" when the field is empty.
func (r BillingRecord) GroupName(dim GroupBy) string {
	var name string
	switch dim {
	case GroupByProject:
		name = r.ProjectName
	case GroupByResource:
		name = r.ResourceName
	default:
		name = r.ServiceName
	}
	if name == "" {
		return "Unknown"
	}
	return name
}

// Day returns the calendar date bucket for anomaly detection: the date
// portion of UsageDate, falling back to CollectedAt. The second return
// is false when neither timestamp is set.
func (r BillingRecord) Day() (string, bool) {
	switch {
	case !r.UsageDate.IsZero():
		return r.UsageDate.Format("2006-01-02"), true
	case !r.CollectedAt.IsZero():
		return r.CollectedAt.Format("2006-01-02"), true
	}
	return "", false
}

// ResourceRecord is a normalized asset inventory entry.
type ResourceRecord struct {
	// Name is the full resource name
	Name string `json:"name"`

	// AssetType is the asset type identifier
	// (e.g., "compute.googleapis.com/Disk")
	AssetType string `json:"asset_type"`

	// ProjectID is the owning project
	ProjectID string `json:"project_id"`

	// CollectedAt is the collection timestamp
	CollectedAt time.Time `json:"collected_at"`

	// SizeGB is the resource size where applicable (disks, snapshots)
	SizeGB float64 `json:"size_gb,omitempty"`

	// Data holds optional resource-specific payload
	Data map[string]interface{} `json:"data,omitempty"`
}

// InstanceStatus is the lifecycle state of a compute instance
type InstanceStatus string

const (
	StatusRunning    InstanceStatus = "RUNNING"
	StatusStopped    InstanceStatus = "STOPPED"
	StatusSuspended  InstanceStatus = "SUSPENDED"
	StatusTerminated InstanceStatus = "TERMINATED"
)

// IsIdle reports whether the status marks the instance as a deletion candidate
func (s InstanceStatus) IsIdle() bool {
	switch s {
	case StatusStopped, StatusSuspended, StatusTerminated:
		return true
	}
	return false
}

// Instance is a normalized compute instance record.
type Instance struct {
	// Name is the instance name
	Name string `json:"name"`

	// ID is the provider-assigned instance ID
	ID string `json:"id,omitempty"`

	// Zone is the deployment zone
	Zone string `json:"zone"`

	// Status is the instance lifecycle state
	Status InstanceStatus `json:"status"`

	// MachineType is the machine type identifier, possibly a full URL path
	MachineType string `json:"machine_type"`

	// CreatedAt is the instance creation timestamp
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// MachineTypeName returns the bare machine type identifier with any
// path prefix stripped.
func (i Instance) MachineTypeName() string {
	if idx := strings.LastIndex(i.MachineType, "/"); idx >= 0 {
		return i.MachineType[idx+1:]
	}
	return i.MachineType
}
