// Package collect - unused resource detection
package collect

import (
	"strings"

	"cloudcost/core/types"
)

// UnusedResources filters the inventory down to resources that accrue
// cost without serving anything: detached disks, reserved but unbound
// static addresses, and orphaned snapshots whose source disk is gone.
// Detection reads the optional resource payload; resources without a
// payload are never flagged.
func UnusedResources(resources []types.ResourceRecord) []types.ResourceRecord {
	var unused []types.ResourceRecord
	for _, r := range resources {
		if r.Data == nil {
			continue
		}
		if isUnused(r) {
			unused = append(unused, r)
		}
	}
	return unused
}

func isUnused(r types.ResourceRecord) bool {
	lower := strings.ToLower(r.AssetType)
	switch {
	case strings.Contains(lower, "disk"):
		users, ok := r.Data["users"].([]interface{})
		return !ok || len(users) == 0
	case strings.Contains(lower, "address"):
		status, _ := r.Data["status"].(string)
		return status == "RESERVED"
	case strings.Contains(lower, "snapshot"):
		_, hasSource := r.Data["sourceDisk"]
		orphaned, _ := r.Data["sourceDiskDeleted"].(bool)
		return !hasSource || orphaned
	}
	return false
}
