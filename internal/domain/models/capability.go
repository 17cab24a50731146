// internal/domain/models/capability.go
package models

import "strings"

// Capability gates a dashboard action or route.
type Capability string

const (
	// CapAll grants every capability.
	CapAll Capability = "*"

	CapPropertiesView     Capability = "properties.view"
	CapPropertiesManage   Capability = "properties.manage"
	CapRentalsManage      Capability = "rentals.manage"
	CapMaintenanceView    Capability = "maintenance.view"
	CapMaintenanceUpdate  Capability = "maintenance.update"
	CapMaintenanceApprove Capability = "maintenance.approve"
)

var knownCapabilities = map[Capability]struct{}{
	CapAll:                {},
	CapPropertiesView:     {},
	CapPropertiesManage:   {},
	CapRentalsManage:      {},
	CapMaintenanceView:    {},
	CapMaintenanceUpdate:  {},
	CapMaintenanceApprove: {},
}

// Valid reports whether c is one of the declared capabilities.
func (c Capability) Valid() bool {
	_, ok := knownCapabilities[c]
	return ok
}

// ParseCapabilities converts backend permission tags into capabilities.
// Tags that are not declared are returned in unknown and left out of caps.
// Duplicates are collapsed; order of first appearance is kept.
func ParseCapabilities(tags []string) (caps []Capability, unknown []string) {
	seen := make(map[Capability]struct{}, len(tags))
	for _, tag := range tags {
		c := Capability(strings.TrimSpace(tag))
		if !c.Valid() {
			unknown = append(unknown, tag)
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		caps = append(caps, c)
	}
	return caps, unknown
}
