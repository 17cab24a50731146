// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"slices"

	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/domain/models"
)

// HasPermission reports whether u holds capability c.
// A nil user has nothing; CapAll and the admin role grant everything.
func HasPermission(u *models.User, c models.Capability) bool {
	if u == nil {
		return false
	}
	if slices.Contains(u.Permissions, models.CapAll) {
		return true
	}
	if u.IsAdmin() {
		return true
	}
	return slices.Contains(u.Permissions, c)
}

// CanAccessProperty reports whether u may open the given property.
// Admins see every property, maintenance staff work across all of them for
// work orders, everyone else is limited to their assigned properties.
func CanAccessProperty(u *models.User, propertyID string) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case models.RoleAdmin, models.RoleMaintenance:
		return true
	}
	return propertyID != "" && slices.Contains(u.AssignedProperties, propertyID)
}

// Can reports whether the current request's user holds capability c.
func Can(r *http.Request, c models.Capability) bool {
	u, _ := auth.CurrentUser(r)
	return HasPermission(u, c)
}

// CanAccess reports whether the current request's user may open propertyID.
func CanAccess(r *http.Request, propertyID string) bool {
	u, _ := auth.CurrentUser(r)
	return CanAccessProperty(u, propertyID)
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.IsAdmin()
}
