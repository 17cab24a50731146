// internal/domain/models/user.go
package models

import (
	"fmt"
	"strings"
)

// Role is the coarse account type of a dashboard user.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleMaintenance Role = "maintenance"
)

// ParseRole normalizes s and returns the matching Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleManager, RoleMaintenance:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is the signed-in dashboard user as returned by the backend at login.
// It lives in the session record for the lifetime of the browser session.
type User struct {
	ID                 string       `json:"id"`
	Email              string       `json:"email"`
	Name               string       `json:"name"`
	Role               Role         `json:"role"`
	Permissions        []Capability `json:"permissions"`
	AssignedProperties []string     `json:"assignedProperties,omitempty"`
	Phone              string       `json:"phone,omitempty"`
	Avatar             string       `json:"avatar,omitempty"`
}

// IsAdmin reports whether u has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
