// internal/app/system/authz/roles.go
package authz

import (
	"net/http"

	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/domain/models"
)

// HasRole reports whether the current request's user has exactly role.
// Returns false if no user is present (i.e., not signed in).
func HasRole(r *http.Request, role models.Role) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.Role == role
}

// SatisfiesRole reports whether u meets a role requirement. Admins satisfy
// every requirement; an empty requirement is always met.
func SatisfiesRole(u *models.User, required models.Role) bool {
	if required == "" {
		return u != nil
	}
	if u == nil {
		return false
	}
	return u.Role == required || u.IsAdmin()
}
