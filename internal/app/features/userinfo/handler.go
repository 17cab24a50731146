// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/domain/models"
)

// Handler serves the auth context of the current browser session.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

// ServeMe returns JSON describing who is signed in.
//
// Response format:
//
//	{ "isAuthenticated": bool, "user": {...} | null, "company": {...} | null }
//
// It answers 200 for anonymous callers so client code can check the
// session without tripping the guard.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	sess, ok := auth.CurrentSession(r)
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"isAuthenticated": false,
			"user":            nil,
			"company":         nil,
		})
		return
	}

	perms := sess.User.Permissions
	if perms == nil {
		perms = []models.Capability{}
	}
	assigned := sess.User.AssignedProperties
	if assigned == nil {
		assigned = []string{}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"isAuthenticated": true,
		"user": map[string]any{
			"id":                 sess.User.ID,
			"name":               sess.User.Name,
			"email":              sess.User.Email,
			"role":               sess.User.Role,
			"permissions":        perms,
			"assignedProperties": assigned,
		},
		"company": map[string]any{
			"company_id":   sess.Company.CompanyID,
			"company_name": sess.Company.Name,
			"company_code": sess.Company.CompanyCode,
		},
	})
}
