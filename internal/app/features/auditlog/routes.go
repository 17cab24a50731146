// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/propertyflow/internal/app/system/guard"
	"github.com/dalemusser/propertyflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is mounted
// (typically "/audit" from bootstrap).
//
// Access is restricted to users holding every capability. Events are
// always scoped to the signed-in company.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(guard.RequirePermission(models.CapAll))
		pr.Get("/", h.ServeList)
	})

	return r
}
