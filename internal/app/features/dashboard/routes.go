// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/propertyflow/internal/app/system/guard"
	"github.com/dalemusser/propertyflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// section is a dashboard page gated by one capability.
type section struct {
	Path       string
	Title      string
	Summary    string
	Permission models.Capability
}

var sections = []section{
	{"/rentals", "Rentals", "Leases, tenants and rent collection.", models.CapRentalsManage},
	{"/occupancy", "Occupancy", "Occupied and vacant units across your portfolio.", models.CapPropertiesView},
	{"/maintenance", "Maintenance", "Open and completed maintenance requests.", models.CapMaintenanceView},
	{"/reports", "Reports", "Company-wide financial and occupancy reports.", models.CapAll},
	{"/settings", "Settings", "Company profile, users and billing.", models.CapAll},
}

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Every dashboard page requires a signed-in user.
	r.Group(func(pr chi.Router) {
		pr.Use(guard.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)

		for _, s := range sections {
			pr.With(guard.RequirePermission(s.Permission)).Get(s.Path, h.serveSection(s))
		}

		pr.With(
			guard.RequirePermission(models.CapPropertiesView),
			guard.RequirePropertyAccess("propertyID"),
		).Get("/properties/{propertyID}", h.ServeProperty)
	})

	return r
}
