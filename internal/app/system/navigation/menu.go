package navigation

import (
	"strings"

	"github.com/dalemusser/propertyflow/internal/app/system/authz"
	"github.com/dalemusser/propertyflow/internal/domain/models"
)

// Item is one entry in the dashboard sidebar.
type Item struct {
	Label      string
	Href       string
	Icon       string
	Permission models.Capability
	Active     bool
}

// menu lists every dashboard section in display order. Reports and
// Settings require the wildcard, so only admins see them.
var menu = []Item{
	{Label: "Properties", Href: "/dashboard", Icon: "building", Permission: models.CapPropertiesView},
	{Label: "Rentals", Href: "/dashboard/rentals", Icon: "key", Permission: models.CapRentalsManage},
	{Label: "Occupancy", Href: "/dashboard/occupancy", Icon: "users", Permission: models.CapPropertiesView},
	{Label: "Maintenance", Href: "/dashboard/maintenance", Icon: "wrench", Permission: models.CapMaintenanceView},
	{Label: "Reports", Href: "/dashboard/reports", Icon: "chart", Permission: models.CapAll},
	{Label: "Settings", Href: "/dashboard/settings", Icon: "settings", Permission: models.CapAll},
}

// Menu returns the items u may see, marking the one matching currentPath
// as active. A nil user gets no items.
func Menu(u *models.User, currentPath string) []Item {
	var out []Item
	for _, it := range menu {
		if !authz.HasPermission(u, it.Permission) {
			continue
		}
		it.Active = isActive(it.Href, currentPath)
		out = append(out, it)
	}
	return out
}

func isActive(href, path string) bool {
	if href == "/dashboard" {
		return path == "/dashboard" || strings.HasPrefix(path, "/dashboard/properties/")
	}
	return path == href || strings.HasPrefix(path, href+"/")
}
