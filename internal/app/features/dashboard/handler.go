// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/propertyflow/internal/app/features/errors"
	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/app/system/authz"
	"github.com/dalemusser/propertyflow/internal/app/system/backend"
	"github.com/dalemusser/propertyflow/internal/app/system/htmlsanitize"
	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"github.com/dalemusser/propertyflow/internal/app/system/viewdata"
	"github.com/dalemusser/propertyflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PropertyGetter loads a property summary from the backend.
type PropertyGetter interface {
	GetProperty(ctx context.Context, userID, propertyID, companyID string) (*models.PropertySummary, error)
}

type Handler struct {
	Backend PropertyGetter
	Log     *zap.Logger
}

func NewHandler(be PropertyGetter, logger *zap.Logger) *Handler {
	return &Handler{
		Backend: be,
		Log:     logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type homeData struct {
	viewdata.BaseVM
	AllProperties      bool
	AssignedProperties []string
	Permissions        []models.Capability
	CanManageRentals   bool
	CanViewMaintenance bool
}

type sectionData struct {
	viewdata.BaseVM
	Section section
}

type propertyData struct {
	viewdata.BaseVM
	Property   *models.PropertySummary
	CanApprove bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/auth/signin", http.StatusSeeOther)
		return
	}

	data := homeData{
		BaseVM:             viewdata.NewBaseVM(r, "Dashboard", "/dashboard"),
		AllProperties:      !authz.HasRole(r, models.RoleManager),
		AssignedProperties: u.AssignedProperties,
		Permissions:        u.Permissions,
		CanManageRentals:   authz.Can(r, models.CapRentalsManage),
		CanViewMaintenance: authz.Can(r, models.CapMaintenanceView),
	}
	templates.Render(w, r, "dashboard_home", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/{section}                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) serveSection(s section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates.Render(w, r, "dashboard_section", sectionData{
			BaseVM:  viewdata.NewBaseVM(r, s.Title, "/dashboard"),
			Section: s,
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/properties/{propertyID}                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProperty(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.CurrentSession(r)
	if !ok {
		http.Redirect(w, r, "/auth/signin", http.StatusSeeOther)
		return
	}
	propertyID := chi.URLParam(r, "propertyID")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Backend(), h.Log, "backend get property")
	defer cancel()

	p, err := h.Backend.GetProperty(ctx, s.User.ID, propertyID, s.Company.CompanyID)
	if err != nil {
		var be *backend.Error
		switch {
		case errors.As(err, &be) && be.Status == http.StatusNotFound:
			uierrors.RenderNotFound(w, r, "That property does not exist or was removed.")
		case errors.As(err, &be) && be.Status == http.StatusForbidden:
			uierrors.RenderForbidden(w, r, htmlsanitize.MessageOr(be.Message, "You don't have access to this property."), "")
		default:
			h.Log.Error("load property failed",
				zap.Error(err),
				zap.String("property_id", propertyID),
				zap.String("company_id", s.Company.CompanyID))
			uierrors.RenderUnavailable(w, r, "")
		}
		return
	}

	templates.Render(w, r, "dashboard_property", propertyData{
		BaseVM:     viewdata.NewBaseVM(r, p.Name, "/dashboard"),
		Property:   p,
		CanApprove: authz.Can(r, models.CapMaintenanceApprove),
	})
}
