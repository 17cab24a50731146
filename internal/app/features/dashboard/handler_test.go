package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/propertyflow/internal/app/features/dashboard"
	"github.com/dalemusser/propertyflow/internal/app/system/backend"
	"github.com/dalemusser/propertyflow/internal/domain/models"
	"github.com/dalemusser/propertyflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProperties struct {
	calls                         int
	userID, propertyID, companyID string
	err                           error
}

func (f *fakeProperties) GetProperty(_ context.Context, userID, propertyID, companyID string) (*models.PropertySummary, error) {
	f.calls++
	f.userID, f.propertyID, f.companyID = userID, propertyID, companyID
	if f.err != nil {
		return nil, f.err
	}
	return &models.PropertySummary{ID: propertyID, Name: "Lekki Gardens", Units: 12}, nil
}

func newRouter(be *fakeProperties) (http.Handler, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return dashboard.Routes(dashboard.NewHandler(be, zap.New(core))), logs
}

// do serves req, recovering from template rendering panics since no
// template engine is booted in tests.
func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		h.ServeHTTP(rec, req)
	}()
	return rec
}

func TestDashboard_RequiresSignIn(t *testing.T) {
	router, _ := newRouter(&fakeProperties{})

	rec := do(router, testutil.NewRequest("GET", "/rentals"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/signin?return=%2Frentals", rec.Header().Get("Location"))
}

func TestDashboard_SectionPermissions(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		path    string
		allowed bool
	}{
		{"manager rentals", testutil.ManagerUser(), "/rentals", true},
		{"manager occupancy", testutil.ManagerUser(), "/occupancy", true},
		{"manager maintenance", testutil.ManagerUser(), "/maintenance", false},
		{"manager reports", testutil.ManagerUser(), "/reports", false},
		{"maintenance rentals", testutil.MaintenanceUser(), "/rentals", false},
		{"maintenance maintenance", testutil.MaintenanceUser(), "/maintenance", true},
		{"admin reports", testutil.AdminUser(), "/reports", true},
		{"admin settings", testutil.AdminUser(), "/settings", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(&fakeProperties{})

			rec := do(router, testutil.NewAuthenticatedRequest("GET", tt.path, tt.user))

			if tt.allowed {
				assert.Empty(t, rec.Header().Get("Location"), "expected the section to render")
			} else {
				assert.Equal(t, http.StatusSeeOther, rec.Code)
				assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
			}
		})
	}
}

func TestProperty_AssignedManagerLoadsFromBackend(t *testing.T) {
	be := &fakeProperties{}
	router, _ := newRouter(be)

	rec := do(router, testutil.NewAuthenticatedRequest("GET", "/properties/2", testutil.ManagerUser()))

	assert.Empty(t, rec.Header().Get("Location"))
	assert.Equal(t, 1, be.calls)
	assert.Equal(t, "2", be.userID)
	assert.Equal(t, "2", be.propertyID)
	assert.Equal(t, testutil.TestCompany().CompanyID, be.companyID)
}

func TestProperty_UnassignedManagerRedirected(t *testing.T) {
	be := &fakeProperties{}
	router, _ := newRouter(be)

	rec := do(router, testutil.NewAuthenticatedRequest("GET", "/properties/42", testutil.ManagerUser()))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.Zero(t, be.calls)
}

func TestProperty_AdminSeesAnyProperty(t *testing.T) {
	be := &fakeProperties{}
	router, _ := newRouter(be)

	do(router, testutil.NewAuthenticatedRequest("GET", "/properties/42", testutil.AdminUser()))

	assert.Equal(t, 1, be.calls)
	assert.Equal(t, "42", be.propertyID)
}

func TestProperty_BackendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &backend.Error{Status: http.StatusNotFound}, http.StatusNotFound},
		{"forbidden", &backend.Error{Status: http.StatusForbidden, Message: "Not your property"}, http.StatusForbidden},
		{"transport", errors.New("connection refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, logs := newRouter(&fakeProperties{err: tt.err})

			rec := do(router, testutil.NewAuthenticatedRequest("GET", "/properties/1", testutil.ManagerUser()))

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusBadGateway {
				assert.Equal(t, 1, logs.FilterMessage("load property failed").Len())
			}
		})
	}
}
