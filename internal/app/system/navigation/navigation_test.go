package navigation_test

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/propertyflow/internal/app/system/navigation"
	"github.com/dalemusser/propertyflow/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func labels(items []navigation.Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestMenu_FilteredByPermission(t *testing.T) {
	assert.Equal(t,
		[]string{"Properties", "Rentals", "Occupancy", "Maintenance", "Reports", "Settings"},
		labels(navigation.Menu(testutil.AdminUser(), "/dashboard")))

	assert.Equal(t,
		[]string{"Properties", "Rentals", "Occupancy"},
		labels(navigation.Menu(testutil.ManagerUser(), "/dashboard")))

	assert.Equal(t,
		[]string{"Maintenance"},
		labels(navigation.Menu(testutil.MaintenanceUser(), "/dashboard")))

	assert.Empty(t, navigation.Menu(nil, "/dashboard"))
}

func TestMenu_Active(t *testing.T) {
	items := navigation.Menu(testutil.ManagerUser(), "/dashboard/properties/2")
	for _, it := range items {
		assert.Equal(t, it.Label == "Properties", it.Active, it.Label)
	}

	items = navigation.Menu(testutil.ManagerUser(), "/dashboard/rentals")
	for _, it := range items {
		assert.Equal(t, it.Label == "Rentals", it.Active, it.Label)
	}
}

func TestSafeReturn(t *testing.T) {
	tests := []struct {
		name string
		ret  string
		want string
	}{
		{"dashboard page", "/dashboard/rentals", "/dashboard/rentals"},
		{"empty", "", "/dashboard"},
		{"absolute url", "https://evil.example/phish", "/dashboard"},
		{"protocol relative", "//evil.example", "/dashboard"},
		{"outside dashboard", "/auth/signin", "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/auth/signin?return="+url.QueryEscape(tt.ret), nil)
			assert.Equal(t, tt.want, navigation.SafeReturn(r, navigation.AfterSignIn))
		})
	}
}

func TestSafeReturn_FromForm(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/signin", strings.NewReader("return=%2Fdashboard%2Fmaintenance"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, "/dashboard/maintenance", navigation.SafeReturn(r, navigation.AfterSignIn))
}

func TestRedirect(t *testing.T) {
	rec := httptest.NewRecorder()
	navigation.Redirect(rec, httptest.NewRequest("POST", "/auth/signin", nil), "/dashboard")
	assert.Equal(t, 303, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	r := httptest.NewRequest("POST", "/auth/signin", nil)
	r.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	navigation.Redirect(rec, r, "/dashboard")
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("HX-Redirect"))
	assert.Empty(t, rec.Header().Get("Location"))
}
