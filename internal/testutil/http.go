package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionSecret is a throwaway cookie secret for tests.
const SessionSecret = "test-session-key-must-be-32-chars-long"

// NewSessionManager returns a session manager with a test secret and no
// activity tracking.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(SessionSecret, "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// TestCompany returns the company used by the user fixtures.
func TestCompany() *models.Company {
	return &models.Company{
		CompanyID:   "company-1",
		Name:        "Acme Estates",
		CompanyCode: "ACME-00001",
	}
}

// AdminUser returns an admin holding the wildcard capability.
func AdminUser() *models.User {
	return &models.User{
		ID:          "1",
		Email:       "admin@propertyflow.com",
		Name:        "John Admin",
		Role:        models.RoleAdmin,
		Permissions: []models.Capability{models.CapAll},
		Phone:       "+234 801 234 5678",
	}
}

// ManagerUser returns a manager assigned to properties 1, 2 and 3.
func ManagerUser() *models.User {
	return &models.User{
		ID:    "2",
		Email: "manager@propertyflow.com",
		Name:  "Sarah Manager",
		Role:  models.RoleManager,
		Permissions: []models.Capability{
			models.CapPropertiesView,
			models.CapPropertiesManage,
			models.CapRentalsManage,
			models.CapMaintenanceApprove,
		},
		AssignedProperties: []string{"1", "2", "3"},
		Phone:              "+234 802 345 6789",
	}
}

// MaintenanceUser returns a maintenance user limited to work orders.
func MaintenanceUser() *models.User {
	return &models.User{
		ID:          "3",
		Email:       "maintenance@propertyflow.com",
		Name:        "Mike Maintenance",
		Role:        models.RoleMaintenance,
		Permissions: []models.Capability{models.CapMaintenanceView, models.CapMaintenanceUpdate},
		Phone:       "+234 803 456 7890",
	}
}

// WithUser adds a session for u (in TestCompany) to the request context.
// This bypasses the session middleware and injects the record directly.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return auth.WithSession(r, &auth.Session{
		User:      u,
		Company:   TestCompany(),
		CreatedAt: time.Now().UTC(),
	})
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewRequest creates an HTTP request for testing that asks for HTML.
func NewRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Accept", "text/html")
	return req
}

// NewAuthenticatedRequest creates an HTML request with u signed in.
func NewAuthenticatedRequest(method, target string, u *models.User) *http.Request {
	return WithUser(NewRequest(method, target), u)
}

// WithCookies copies the cookies set on rec onto r, like a browser would
// on the next request.
func WithCookies(r *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
