package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/propertyflow/internal/app/features/userinfo"
	"github.com/dalemusser/propertyflow/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type meResponse struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	User            *struct {
		ID                 string   `json:"id"`
		Name               string   `json:"name"`
		Email              string   `json:"email"`
		Role               string   `json:"role"`
		Permissions        []string `json:"permissions"`
		AssignedProperties []string `json:"assignedProperties"`
	} `json:"user"`
	Company *struct {
		CompanyID   string `json:"company_id"`
		CompanyName string `json:"company_name"`
		CompanyCode string `json:"company_code"`
	} `json:"company"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) meResponse {
	t.Helper()
	var resp meResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestServeMe_Unauthenticated(t *testing.T) {
	h := userinfo.NewHandler()

	rec := httptest.NewRecorder()
	h.ServeMe(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	resp := decode(t, rec)
	assert.False(t, resp.IsAuthenticated)
	assert.Nil(t, resp.User)
	assert.Nil(t, resp.Company)
}

func TestServeMe_Manager(t *testing.T) {
	h := userinfo.NewHandler()

	req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/api/me", nil), testutil.ManagerUser())
	rec := httptest.NewRecorder()
	h.ServeMe(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.True(t, resp.IsAuthenticated)
	require.NotNil(t, resp.User)
	require.NotNil(t, resp.Company)

	assert.Equal(t, "2", resp.User.ID)
	assert.Equal(t, "manager@propertyflow.com", resp.User.Email)
	assert.Equal(t, "manager", resp.User.Role)
	assert.Contains(t, resp.User.Permissions, "properties.view")
	assert.Equal(t, []string{"1", "2", "3"}, resp.User.AssignedProperties)
	assert.Equal(t, "company-1", resp.Company.CompanyID)
	assert.Equal(t, "ACME-00001", resp.Company.CompanyCode)
}

func TestServeMe_AdminHasEmptyAssignments(t *testing.T) {
	h := userinfo.NewHandler()

	req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/api/me", nil), testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeMe(rec, req)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	user := raw["user"].(map[string]any)
	assert.Equal(t, []any{}, user["assignedProperties"])
	assert.Equal(t, []any{"*"}, user["permissions"])
}

func TestMountRoutes(t *testing.T) {
	r := chi.NewRouter()
	userinfo.MountRoutes(r, userinfo.NewHandler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
