package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/propertyflow/internal/app/system/backend"
	"github.com/dalemusser/propertyflow/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newClient(t *testing.T, h http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return backend.New(srv.URL+"/", 5*time.Second, zap.NewNop())
}

func TestLogin_Success(t *testing.T) {
	var got map[string]string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"message": "Welcome back",
			"user": {"user_id": "2", "name": "Sarah Manager", "role": "manager",
				"permissions": ["properties.view", "rentals.manage"],
				"assignedProperties": ["1", "2"]},
			"company": {"company_id": "company-1", "company_name": "Acme Estates"}
		}`))
	})

	res, err := c.Login(context.Background(), backend.LoginRequest{
		Email: "sarah@acme.test", Password: "secret", CompanyCode: "ACME-00001",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"email": "sarah@acme.test", "password": "secret", "company_code": "ACME-00001",
	}, got)
	assert.Equal(t, "Welcome back", res.Message)
	assert.Equal(t, &models.User{
		ID:                 "2",
		Email:              "sarah@acme.test",
		Name:               "Sarah Manager",
		Role:               models.RoleManager,
		Permissions:        []models.Capability{models.CapPropertiesView, models.CapRentalsManage},
		AssignedProperties: []string{"1", "2"},
	}, res.User)
	assert.Equal(t, "company-1", res.Company.CompanyID)
	assert.Equal(t, "Acme Estates", res.Company.Name)
	assert.Equal(t, "ACME-00001", res.Company.CompanyCode, "company code falls back to the submitted one")
}

func TestLogin_UnknownPermissionsDroppedAndLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user": {"id": "3", "role": "maintenance",
			"permissions": ["maintenance.view", "fly.rockets"]},
			"company": {"company_id": "c"}}`))
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	c := backend.New(srv.URL, time.Second, zap.New(core))

	res, err := c.Login(context.Background(), backend.LoginRequest{Email: "m@x.test"})
	require.NoError(t, err)
	assert.Equal(t, []models.Capability{models.CapMaintenanceView}, res.User.Permissions)
	assert.Equal(t, 1, logs.FilterMessage("ignoring unknown permissions from backend").Len())
}

func TestLogin_UnknownRole(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user": {"id": "9", "role": "owner"}, "company": {"company_id": "c"}}`))
	})

	_, err := c.Login(context.Background(), backend.LoginRequest{})
	assert.Error(t, err)
}

func TestLogin_MissingCompany(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user": {"id": "1", "role": "admin"}}`))
	})

	_, err := c.Login(context.Background(), backend.LoginRequest{})
	assert.Error(t, err)
}

func TestLogin_Unauthorized(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "Invalid credentials"}`))
	})

	_, err := c.Login(context.Background(), backend.LoginRequest{})
	require.Error(t, err)

	var be *backend.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusUnauthorized, be.Status)
	assert.Equal(t, "Invalid credentials", be.Message)
	assert.Equal(t, http.StatusUnauthorized, backend.StatusOf(err))
}

func TestError_UsesErrorFieldAndPlainBodies(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/request-password-reset":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "unknown company"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`boom`))
		}
	})

	err := c.RequestPasswordReset(context.Background(), "a@b.test", "X")
	var be *backend.Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "unknown company", be.Message)

	err = c.ResetPassword(context.Background(), backend.ResetPasswordRequest{})
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusInternalServerError, be.Status)
	assert.Empty(t, be.Message)
	assert.Equal(t, "backend: HTTP 500", be.Error())
}

func TestResetPassword_SendsAllFields(t *testing.T) {
	var got map[string]string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reset-password", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.ResetPassword(context.Background(), backend.ResetPasswordRequest{
		Email: "a@b.test", CompanyCode: "ACME-00001", Code: "123456", NewPassword: "n3w-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"email": "a@b.test", "company_code": "ACME-00001", "code": "123456", "new_password": "n3w-pass",
	}, got)
}

func TestOnboard(t *testing.T) {
	var got map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/onboard", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message": "Company created"}`))
	})

	msg, err := c.Onboard(context.Background(), backend.OnboardRequest{
		Email: "owner@beta.test", Password: "pw", Name: "Owner",
		CompanyName: "Beta Homes", CompanyEmail: "info@beta.test", Country: "NG", Amount: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Company created", msg)
	assert.Equal(t, "Beta Homes", got["company_name"])
	assert.Equal(t, float64(5000), got["amount"])
}

func TestGetProperty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/users/2/property/7/company/company-1", r.URL.Path)
		w.Write([]byte(`{"property": {"property_name": "Lekki Towers", "property_status": "active"},
			"units": [{"id": "u1"}, {"id": "u2"}], "files": []}`))
	})

	p, err := c.GetProperty(context.Background(), "2", "7", "company-1")
	require.NoError(t, err)
	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "Lekki Towers", p.Name)
	assert.Equal(t, 2, p.Units)
}

func TestGetProperty_Missing(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := c.GetProperty(context.Background(), "2", "7", "c")
	assert.Equal(t, http.StatusNotFound, backend.StatusOf(err))
}

func TestSlowBackend_DeadlineExceeded(t *testing.T) {
	release := make(chan struct{})
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Login(ctx, backend.LoginRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, backend.StatusOf(err))
}

func TestReachable(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, c.Reachable(context.Background()))

	srv := httptest.NewServer(http.NotFoundHandler())
	down := backend.New(srv.URL, time.Second, zap.NewNop())
	srv.Close()
	assert.Error(t, down.Reachable(context.Background()))
}
