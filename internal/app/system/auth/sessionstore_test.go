package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/propertyflow/internal/domain/models"
	"github.com/dalemusser/propertyflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	u := testutil.ManagerUser()

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Save(rec, httptest.NewRequest("GET", "/", nil), "user", u))

	next := testutil.WithCookies(httptest.NewRequest("GET", "/", nil), rec)
	var got models.User
	require.True(t, sm.Load(next, "user", &got))
	assert.Equal(t, *u, got)
}

func TestLoad_AbsentKey(t *testing.T) {
	sm := testutil.NewSessionManager(t)

	var got models.User
	assert.False(t, sm.Load(httptest.NewRequest("GET", "/", nil), "user", &got))
	assert.Equal(t, models.User{}, got)
}

func TestLoad_MalformedValue(t *testing.T) {
	sm := testutil.NewSessionManager(t)

	// Write a raw, non-JSON string through the underlying store.
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	sess, err := sm.GetSession(req)
	require.NoError(t, err)
	sess.Values["user"] = "{not json"
	require.NoError(t, sess.Save(req, rec))

	next := testutil.WithCookies(httptest.NewRequest("GET", "/", nil), rec)
	var got models.User
	assert.False(t, sm.Load(next, "user", &got))
	assert.Equal(t, models.User{}, got)
}

func TestLoad_TamperedCookie(t *testing.T) {
	sm := testutil.NewSessionManager(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.Name(), Value: "garbage"})

	var got models.User
	assert.False(t, sm.Load(req, "user", &got))
}

func TestClear(t *testing.T) {
	sm := testutil.NewSessionManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Save(rec, httptest.NewRequest("GET", "/", nil), "user", testutil.AdminUser()))

	req := testutil.WithCookies(httptest.NewRequest("GET", "/", nil), rec)
	rec2 := httptest.NewRecorder()
	require.NoError(t, sm.Clear(rec2, req, "user"))

	next := testutil.WithCookies(httptest.NewRequest("GET", "/", nil), rec2)
	var got models.User
	assert.False(t, sm.Load(next, "user", &got))
}
