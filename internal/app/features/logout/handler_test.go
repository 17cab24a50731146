package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/propertyflow/internal/app/features/logout"
	"github.com/dalemusser/propertyflow/internal/app/system/auditlog"
	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHandler(t *testing.T) (*logout.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	audit := auditlog.New(nil, logger, auditlog.Config{Auth: auditlog.ModeLog})
	return logout.NewHandler(testutil.NewSessionManager(t), audit, logger), logs
}

// signedIn signs the manager in and returns a request carrying the cookie,
// already passed through LoadSession.
func signedIn(t *testing.T, h *logout.Handler, method string) *http.Request {
	t.Helper()
	loginRec := httptest.NewRecorder()
	if _, err := h.SessionMgr.Login(loginRec, httptest.NewRequest("POST", "/auth/signin", nil), testutil.ManagerUser(), testutil.TestCompany()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	var out *http.Request
	req := testutil.WithCookies(httptest.NewRequest(method, "/logout", nil), loginRec)
	h.SessionMgr.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out = r
	})).ServeHTTP(httptest.NewRecorder(), req)
	return out
}

func TestServeLogout_RedirectsToSignIn(t *testing.T) {
	h, logs := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeLogout(rec, signedIn(t, h, "POST"))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/auth/signin" {
		t.Errorf("Location: got %q, want %q", got, "/auth/signin")
	}
	if n := logs.FilterField(zap.String("event_type", "logout")).Len(); n != 1 {
		t.Errorf("expected 1 logout audit event, got %d", n)
	}
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := signedIn(t, h, "POST")
	h.ServeLogout(rec, req)

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge >= 0 {
				t.Errorf("expected MaxAge < 0 to delete cookie, got %d", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected a deletion cookie")
	}
	if _, ok := auth.CurrentUser(req); ok {
		t.Error("request context should be signed out after logout")
	}
}

func TestServeLogout_HTMX(t *testing.T) {
	h, _ := newTestHandler(t)

	req := signedIn(t, h, "POST")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/auth/signin" {
		t.Errorf("HX-Redirect: got %q, want %q", got, "/auth/signin")
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	h, _ := newTestHandler(t)
	router := logout.Routes(h)

	req := testutil.NewRequest("POST", "/")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/auth/signin?return=%2F" {
		t.Errorf("Location: got %q, want %q", got, "/auth/signin?return=%2F")
	}
}

func TestRoutes_GetDoesNotSignOut(t *testing.T) {
	h, logs := newTestHandler(t)
	router := logout.Routes(h)

	req := signedIn(t, h, "GET")
	req.URL.Path = "/"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("GET must not touch the session cookie")
	}
	if _, ok := auth.CurrentUser(req); !ok {
		t.Error("user must still be signed in")
	}
	if logs.FilterMessage("user signed out").Len() != 0 {
		t.Error("no sign-out may be logged")
	}
}
