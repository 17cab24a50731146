// Package guard enforces authentication and authorization in front of
// dashboard routes. It reads the session record placed in the request
// context by auth.SessionManager.LoadSession and never renders the wrapped
// handler when it decides to redirect.
package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/app/system/authz"
	"github.com/dalemusser/propertyflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

const (
	// DefaultFallbackPath is where signed-out callers are sent.
	DefaultFallbackPath = "/auth/signin"
	// DashboardPath is where signed-in callers without access are sent.
	DashboardPath = "/dashboard"
)

// Options describes what a route requires. The zero value only requires a
// signed-in user.
type Options struct {
	Permission   models.Capability
	Role         models.Role
	FallbackPath string
}

// Require returns middleware enforcing opts:
//   - no user: redirect to FallbackPath (default /auth/signin) with ?return=
//   - Role set, role differs and user is not admin: redirect to /dashboard
//   - Permission set and not held: redirect to /dashboard
func Require(opts Options) func(http.Handler) http.Handler {
	fallback := opts.FallbackPath
	if fallback == "" {
		fallback = DefaultFallbackPath
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := auth.CurrentUser(r)

			// 1) Not signed in → 401 semantics
			if !ok {
				dest := withReturn(fallback, currentURI(r))
				deny(w, r, dest, http.StatusUnauthorized, "unauthorized")
				return
			}

			// 2) Wrong role → back to the dashboard
			if opts.Role != "" && !authz.SatisfiesRole(u, opts.Role) {
				deny(w, r, DashboardPath, http.StatusForbidden, "forbidden")
				return
			}

			// 3) Missing capability → back to the dashboard
			if opts.Permission != "" && !authz.HasPermission(u, opts.Permission) {
				deny(w, r, DashboardPath, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSignedIn ensures there is a user in context.
func RequireSignedIn(next http.Handler) http.Handler {
	return Require(Options{})(next)
}

// RequirePermission is shorthand for Require(Options{Permission: c}).
func RequirePermission(c models.Capability) func(http.Handler) http.Handler {
	return Require(Options{Permission: c})
}

// RequireRole is shorthand for Require(Options{Role: role}).
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return Require(Options{Role: role})
}

// RequirePropertyAccess checks the property named by the chi URL param
// against the user's assignments. It assumes a signed-in user; mount it
// after Require.
func RequirePropertyAccess(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authz.CanAccess(r, chi.URLParam(r, param)) {
				deny(w, r, DashboardPath, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// deny sends the caller to dest in the form it understands:
//   - HTMX: HX-Redirect header with status (full-page client navigation)
//   - JSON: plain status with a short body
//   - HTML (default): 303 redirect
func deny(w http.ResponseWriter, r *http.Request, dest string, status int, msg string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(status)
		return
	}
	if wantsJSON(r) {
		http.Error(w, msg, status)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// withReturn adds return=uri to fallback, keeping any query it already has.
func withReturn(fallback, uri string) string {
	u, err := url.Parse(fallback)
	if err != nil {
		return DefaultFallbackPath + "?return=" + url.QueryEscape(uri)
	}
	q := u.Query()
	q.Set("return", uri)
	u.RawQuery = q.Encode()
	return u.String()
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func currentURI(r *http.Request) string {
	// Preserve path + query as a return param.
	u := *r.URL
	return u.RequestURI()
}
