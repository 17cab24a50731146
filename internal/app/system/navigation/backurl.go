// Package navigation resolves safe return URLs and builds the dashboard
// menu for the signed-in user.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// ReturnOptions configures SafeReturn.
type ReturnOptions struct {
	// AllowedPrefix, when set, is the prefix a return URL must start with.
	AllowedPrefix string
	// ExcludedPaths are rejected to avoid redirect loops back to auth pages.
	ExcludedPaths []string
	// Fallback is used when no acceptable return URL is present.
	Fallback string
}

// AfterSignIn accepts any dashboard page and falls back to /dashboard.
var AfterSignIn = ReturnOptions{
	AllowedPrefix: "/dashboard",
	ExcludedPaths: []string{"/auth/", "/logout"},
	Fallback:      "/dashboard",
}

// SafeReturn reads "return" from the query string, then the form, and
// returns it when it is a local path that satisfies opts.
func SafeReturn(r *http.Request, opts ReturnOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}
	if !isLocalPath(ret) {
		return opts.Fallback
	}
	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	for _, ex := range opts.ExcludedPaths {
		if strings.Contains(ret, ex) {
			return opts.Fallback
		}
	}
	return ret
}

// isLocalPath rejects anything a browser could resolve to another host.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
