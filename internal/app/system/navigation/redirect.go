package navigation

import "net/http"

// Redirect sends the browser to dest after a form post. HTMX requests get
// an HX-Redirect header so the client performs a full navigation.
func Redirect(w http.ResponseWriter, r *http.Request, dest string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
