// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/propertyflow/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

func render(w http.ResponseWriter, r *http.Request, status int, title, msg, backDefault string) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, backDefault),
		Status:  status,
		Message: msg,
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}

// RenderForbidden shows the access denied page with msg.
// If backURL is empty, a safe back URL is resolved with /dashboard as default.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/dashboard"
	}
	render(w, r, http.StatusForbidden, "Access denied", msg, backURL)
}

// RenderNotFound shows the not found page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg string) {
	if msg == "" {
		msg = "We couldn't find what you were looking for."
	}
	render(w, r, http.StatusNotFound, "Not found", msg, "/dashboard")
}

// RenderUnavailable shows a page for backend failures.
func RenderUnavailable(w http.ResponseWriter, r *http.Request, msg string) {
	if msg == "" {
		msg = "This page is unavailable right now. Please try again shortly."
	}
	render(w, r, http.StatusBadGateway, "Unavailable", msg, "/dashboard")
}
