// internal/app/features/logout/routes.go
package logout

import (
	"github.com/dalemusser/propertyflow/internal/app/system/guard"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Only signed-in users can sign out.
		pr.Use(guard.RequireSignedIn)
		// POST only; gorilla/csrf does not check GET.
		pr.Post("/", h.ServeLogout)
	})

	return r
}
