// internal/app/features/heartbeat/routes.go
package heartbeat

import (
	"github.com/dalemusser/propertyflow/internal/app/system/guard"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for heartbeat endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Require user to be signed in
	r.Use(guard.RequireSignedIn)

	r.Post("/", h.ServeHeartbeat)

	return r
}
