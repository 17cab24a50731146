// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Prober is satisfied by *backend.Client.
type Prober interface {
	Reachable(ctx context.Context) error
}

// Handler reports whether the session database and the backend API
// can be reached.
type Handler struct {
	DB      Pinger
	Backend Prober
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. backend may be nil, in which
// case the backend is not probed.
func NewHandler(db Pinger, backend Prober, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Backend: backend,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// Database down: 503 with status "error". Backend unreachable while the
// database is up: 200 with status "degraded", since sessions keep working
// and only sign-in and property pages fail.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{Status: "ok", Database: "connected"}

	if h.Backend != nil {
		resp.Backend = "reachable"
		if err := h.Backend.Reachable(ctx); err != nil {
			h.Log.Warn("health-check: backend check failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Backend = "unreachable"
		}
	}

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
	}

	_ = json.NewEncoder(w).Encode(resp)
}
