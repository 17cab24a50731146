// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"context"
	"net/http"

	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/app/system/ratelimit"
	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Tracker is the activity session store as seen by the heartbeat.
type Tracker interface {
	Touch(ctx context.Context, id string) (bool, error)
	Open(ctx context.Context, userID, companyID, ip, userAgent string) (string, error)
}

// Handler handles heartbeat requests for activity tracking.
type Handler struct {
	Sessions   Tracker
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(sessStore Tracker, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions:   sessStore,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

// ServeHeartbeat handles POST /api/heartbeat.
// Updates LastActiveAt for the user's activity session. If that session was
// closed for inactivity, a new one is opened and stored in the cookie.
// Failures are logged and answered with 204; the page never sees them.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.CurrentSession(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if s.ActivityID != "" {
		updated, err := h.Sessions.Touch(ctx, s.ActivityID)
		if err != nil {
			h.Log.Warn("failed to update session last_active_at",
				zap.Error(err),
				zap.String("activity_id", s.ActivityID))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if updated {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	id, err := h.Sessions.Open(ctx, s.User.ID, s.Company.CompanyID, ratelimit.ClientIP(r), r.UserAgent())
	if err != nil {
		h.Log.Warn("failed to open activity session after timeout",
			zap.Error(err),
			zap.String("user_id", s.User.ID))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.SessionMgr.SetActivityID(w, r, id); err != nil {
		h.Log.Warn("failed to save session with new activity id", zap.Error(err))
	}

	h.Log.Info("opened new activity session after inactivity timeout",
		zap.String("user_id", s.User.ID),
		zap.String("activity_id", id))
	w.WriteHeader(http.StatusNoContent)
}
