// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/propertyflow/internal/app/system/auditlog"
	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/app/system/navigation"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// ServeLogout handles POST /logout (GET is accepted for plain links).
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	var userID, companyID string
	if s, ok := auth.CurrentSession(r); ok {
		userID, companyID = s.User.ID, s.Company.CompanyID
	}

	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("logout: clear session", zap.Error(err))
	}

	if userID != "" {
		h.AuditLog.Logout(r.Context(), r, userID, companyID)
		h.Log.Info("user signed out", zap.String("user_id", userID))
	}

	navigation.Redirect(w, r, "/auth/signin")
}
