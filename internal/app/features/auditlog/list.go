// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/propertyflow/internal/app/features/errors"
	"github.com/dalemusser/propertyflow/internal/app/store/audit"
	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"github.com/dalemusser/propertyflow/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const pageSize = 100

// eventTypes are the filter options, in display order.
var eventTypes = []string{
	audit.EventLoginSuccess,
	audit.EventLoginFailed,
	audit.EventLoginFailedRateLimit,
	audit.EventLogout,
	audit.EventPasswordResetRequested,
	audit.EventPasswordResetCompleted,
	audit.EventCompanyOnboarded,
}

// listItem represents a single audit event row for display.
type listItem struct {
	Timestamp     time.Time
	EventType     string
	UserID        string
	Email         string
	IP            string
	Success       bool
	FailureReason string
}

// listData is the view model for the audit log list page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	EventType  string
	StartDate  string
	EventTypes []string
}

// ServeList handles GET /audit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	company, ok := auth.CurrentCompany(r)
	if !ok {
		http.Redirect(w, r, "/auth/signin", http.StatusSeeOther)
		return
	}

	filter := audit.QueryFilter{CompanyID: company.CompanyID, Limit: pageSize}

	eventType := strings.TrimSpace(query.Get(r, "event_type"))
	if isKnownEventType(eventType) {
		filter.EventType = eventType
	} else {
		eventType = ""
	}

	startDate := strings.TrimSpace(query.Get(r, "start_date"))
	if startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			filter.Since = &t
		} else {
			startDate = ""
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err), zap.String("company_id", company.CompanyID))
		uierrors.RenderUnavailable(w, r, "The audit log is unavailable right now.")
		return
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			Timestamp:     e.Timestamp,
			EventType:     e.EventType,
			UserID:        e.UserID,
			Email:         e.Email,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
		})
	}

	templates.Render(w, r, "audit_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit log", "/dashboard/settings"),
		Items:      items,
		EventType:  eventType,
		StartDate:  startDate,
		EventTypes: eventTypes,
	})
}

func isKnownEventType(s string) bool {
	for _, t := range eventTypes {
		if s == t {
			return true
		}
	}
	return false
}
