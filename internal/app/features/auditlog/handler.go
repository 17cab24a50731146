// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"github.com/dalemusser/propertyflow/internal/app/store/audit"
	"go.uber.org/zap"
)

// EventQuerier reads audit events.
type EventQuerier interface {
	Query(ctx context.Context, f audit.QueryFilter) ([]audit.Event, error)
}

type Handler struct {
	Events EventQuerier
	Log    *zap.Logger
}

// NewHandler constructs an Audit Log feature handler bound to the given
// event store and logger.
func NewHandler(events EventQuerier, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Log:    logger,
	}
}
