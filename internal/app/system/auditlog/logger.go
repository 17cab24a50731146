// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/propertyflow/internal/app/store/audit"
	"github.com/dalemusser/propertyflow/internal/app/system/ratelimit"
	"github.com/dalemusser/propertyflow/internal/domain/models"
	"go.uber.org/zap"
)

// Destinations for Config.Auth.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Config selects where auth events go.
type Config struct {
	Auth string
}

// Logger records authentication events to the audit store and/or zap.
// A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger. store may be nil when Config.Auth is "log"
// or "off".
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if config.Auth == "" {
		config.Auth = ModeAll
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.CompanyID != "" {
		fields = append(fields, zap.String("company_id", event.CompanyID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the configured destination. Store
// failures are logged, never returned.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	if event.Category == "" {
		event.Category = audit.CategoryAuth
	}

	mode := l.config.Auth
	if mode == ModeOff {
		return
	}
	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}
	if (mode == ModeAll || mode == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func requestEvent(r *http.Request, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// LoginSuccess records a completed sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, u *models.User, c *models.Company) {
	e := requestEvent(r, audit.EventLoginSuccess, true)
	if u != nil {
		e.UserID, e.Email = u.ID, u.Email
		e.Details = map[string]string{"role": string(u.Role)}
	}
	if c != nil {
		e.CompanyID = c.CompanyID
	}
	l.Log(ctx, e)
}

// LoginFailed records a sign-in the backend rejected.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, companyCode, reason string) {
	e := requestEvent(r, audit.EventLoginFailed, false)
	e.Email = email
	e.FailureReason = reason
	e.Details = map[string]string{"company_code": companyCode}
	l.Log(ctx, e)
}

// LoginFailedRateLimit records a sign-in refused by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email, companyCode string) {
	e := requestEvent(r, audit.EventLoginFailedRateLimit, false)
	e.Email = email
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"company_code": companyCode}
	l.Log(ctx, e)
}

// Logout records a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID, companyID string) {
	e := requestEvent(r, audit.EventLogout, true)
	e.UserID = userID
	e.CompanyID = companyID
	l.Log(ctx, e)
}

// PasswordResetRequested records a reset code request.
func (l *Logger) PasswordResetRequested(ctx context.Context, r *http.Request, email, companyCode string, success bool) {
	e := requestEvent(r, audit.EventPasswordResetRequested, success)
	e.Email = email
	e.Details = map[string]string{"company_code": companyCode}
	l.Log(ctx, e)
}

// PasswordResetCompleted records a reset attempt with an emailed code.
func (l *Logger) PasswordResetCompleted(ctx context.Context, r *http.Request, email, companyCode string, success bool) {
	e := requestEvent(r, audit.EventPasswordResetCompleted, success)
	e.Email = email
	e.Details = map[string]string{"company_code": companyCode}
	if !success {
		e.FailureReason = "invalid or expired code"
	}
	l.Log(ctx, e)
}

// CompanyOnboarded records a new company registration.
func (l *Logger) CompanyOnboarded(ctx context.Context, r *http.Request, email, companyName string) {
	e := requestEvent(r, audit.EventCompanyOnboarded, true)
	e.Email = email
	e.Details = map[string]string{"company_name": companyName}
	l.Log(ctx, e)
}
