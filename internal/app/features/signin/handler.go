// internal/app/features/signin/handler.go
package signin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/propertyflow/internal/app/system/auditlog"
	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/app/system/backend"
	"github.com/dalemusser/propertyflow/internal/app/system/htmlsanitize"
	"github.com/dalemusser/propertyflow/internal/app/system/inputval"
	"github.com/dalemusser/propertyflow/internal/app/system/navigation"
	"github.com/dalemusser/propertyflow/internal/app/system/ratelimit"
	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"github.com/dalemusser/propertyflow/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	msgSignInFailed = "Sign in unsuccessful"
	msgUnavailable  = "Sign in is unavailable right now. Please try again shortly."
	msgSessionError = "We couldn't start your session. Please try again."
)

// Authenticator exchanges credentials for the user and company records.
type Authenticator interface {
	Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResult, error)
}

type Handler struct {
	Backend    Authenticator
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(be Authenticator, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Backend:    be,
		SessionMgr: sm,
		Limiter:    limiter,
		AuditLog:   audit,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type formData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	CompanyCode   string
	ReturnURL     string
	Onboarded     bool
	PasswordReset bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/signin                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignIn(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, navigation.SafeReturn(r, navigation.AfterSignIn), http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "signin", formData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL:     query.Get(r, "return"),
		Onboarded:     query.Get(r, "onboarded") == "1",
		PasswordReset: query.Get(r, "reset") == "1",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/signin                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignInPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderFormWithError(w, r, http.StatusBadRequest, "Invalid form data.", inputval.SignIn{})
		return
	}

	form := inputval.SignIn{
		Email:       strings.TrimSpace(r.FormValue("email")),
		Password:    r.FormValue("password"),
		CompanyCode: strings.TrimSpace(r.FormValue("company_code")),
	}
	if msg := form.Validate(); msg != "" {
		h.renderFormWithError(w, r, http.StatusBadRequest, msg, form)
		return
	}

	if ok, msg := h.Limiter.Check(r, form.Email, form.CompanyCode); !ok {
		h.AuditLog.LoginFailedRateLimit(r.Context(), r, form.Email, form.CompanyCode)
		h.renderFormWithError(w, r, http.StatusTooManyRequests, msg, form)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Backend(), h.Log, "backend login")
	defer cancel()

	res, err := h.Backend.Login(ctx, backend.LoginRequest{
		Email:       form.Email,
		Password:    form.Password,
		CompanyCode: form.CompanyCode,
	})
	if err != nil {
		// Transport failures and 5xx answers say nothing about the
		// credentials, so they do not count against the account.
		if status := backend.StatusOf(err); status == 0 || status >= http.StatusInternalServerError {
			h.Limiter.ForgiveAccount(form.Email, form.CompanyCode)
			h.Log.Error("backend login failed", zap.Error(err), zap.String("email", form.Email))
			h.AuditLog.LoginFailed(r.Context(), r, form.Email, form.CompanyCode, "backend unavailable")
			h.renderFormWithError(w, r, http.StatusBadGateway, msgUnavailable, form)
			return
		}
		var be *backend.Error
		errors.As(err, &be)
		h.AuditLog.LoginFailed(r.Context(), r, form.Email, form.CompanyCode, "rejected by backend")
		h.renderFormWithError(w, r, http.StatusUnauthorized, htmlsanitize.MessageOr(be.Message, msgSignInFailed), form)
		return
	}

	h.Limiter.ResetAccount(form.Email, form.CompanyCode)

	if _, err := h.SessionMgr.Login(w, r, res.User, res.Company); err != nil {
		h.Log.Error("session save failed on sign-in", zap.Error(err), zap.String("user_id", res.User.ID))
		h.renderFormWithError(w, r, http.StatusInternalServerError, msgSessionError, form)
		return
	}

	h.AuditLog.LoginSuccess(r.Context(), r, res.User, res.Company)
	h.Log.Info("user signed in",
		zap.String("user_id", res.User.ID),
		zap.String("company_id", res.Company.CompanyID),
		zap.String("role", string(res.User.Role)))

	navigation.Redirect(w, r, navigation.SafeReturn(r, navigation.AfterSignIn))
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg string, form inputval.SignIn) {
	w.WriteHeader(status)
	templates.Render(w, r, "signin", formData{
		BaseVM:      viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:       msg,
		Email:       form.Email,
		CompanyCode: form.CompanyCode,
		ReturnURL:   strings.TrimSpace(r.FormValue("return")),
	})
}
