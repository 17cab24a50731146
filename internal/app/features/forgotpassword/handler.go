// internal/app/features/forgotpassword/handler.go
package forgotpassword

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
	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"github.com/dalemusser/propertyflow/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// pendingKey holds the account between the two steps.
const pendingKey = "password_reset"

const (
	msgSendFailed  = "Could not send reset code"
	msgResetFailed = "Invalid code or expired reset request"
	msgUnavailable = "Password reset is unavailable right now. Please try again shortly."
	requestPath    = "/auth/forgot-password"
	verifyPath     = "/auth/forgot-password/verify"
	afterResetPath = "/auth/signin?reset=1"
)

// Resetter is the backend half of the reset flow.
type Resetter interface {
	RequestPasswordReset(ctx context.Context, email, companyCode string) error
	ResetPassword(ctx context.Context, req backend.ResetPasswordRequest) error
}

type pending struct {
	Email       string `json:"email"`
	CompanyCode string `json:"company_code"`
}

type Handler struct {
	Backend    Resetter
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(be Resetter, sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Backend: be, SessionMgr: sm, AuditLog: audit, Log: logger}
}

type formData struct {
	viewdata.BaseVM
	Error       string
	Email       string
	CompanyCode string
}

/*─────────────────────────────────────────────────────────────────────────────*
| Step 1: request a code                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// GET /auth/forgot-password
func (h *Handler) ServeRequest(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "forgot_password", formData{
		BaseVM: viewdata.NewBaseVM(r, "Reset your password", "/auth/signin"),
	})
}

// POST /auth/forgot-password
func (h *Handler) HandleRequestPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRequest(w, r, http.StatusBadRequest, "Invalid form data.", inputval.ResetRequest{})
		return
	}
	form := inputval.ResetRequest{
		Email:       strings.TrimSpace(r.FormValue("email")),
		CompanyCode: strings.TrimSpace(r.FormValue("company_code")),
	}
	if msg := form.Validate(); msg != "" {
		h.renderRequest(w, r, http.StatusBadRequest, msg, form)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Backend(), h.Log, "backend request password reset")
	defer cancel()

	if err := h.Backend.RequestPasswordReset(ctx, form.Email, form.CompanyCode); err != nil {
		h.AuditLog.PasswordResetRequested(r.Context(), r, form.Email, form.CompanyCode, false)
		status, msg := h.failure(err, msgSendFailed, "backend request password reset failed")
		h.renderRequest(w, r, status, msg, form)
		return
	}
	h.AuditLog.PasswordResetRequested(r.Context(), r, form.Email, form.CompanyCode, true)

	if err := h.SessionMgr.Save(w, r, pendingKey, pending{Email: form.Email, CompanyCode: form.CompanyCode}); err != nil {
		h.Log.Error("save pending reset failed", zap.Error(err))
		h.renderRequest(w, r, http.StatusInternalServerError, msgUnavailable, form)
		return
	}
	navigation.Redirect(w, r, verifyPath)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Step 2: verify the code and set a new password                              |
*─────────────────────────────────────────────────────────────────────────────*/

// GET /auth/forgot-password/verify
func (h *Handler) ServeVerify(w http.ResponseWriter, r *http.Request) {
	var p pending
	if !h.SessionMgr.Load(r, pendingKey, &p) {
		http.Redirect(w, r, requestPath, http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "forgot_password_verify", formData{
		BaseVM: viewdata.NewBaseVM(r, "Enter reset code", requestPath),
		Email:  p.Email,
	})
}

// POST /auth/forgot-password/verify
func (h *Handler) HandleVerifyPost(w http.ResponseWriter, r *http.Request) {
	var p pending
	if !h.SessionMgr.Load(r, pendingKey, &p) {
		navigation.Redirect(w, r, requestPath)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderVerify(w, r, http.StatusBadRequest, "Invalid form data.", p)
		return
	}
	form := inputval.ResetVerify{
		Code:        strings.TrimSpace(r.FormValue("code")),
		NewPassword: r.FormValue("new_password"),
	}
	if msg := form.Validate(); msg != "" {
		h.renderVerify(w, r, http.StatusBadRequest, msg, p)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Backend(), h.Log, "backend reset password")
	defer cancel()

	err := h.Backend.ResetPassword(ctx, backend.ResetPasswordRequest{
		Email:       p.Email,
		CompanyCode: p.CompanyCode,
		Code:        form.Code,
		NewPassword: form.NewPassword,
	})
	if err != nil {
		h.AuditLog.PasswordResetCompleted(r.Context(), r, p.Email, p.CompanyCode, false)
		status, msg := h.failure(err, msgResetFailed, "backend reset password failed")
		h.renderVerify(w, r, status, msg, p)
		return
	}
	h.AuditLog.PasswordResetCompleted(r.Context(), r, p.Email, p.CompanyCode, true)

	if err := h.SessionMgr.Clear(w, r, pendingKey); err != nil {
		h.Log.Warn("clear pending reset failed", zap.Error(err))
	}
	navigation.Redirect(w, r, afterResetPath)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// failure maps a backend error to a status and a message for the form.
func (h *Handler) failure(err error, fallback, logMsg string) (int, string) {
	var be *backend.Error
	if errors.As(err, &be) {
		return be.Status, htmlsanitize.MessageOr(be.Message, fallback)
	}
	h.Log.Error(logMsg, zap.Error(err))
	return http.StatusBadGateway, msgUnavailable
}

func (h *Handler) renderRequest(w http.ResponseWriter, r *http.Request, status int, msg string, form inputval.ResetRequest) {
	w.WriteHeader(status)
	templates.Render(w, r, "forgot_password", formData{
		BaseVM:      viewdata.NewBaseVM(r, "Reset your password", "/auth/signin"),
		Error:       msg,
		Email:       form.Email,
		CompanyCode: form.CompanyCode,
	})
}

func (h *Handler) renderVerify(w http.ResponseWriter, r *http.Request, status int, msg string, p pending) {
	w.WriteHeader(status)
	templates.Render(w, r, "forgot_password_verify", formData{
		BaseVM: viewdata.NewBaseVM(r, "Enter reset code", requestPath),
		Error:  msg,
		Email:  p.Email,
	})
}
