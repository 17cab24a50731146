// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/propertyflow/internal/app/system/auditlog"
	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/app/system/backend"
	"github.com/dalemusser/propertyflow/internal/app/system/htmlsanitize"
	"github.com/dalemusser/propertyflow/internal/app/system/inputval"
	"github.com/dalemusser/propertyflow/internal/app/system/navigation"
	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"github.com/dalemusser/propertyflow/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const msgOnboardFailed = "Company onboarding unsuccessful"

// Onboarder registers a company and its first admin.
type Onboarder interface {
	Onboard(ctx context.Context, req backend.OnboardRequest) (string, error)
}

type Handler struct {
	Backend  Onboarder
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(be Onboarder, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Backend: be, AuditLog: audit, Log: logger}
}

type formData struct {
	viewdata.BaseVM
	Error          string
	Form           inputval.Onboard
	Phone          string
	Industry       string
	SubscriptionID string
}

// GET /auth/signup
func (h *Handler) ServeSignUp(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "signup", formData{
		BaseVM:         viewdata.NewBaseVM(r, "Register your company", "/"),
		SubscriptionID: query.Get(r, "subscription_id"),
	})
}

// POST /auth/signup
func (h *Handler) HandleSignUpPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "Invalid form data.", formData{})
		return
	}

	data := formData{
		Form: inputval.Onboard{
			CompanyName:  strings.TrimSpace(r.FormValue("company_name")),
			CompanyEmail: strings.TrimSpace(r.FormValue("company_email")),
			Country:      strings.TrimSpace(r.FormValue("country")),
			Name:         strings.TrimSpace(r.FormValue("name")),
			Email:        strings.TrimSpace(r.FormValue("email")),
			Password:     r.FormValue("password"),
		},
		Phone:          strings.TrimSpace(r.FormValue("phone")),
		Industry:       strings.TrimSpace(r.FormValue("industry")),
		SubscriptionID: strings.TrimSpace(r.FormValue("subscription_id")),
	}
	if msg := data.Form.Validate(); msg != "" {
		h.render(w, r, http.StatusBadRequest, msg, data)
		return
	}

	// Amount is optional and only meaningful with a subscription.
	amount, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("amount")))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Backend(), h.Log, "backend onboard")
	defer cancel()

	_, err := h.Backend.Onboard(ctx, backend.OnboardRequest{
		Email:          data.Form.Email,
		Password:       data.Form.Password,
		Name:           data.Form.Name,
		CompanyName:    data.Form.CompanyName,
		CompanyEmail:   data.Form.CompanyEmail,
		Phone:          data.Phone,
		Industry:       data.Industry,
		Country:        data.Form.Country,
		SubscriptionID: data.SubscriptionID,
		PaystackRef:    strings.TrimSpace(r.FormValue("paystack_ref")),
		Amount:         amount,
	})
	if err != nil {
		var be *backend.Error
		if !errors.As(err, &be) {
			h.Log.Error("backend onboard failed", zap.Error(err), zap.String("company", data.Form.CompanyName))
			h.render(w, r, http.StatusBadGateway, msgOnboardFailed+". Please try again shortly.", data)
			return
		}
		h.render(w, r, be.Status, htmlsanitize.MessageOr(be.Message, msgOnboardFailed), data)
		return
	}

	h.AuditLog.CompanyOnboarded(r.Context(), r, data.Form.Email, data.Form.CompanyName)
	h.Log.Info("company onboarded", zap.String("company", data.Form.CompanyName))

	navigation.Redirect(w, r, "/auth/signin?onboarded=1")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, msg string, data formData) {
	// Never echo the password back into the form.
	data.Form.Password = ""
	data.BaseVM = viewdata.NewBaseVM(r, "Register your company", "/")
	data.Error = msg
	w.WriteHeader(status)
	templates.Render(w, r, "signup", data)
}
