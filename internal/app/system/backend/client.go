// Package backend is the HTTP client for the PropertyFlow backend API,
// which owns users, companies and property data. Every call takes a
// context; callers bound it with timeouts.Backend().
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/propertyflow/internal/domain/models"
	"go.uber.org/zap"
)

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Error is a non-2xx answer from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: HTTP %d", e.Status)
	}
	return fmt.Sprintf("backend: HTTP %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not
// a backend answer (transport failure, timeout).
func StatusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}

// Client talks JSON to the backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New returns a client for baseURL. timeout bounds each round trip on top
// of any context deadline.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Auth                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// LoginRequest is the sign-in form as the backend expects it.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyCode string `json:"company_code"`
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	User    *models.User
	Company *models.Company
	Message string
}

// loginUser accepts both id spellings the backend has used.
type loginUser struct {
	ID                 string   `json:"id"`
	UserID             string   `json:"user_id"`
	Email              string   `json:"email"`
	Name               string   `json:"name"`
	Role               string   `json:"role"`
	Permissions        []string `json:"permissions"`
	AssignedProperties []string `json:"assignedProperties"`
	Phone              string   `json:"phone"`
	Avatar             string   `json:"avatar"`
}

type loginResponse struct {
	User    *loginUser      `json:"user"`
	Company *models.Company `json:"company"`
	Message string          `json:"message"`
}

// Login exchanges credentials for the user and company records.
// Permission tags the service does not know are dropped and logged.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.Company == nil {
		return nil, fmt.Errorf("backend: login response missing user or company")
	}

	u, err := c.toUser(resp.User, req.Email)
	if err != nil {
		return nil, err
	}
	if resp.Company.CompanyID == "" {
		return nil, fmt.Errorf("backend: login response company has no id")
	}
	if resp.Company.CompanyCode == "" {
		resp.Company.CompanyCode = req.CompanyCode
	}
	return &LoginResult{User: u, Company: resp.Company, Message: resp.Message}, nil
}

func (c *Client) toUser(lu *loginUser, email string) (*models.User, error) {
	id := lu.ID
	if id == "" {
		id = lu.UserID
	}
	if id == "" {
		return nil, fmt.Errorf("backend: login response user has no id")
	}
	role, err := models.ParseRole(lu.Role)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	caps, unknown := models.ParseCapabilities(lu.Permissions)
	if len(unknown) > 0 {
		c.log.Warn("ignoring unknown permissions from backend",
			zap.String("user_id", id),
			zap.Strings("permissions", unknown))
	}
	if lu.Email != "" {
		email = lu.Email
	}
	return &models.User{
		ID:                 id,
		Email:              email,
		Name:               lu.Name,
		Role:               role,
		Permissions:        caps,
		AssignedProperties: lu.AssignedProperties,
		Phone:              lu.Phone,
		Avatar:             lu.Avatar,
	}, nil
}

// RequestPasswordReset asks the backend to email a reset code.
func (c *Client) RequestPasswordReset(ctx context.Context, email, companyCode string) error {
	body := map[string]string{"email": email, "company_code": companyCode}
	return c.do(ctx, http.MethodPost, "/request-password-reset", body, nil)
}

// ResetPasswordRequest completes a reset with the emailed code.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	CompanyCode string `json:"company_code"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// ResetPassword sets a new password using the emailed code.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/reset-password", req, nil)
}

// OnboardRequest creates a company and its first admin.
type OnboardRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	CompanyName    string `json:"company_name"`
	CompanyEmail   string `json:"company_email"`
	Phone          string `json:"phone"`
	Industry       string `json:"industry"`
	Country        string `json:"country"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	PaystackRef    string `json:"paystack_ref,omitempty"`
	Amount         int    `json:"amount,omitempty"`
}

// Onboard registers a company. It returns the backend's message.
func (c *Client) Onboard(ctx context.Context, req OnboardRequest) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/onboard", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Properties                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// GetProperty loads one property as seen by userID within companyID.
func (c *Client) GetProperty(ctx context.Context, userID, propertyID, companyID string) (*models.PropertySummary, error) {
	path := fmt.Sprintf("/api/users/%s/property/%s/company/%s",
		url.PathEscape(userID), url.PathEscape(propertyID), url.PathEscape(companyID))

	var resp struct {
		Property *models.PropertySummary `json:"property"`
		Units    []json.RawMessage       `json:"units"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Property == nil {
		return nil, &Error{Status: http.StatusNotFound, Message: "property not found"}
	}
	if resp.Property.Units == 0 {
		resp.Property.Units = len(resp.Units)
	}
	if resp.Property.ID == "" {
		resp.Property.ID = propertyID
	}
	return resp.Property, nil
}

// Reachable reports whether the backend answers HTTP at all. Any status
// counts; only transport failures and deadlines are errors.
func (c *Client) Reachable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("backend: build reachability request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: reachability: %w", err)
	}
	resp.Body.Close()
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Transport                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// do sends in as JSON (when non-nil) and decodes a 2xx body into out
// (when non-nil). Non-2xx answers become *Error.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("backend: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("backend: %s %s: %w", method, path, ctx.Err())
		}
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("backend: read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", path, err)
	}
	return nil
}

// errorMessage pulls "message" or "error" out of a JSON error body.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
