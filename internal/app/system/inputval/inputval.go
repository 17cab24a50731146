// Package inputval validates the authentication forms before anything is
// sent to the backend. Each Validate method returns the first problem as
// a message for the form, or "" when the input is acceptable.
package inputval

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/validate"
)

const (
	MinPasswordLen       = 8
	MinSignInCompanyCode = 10
	MinResetCompanyCode  = 6
	ResetCodeLen         = 6
	minName              = 2
)

// IsValidEmail accepts a bare address (no display name) with a non-empty
// local part and domain, and no empty dot-separated labels.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !validate.SimpleEmailValid(s) {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	return validDots(local) && validDots(domain)
}

func validDots(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	return !strings.Contains(s, "..")
}

func atLeast(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

// SignIn is the sign-in form.
type SignIn struct {
	Email       string
	Password    string
	CompanyCode string
}

func (f SignIn) Validate() string {
	switch {
	case !IsValidEmail(f.Email):
		return "Please enter a valid email address."
	case len(f.Password) < MinPasswordLen:
		return "Password must be at least 8 characters."
	case !atLeast(f.CompanyCode, MinSignInCompanyCode):
		return "Company code must be at least 10 characters."
	}
	return ""
}

// ResetRequest is step one of the forgot-password flow.
type ResetRequest struct {
	Email       string
	CompanyCode string
}

func (f ResetRequest) Validate() string {
	switch {
	case !IsValidEmail(f.Email):
		return "Please enter a valid email address."
	case !atLeast(f.CompanyCode, MinResetCompanyCode):
		return "Company code must be at least 6 characters."
	}
	return ""
}

// ResetVerify is step two: the emailed code and the new password.
type ResetVerify struct {
	Code        string
	NewPassword string
}

func (f ResetVerify) Validate() string {
	if len(f.Code) != ResetCodeLen || strings.IndexFunc(f.Code, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return "Reset code must be 6 digits."
	}
	if len(f.NewPassword) < MinPasswordLen {
		return "Password must be at least 8 characters."
	}
	return ""
}

// Onboard is the company sign-up form.
type Onboard struct {
	CompanyName  string
	CompanyEmail string
	Country      string
	Name         string
	Email        string
	Password     string
}

func (f Onboard) Validate() string {
	switch {
	case !atLeast(f.CompanyName, minName):
		return "Company name is required."
	case !IsValidEmail(f.CompanyEmail):
		return "Please enter a valid company email."
	case !atLeast(f.Country, minName):
		return "Country is required."
	case !atLeast(f.Name, minName):
		return "Your name is required."
	case !IsValidEmail(f.Email):
		return "Please enter a valid email address."
	case len(f.Password) < MinPasswordLen:
		return "Password must be at least 8 characters."
	}
	return ""
}
