package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	assert.Equal(t, 0, l.remaining("k"))

	assert.True(t, l.Allow("other"), "keys are counted separately")
}

func TestLimiter_WindowExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, 1, l.remaining("k"))
	assert.True(t, l.Allow("k"))
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	l.Allow("k")
	l.Reset("k")
	assert.True(t, l.Allow("k"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded header ignored", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "10.0.0.2"},
		{"real ip header ignored", "", "198.51.100.7", "10.0.0.2:1234", "10.0.0.2"},
		{"remote addr with port", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestLoginLimiter_PerAccount(t *testing.T) {
	ll := NewLoginLimiter(100, 2)
	r := httptest.NewRequest("POST", "/auth/signin", nil)

	ok, _ := ll.Check(r, "Sarah@Example.com", "acme-00001")
	assert.True(t, ok)
	ok, _ = ll.Check(r, "sarah@example.com ", "ACME-00001")
	assert.True(t, ok)

	ok, msg := ll.Check(r, "sarah@example.com", "ACME-00001")
	assert.False(t, ok)
	assert.Equal(t, MsgTooManyForAccount, msg)

	ok, _ = ll.Check(r, "sarah@example.com", "OTHER-00002")
	assert.True(t, ok, "same email in another company is a different account")

	ll.ResetAccount("sarah@example.com", "ACME-00001")
	ok, _ = ll.Check(r, "sarah@example.com", "ACME-00001")
	assert.True(t, ok)
}

func TestLoginLimiter_SpoofedForwardedForSharesLimit(t *testing.T) {
	ll := NewLoginLimiter(2, 100)

	for i, xff := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		r := httptest.NewRequest("POST", "/auth/signin", nil)
		r.RemoteAddr = "192.0.2.9:4000"
		r.Header.Set("X-Forwarded-For", xff)
		ok, _ := ll.Check(r, "a@example.com", "ACME-00001")
		assert.Equal(t, i < 2, ok, "attempt %d", i+1)
	}
}

func TestLoginLimiter_ForgiveAccount(t *testing.T) {
	ll := NewLoginLimiter(100, 1)
	r := httptest.NewRequest("POST", "/auth/signin", nil)

	ok, _ := ll.Check(r, "a@example.com", "ACME-00001")
	assert.True(t, ok)
	ll.ForgiveAccount("a@example.com", "ACME-00001")

	ok, _ = ll.Check(r, "a@example.com", "ACME-00001")
	assert.True(t, ok, "forgiven attempt does not count")
	ok, _ = ll.Check(r, "a@example.com", "ACME-00001")
	assert.False(t, ok)
}

func TestLoginLimiter_PerIP(t *testing.T) {
	ll := NewLoginLimiter(1, 100)
	r := httptest.NewRequest("POST", "/auth/signin", nil)

	ok, _ := ll.Check(r, "a@example.com", "ACME-00001")
	assert.True(t, ok)

	ok, msg := ll.Check(r, "b@example.com", "ACME-00001")
	assert.False(t, ok)
	assert.Equal(t, MsgTooManyFromIP, msg)
}
