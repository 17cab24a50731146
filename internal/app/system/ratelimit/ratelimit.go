// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New allows limit hits per key in each period. Expired windows are swept
// lazily, so the limiter needs no background goroutine.
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// remaining is how many hits key has left in its current window.
func (l *Limiter) remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if n := l.limit - w.count; n > 0 {
		return n
	}
	return 0
}

// Forgive takes back one hit recorded for key in its current window.
func (l *Limiter) Forgive(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.windows[key]; ok && w.count > 0 {
		w.count--
	}
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// sweep drops expired windows once the map grows. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if len(l.windows) < 1024 {
		return
	}
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}

// ClientIP returns RemoteAddr without its port. Forwarding headers are not
// read here; behind a trusted proxy chi's middleware.RealIP rewrites
// RemoteAddr before this runs.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sign-in limiter                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// Messages shown on the sign-in form when a limit trips.
const (
	MsgTooManyFromIP     = "Too many sign-in attempts. Please wait a minute before trying again."
	MsgTooManyForAccount = "Too many sign-in attempts for this account. Please wait a few minutes."
)

// LoginLimiter throttles sign-in attempts per client IP and per account.
// An account is an email within a company code, since the same email may
// exist in several companies.
type LoginLimiter struct {
	ip      *Limiter
	account *Limiter
}

// NewLoginLimiter allows ipLimit attempts per IP per minute and
// accountLimit attempts per account per five minutes.
func NewLoginLimiter(ipLimit, accountLimit int) *LoginLimiter {
	if ipLimit <= 0 {
		ipLimit = 10
	}
	if accountLimit <= 0 {
		accountLimit = 5
	}
	return &LoginLimiter{
		ip:      New(ipLimit, time.Minute),
		account: New(accountLimit, 5*time.Minute),
	}
}

// Check records an attempt and returns (allowed, message).
func (ll *LoginLimiter) Check(r *http.Request, email, companyCode string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, MsgTooManyFromIP
	}
	if key := accountKey(email, companyCode); key != "" {
		if !ll.account.Allow(key) {
			return false, MsgTooManyForAccount
		}
	}
	return true, ""
}

// ForgiveAccount takes back the attempt Check recorded for the account,
// for attempts that failed on our side rather than on the credentials.
func (ll *LoginLimiter) ForgiveAccount(email, companyCode string) {
	if key := accountKey(email, companyCode); key != "" {
		ll.account.Forgive(key)
	}
}

// ResetAccount clears the account counter after a successful sign-in.
func (ll *LoginLimiter) ResetAccount(email, companyCode string) {
	if key := accountKey(email, companyCode); key != "" {
		ll.account.Reset(key)
	}
}

func accountKey(email, companyCode string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(companyCode)) + "|" + email
}
