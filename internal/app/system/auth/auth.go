// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dalemusser/propertyflow/internal/app/system/ratelimit"
	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"github.com/dalemusser/propertyflow/internal/domain/models"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionKey is the cookie key holding the id of the server-side record
// that keeps the user and company together.
const SessionKey = "propertyflow_session"

// defaultRecordTTL bounds records when the cookie has no max age.
const defaultRecordTTL = 24 * time.Hour

// Activity session end reasons.
const (
	EndReasonLogout = "logout"
)

var (
	// ErrNoSession is returned by the setters when nobody is signed in.
	ErrNoSession = errors.New("auth: no session")
	// ErrIncompleteSession is returned by Login when user or company is missing.
	ErrIncompleteSession = errors.New("auth: user and company are both required")
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session record                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// Session is the record persisted under SessionKey and injected into the
// request context by LoadSession.
type Session struct {
	User       *models.User    `json:"user"`
	Company    *models.Company `json:"company"`
	ActivityID string          `json:"activity_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// complete reports whether both halves are present. A half-written record
// is treated as signed out.
func (s *Session) complete() bool {
	return s != nil && s.User != nil && s.Company != nil && s.User.ID != "" && s.Company.CompanyID != ""
}

// ActivityTracker records login sessions outside the cookie.
// The Mongo sessions store implements it.
type ActivityTracker interface {
	Open(ctx context.Context, userID, companyID, ip, userAgent string) (string, error)
	Close(ctx context.Context, id, reason string) error
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the session lifecycle.
// Handlers receive it through their constructors.
type SessionManager struct {
	store     *sessions.CookieStore
	name      string
	log       *zap.Logger
	activity  ActivityTracker
	records   RecordStore
	recordTTL time.Duration
}

// NewSessionManager builds a cookie-backed session manager. Hash and block
// keys are derived from sessionKey so the cookie is signed and encrypted.
//
// In production (secure=true) cookies are Secure + SameSite=None.
// In local dev over http://localhost use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "propertyflow-session"
	}

	hashKey, blockKey, err := deriveKeys(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("derive session keys: %w", err)
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	} else {
		store.Options.SameSite = http.SameSiteLaxMode
	}
	if maxAge > 0 {
		// also bounds the signed timestamp inside the cookie
		store.MaxAge(int(maxAge.Seconds()))
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	ttl := maxAge
	if ttl <= 0 {
		ttl = defaultRecordTTL
	}

	return &SessionManager{
		store:     store,
		name:      name,
		log:       logger,
		records:   NewMemoryRecords(),
		recordTTL: ttl,
	}, nil
}

// SetActivityTracker wires login-session tracking. Nil disables it.
func (sm *SessionManager) SetActivityTracker(t ActivityTracker) {
	sm.activity = t
}

// SetRecordStore replaces the in-process record store. Call it before
// serving requests; records already in the old store are not carried over.
func (sm *SessionManager) SetRecordStore(rs RecordStore) {
	if rs != nil {
		sm.records = rs
	}
}

// Name is the session cookie name.
func (sm *SessionManager) Name() string {
	return sm.name
}

// GetSession returns the gorilla session for r. On a decode error the
// returned session is a fresh one and err is non-nil.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Auth context                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentSessionKey ctxKey = "currentSession"

// LoadSession injects the session record into the request context when a
// complete one is present. It never blocks the request.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, rec, ok := sm.loadRecord(r); ok && rec.complete() {
			r = withSession(r, rec)
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentSession returns the record loaded for this request.
func CurrentSession(r *http.Request) (*Session, bool) {
	s, ok := r.Context().Value(currentSessionKey).(*Session)
	if !ok || !s.complete() {
		return nil, false
	}
	return s, true
}

// CurrentUser returns the signed-in user & “found?” flag.
func CurrentUser(r *http.Request) (*models.User, bool) {
	s, ok := CurrentSession(r)
	if !ok {
		return nil, false
	}
	return s.User, true
}

// CurrentCompany returns the company the user signed in to.
func CurrentCompany(r *http.Request) (*models.Company, bool) {
	s, ok := CurrentSession(r)
	if !ok {
		return nil, false
	}
	return s.Company, true
}

// WithSession injects s into r's context. Intended for tests and for
// handlers that establish a session mid-request.
func WithSession(r *http.Request, s *Session) *http.Request {
	return withSession(r, s)
}

func withSession(r *http.Request, s *Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentSessionKey, s))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Mutators                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// Login persists user and company as one record and opens an activity
// session. Activity tracking failures are logged, not returned.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, u *models.User, c *models.Company) (*Session, error) {
	rec := &Session{User: u, Company: c, CreatedAt: time.Now().UTC()}
	if !rec.complete() {
		return nil, ErrIncompleteSession
	}

	if sm.activity != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		id, err := sm.activity.Open(ctx, u.ID, c.CompanyID, ratelimit.ClientIP(r), r.UserAgent())
		cancel()
		if err != nil {
			sm.log.Warn("failed to open activity session",
				zap.Error(err),
				zap.String("user_id", u.ID),
				zap.String("company_id", c.CompanyID))
		} else {
			rec.ActivityID = id
		}
	}

	// A fresh id on every sign-in; the previous record is dropped.
	if oldID, ok := sm.recordID(r); ok {
		sm.deleteRecord(r.Context(), oldID)
	}
	id := uuid.NewString()
	if err := sm.putRecord(r.Context(), id, rec); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := sm.Save(w, r, SessionKey, id); err != nil {
		sm.deleteRecord(r.Context(), id)
		return nil, fmt.Errorf("save session: %w", err)
	}
	return rec, nil
}

// SetUser replaces the user half of the current record.
func (sm *SessionManager) SetUser(w http.ResponseWriter, r *http.Request, u *models.User) error {
	if u == nil {
		return ErrIncompleteSession
	}
	return sm.update(w, r, func(rec *Session) { rec.User = u })
}

// SetCompany replaces the company half of the current record.
func (sm *SessionManager) SetCompany(w http.ResponseWriter, r *http.Request, c *models.Company) error {
	if c == nil {
		return ErrIncompleteSession
	}
	return sm.update(w, r, func(rec *Session) { rec.Company = c })
}

// SetActivityID points the current record at a new activity session.
func (sm *SessionManager) SetActivityID(w http.ResponseWriter, r *http.Request, id string) error {
	return sm.update(w, r, func(rec *Session) { rec.ActivityID = id })
}

func (sm *SessionManager) update(w http.ResponseWriter, r *http.Request, apply func(*Session)) error {
	id, rec, ok := sm.loadRecord(r)
	if !ok || !rec.complete() {
		return ErrNoSession
	}
	apply(rec)
	if !rec.complete() {
		return ErrIncompleteSession
	}
	if err := sm.putRecord(r.Context(), id, rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if cur, ok := CurrentSession(r); ok {
		*cur = *rec
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Server-side records                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// recordID returns the record id carried by the cookie.
func (sm *SessionManager) recordID(r *http.Request) (string, bool) {
	var id string
	if !sm.Load(r, SessionKey, &id) || id == "" {
		return "", false
	}
	return id, true
}

// loadRecord resolves the cookie's record id. Store errors and undecodable
// records are logged and treated as signed out.
func (sm *SessionManager) loadRecord(r *http.Request) (string, *Session, bool) {
	id, ok := sm.recordID(r)
	if !ok {
		return "", nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	data, found, err := sm.records.Get(ctx, id)
	if err != nil {
		sm.log.Error("session record lookup failed", zap.Error(err))
		return "", nil, false
	}
	if !found {
		return "", nil, false
	}

	var rec Session
	if err := json.Unmarshal(data, &rec); err != nil {
		sm.log.Warn("malformed session record, ignoring", zap.Error(err))
		return "", nil, false
	}
	return id, &rec, true
}

func (sm *SessionManager) putRecord(ctx context.Context, id string, rec *Session) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	return sm.records.Put(ctx, id, data, rec.CreatedAt.Add(sm.recordTTL))
}

func (sm *SessionManager) deleteRecord(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	if err := sm.records.Delete(ctx, id); err != nil {
		sm.log.Warn("failed to delete session record", zap.Error(err))
	}
}

// Logout closes the activity session, deletes the server-side record and
// the cookie. The record held in r's context is emptied as well.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	id, rec, ok := sm.loadRecord(r)
	if ok && rec.ActivityID != "" && sm.activity != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		if err := sm.activity.Close(ctx, rec.ActivityID, EndReasonLogout); err != nil {
			sm.log.Warn("failed to close activity session",
				zap.Error(err),
				zap.String("activity_id", rec.ActivityID))
		}
		cancel()
	}
	if ok {
		sm.deleteRecord(r.Context(), id)
	}

	if cur, ok := r.Context().Value(currentSessionKey).(*Session); ok {
		cur.User, cur.Company, cur.ActivityID = nil, nil, ""
	}

	session, err := sm.GetSession(r)
	if err != nil {
		// Decode failed; still send a deletion cookie.
		sm.log.Warn("session decode failed during logout", zap.Error(err))
	}
	delete(session.Values, SessionKey)

	// The deletion cookie must match the original store settings.
	if opts := sm.store.Options; opts != nil {
		session.Options = &sessions.Options{
			Domain:   opts.Domain,
			Path:     opts.Path,
			Secure:   opts.Secure,
			HttpOnly: opts.HttpOnly,
			SameSite: opts.SameSite,
		}
	}
	session.Options.MaxAge = -1

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("delete session cookie: %w", err)
	}
	return nil
}

// deriveKeys expands the configured secret into a 64-byte HMAC key and a
// 32-byte AES-256 key.
func deriveKeys(secret string) (hashKey, blockKey []byte, err error) {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("propertyflow session cookie"))
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, nil, err
	}
	if _, err := io.ReadFull(kdf, blockKey); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}
