// internal/app/system/auth/sessionstore.go
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// Save persists v as JSON under key in the session cookie.
// A cookie that fails to decode is replaced by a fresh one.
func (sm *SessionManager) Save(w http.ResponseWriter, r *http.Request, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logDecodeError(err)
	}
	sess.Values[key] = string(b)
	return sess.Save(r, w)
}

// Load decodes the value stored under key into dst. It reports false when
// the key is absent, the cookie is unreadable, or the stored JSON is
// malformed; dst is left untouched in those cases.
func (sm *SessionManager) Load(r *http.Request, key string, dst any) bool {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logDecodeError(err)
		return false
	}

	raw, ok := sess.Values[key].(string)
	if !ok || raw == "" {
		return false
	}
	if !json.Valid([]byte(raw)) {
		sm.log.Warn("malformed session value, ignoring", zap.String("key", key))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		sm.log.Warn("session value does not match type, ignoring",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	return true
}

// Clear removes key from the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request, key string) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logDecodeError(err)
	}
	delete(sess.Values, key)
	return sess.Save(r, w)
}

func (sm *SessionManager) logDecodeError(err error) {
	var scErr securecookie.Error
	if errors.As(err, &scErr) && scErr.IsDecode() {
		sm.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
		return
	}
	sm.log.Error("session store error, using fresh session", zap.Error(err))
}
