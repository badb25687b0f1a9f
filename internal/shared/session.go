package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionManager orchestrates cookie based sessions over a SessionStore.
type SessionManager struct {
	store      SessionStore
	signer     *CookieSigner
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// Session holds per-request session data. A session without a user and
// without values is anonymous and is never persisted.
type Session struct {
	ID        string
	values    map[string]string
	userID    string
	createdAt time.Time
	expiresAt time.Time

	previousID  string
	isNew       bool
	dirty       bool
	destroyed   bool
	clearCookie bool
	cookieSent  bool
}

type sessionPayload struct {
	Values    map[string]string `json:"values,omitempty"`
	UserID    string            `json:"user_id"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(store SessionStore, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		store:      store,
		signer:     NewCookieSigner(secret),
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		now:        time.Now,
	}
}

// Load resolves the session referenced by the request cookie. Missing,
// forged, unknown or expired cookies yield a fresh anonymous session; only
// store failures are returned as errors.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	id, err := sm.signer.Unsign(cookie.Value)
	if err != nil {
		return sm.staleSession(), nil
	}

	data, err := sm.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return sm.staleSession(), nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(data, &stored); err != nil {
		_ = sm.store.Delete(ctx, id)
		return sm.staleSession(), nil
	}
	if !sm.now().Before(stored.ExpiresAt) {
		if err := sm.store.Delete(ctx, id); err != nil {
			return nil, err
		}
		return sm.staleSession(), nil
	}

	return &Session{
		ID:         id,
		values:     stored.Values,
		userID:     stored.UserID,
		createdAt:  stored.CreatedAt,
		expiresAt:  stored.ExpiresAt,
		cookieSent: true,
	}, nil
}

// Renew assigns a new identifier and a fresh lifetime. The previous record
// is deleted on Commit.
func (sm *SessionManager) Renew(sess *Session) {
	if sess == nil {
		return
	}
	if !sess.isNew && sess.ID != "" {
		sess.previousID = sess.ID
	}
	now := sm.now()
	sess.ID = sm.generateSessionID()
	sess.createdAt = now
	sess.expiresAt = now.Add(sm.ttl)
	sess.isNew = true
	sess.dirty = true
	sess.destroyed = false
	sess.cookieSent = false
}

// Commit persists the session and writes cookie headers as needed. It is
// safe to call more than once per request.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.previousID != "" {
		if err := sm.store.Delete(ctx, sess.previousID); err != nil {
			return err
		}
		sess.previousID = ""
	}

	if sess.destroyed {
		if sess.ID != "" {
			if err := sm.store.Delete(ctx, sess.ID); err != nil {
				return err
			}
		}
		sess.ID = ""
		sess.userID = ""
		sess.values = make(map[string]string)
		sess.destroyed = false
		sess.isNew = true
		sess.dirty = false
		sess.cookieSent = false
		sm.expireCookie(w)
		return nil
	}

	if sess.isNew && sess.userID == "" && len(sess.values) == 0 {
		if sess.clearCookie {
			sm.expireCookie(w)
			sess.clearCookie = false
		}
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sm.Renew(sess)
	}

	if sess.dirty || sess.isNew {
		ttl := sess.expiresAt.Sub(sm.now())
		if ttl <= 0 {
			return errors.New("session: lifetime exhausted before commit")
		}
		data, err := json.Marshal(sessionPayload{
			Values:    sess.values,
			UserID:    sess.userID,
			CreatedAt: sess.createdAt,
			ExpiresAt: sess.expiresAt,
		})
		if err != nil {
			return err
		}
		if err := sm.store.Set(ctx, sess.ID, data, ttl); err != nil {
			return err
		}
		sess.dirty = false
		sess.isNew = false
	}

	if !sess.cookieSent {
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    sm.signer.Sign(sess.ID),
			Path:     "/",
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(sess.expiresAt.Sub(sm.now()).Seconds()),
			Expires:  sess.expiresAt,
		})
		sess.cookieSent = true
		sess.clearCookie = false
	}
	return nil
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Session helpers

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s.values == nil {
		return ""
	}
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if s.values == nil {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// SetUser associates the session with an account ID.
func (s *Session) SetUser(id string) {
	s.userID = id
	s.dirty = true
}

// User returns the current account ID, empty when anonymous.
func (s *Session) User() string {
	return s.userID
}

// ExpiresAt reports when the session stops being valid.
func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		values: make(map[string]string),
		isNew:  true,
	}
}

// staleSession is an anonymous session whose request carried a cookie that
// no longer resolves; Commit tells the client to drop it.
func (sm *SessionManager) staleSession() *Session {
	sess := sm.newSession()
	sess.clearCookie = true
	return sess
}

func (sm *SessionManager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
