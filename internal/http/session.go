package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"labtrack-data/internal/service"
	"labtrack-data/internal/store"

	"github.com/google/uuid"
)

const sessionCookieName = "labtrack_session"

func sessionKey(token string) string { return "session:" + token }
func flashKey(token string) string   { return "flash:" + token }

// SessionStore keeps authenticated identities and per-session flash messages
// in the KV store (Redis in production, memory in dev/tests).
type SessionStore struct {
	kv          store.KV
	ttl         time.Duration
	rememberTTL time.Duration
}

func NewSessionStore(kv store.KV, ttl, rememberTTL time.Duration) *SessionStore {
	return &SessionStore{kv: kv, ttl: ttl, rememberTTL: rememberTTL}
}

// Create stores the identity under a fresh token and returns the token.
// remember extends the lifetime from the plain TTL to the remember TTL.
func (s *SessionStore) Create(ctx context.Context, ident service.Identity, remember bool) (string, error) {
	token := uuid.NewString()
	data, err := json.Marshal(ident)
	if err != nil {
		return "", err
	}
	ttl := s.ttl
	if remember {
		ttl = s.rememberTTL
	}
	if err := s.kv.Set(ctx, sessionKey(token), string(data), ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (service.Identity, bool) {
	if token == "" {
		return service.Identity{}, false
	}
	raw, err := s.kv.Get(ctx, sessionKey(token))
	if err != nil {
		return service.Identity{}, false
	}
	var ident service.Identity
	if err := json.Unmarshal([]byte(raw), &ident); err != nil {
		return service.Identity{}, false
	}
	return ident, true
}

func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	_ = s.kv.Del(ctx, flashKey(token))
	return s.kv.Del(ctx, sessionKey(token))
}

// PushFlash appends a one-shot message for the session.
func (s *SessionStore) PushFlash(ctx context.Context, token, message string) error {
	if token == "" {
		return nil
	}
	messages := s.readFlashes(ctx, token)
	messages = append(messages, message)
	data, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, flashKey(token), string(data), s.ttl)
}

// PopFlashes returns and clears the session's pending messages.
func (s *SessionStore) PopFlashes(ctx context.Context, token string) []string {
	if token == "" {
		return []string{}
	}
	messages := s.readFlashes(ctx, token)
	_ = s.kv.Del(ctx, flashKey(token))
	return messages
}

func (s *SessionStore) readFlashes(ctx context.Context, token string) []string {
	raw, err := s.kv.Get(ctx, flashKey(token))
	if err != nil {
		return []string{}
	}
	messages := []string{}
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return []string{}
	}
	return messages
}

// FromRequest resolves the caller's identity from the session cookie.
// The identity is read once here and passed down; handlers never re-fetch.
func (s *SessionStore) FromRequest(r *http.Request) (service.Identity, string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return service.Identity{}, "", false
	}
	ident, ok := s.Get(r.Context(), cookie.Value)
	if !ok {
		return service.Identity{}, "", false
	}
	return ident, cookie.Value, true
}

// RequireAuth resolves the identity or redirects to the login page,
// preserving the intended destination.
func (s *SessionStore) RequireAuth(w http.ResponseWriter, r *http.Request) (service.Identity, string, bool) {
	ident, token, ok := s.FromRequest(r)
	if !ok {
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
		return service.Identity{}, "", false
	}
	return ident, token, true
}

// RequireAdmin additionally rejects non-admins with a flash message and a
// redirect to the index. No error status: the denial is user-visible, not an
// HTTP failure.
func (s *SessionStore) RequireAdmin(w http.ResponseWriter, r *http.Request, message string) (service.Identity, string, bool) {
	ident, token, ok := s.RequireAuth(w, r)
	if !ok {
		return service.Identity{}, "", false
	}
	if !ident.IsAdmin {
		_ = s.PushFlash(r.Context(), token, message)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return service.Identity{}, "", false
	}
	return ident, token, true
}

// SetCookie writes the session cookie; remember controls persistence.
func (s *SessionStore) SetCookie(w http.ResponseWriter, token string, remember bool) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = int(s.rememberTTL / time.Second)
	}
	http.SetCookie(w, cookie)
}

// ClearCookie expires the session cookie.
func (s *SessionStore) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
