// Package session holds the bearer token issued by the storefront backend for a
// logged-in admin. A session is acquired on login and cleared on logout; nothing
// is persisted.
package session

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName is the name of the session cookie sent to the browser
	CookieName = "console_session"

	// HeaderName lets non-browser clients pass the session ID explicitly
	HeaderName = "X-Console-Session"

	// DefaultTTL is how long an idle session survives
	DefaultTTL = 24 * time.Hour
)

// ErrNotFound is returned when a session ID is unknown or expired
var ErrNotFound = errors.New("session not found")

// Session is an authenticated admin console session
type Session struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time

	mu       sync.RWMutex
	token    string
	lastSeen time.Time
}

// Token returns the bearer token, or "" once the session was cleared
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// HasToken reports whether the session still carries a token
func (s *Session) HasToken() bool {
	return s.Token() != ""
}

// Clear drops the token. Callers holding the session see no token afterwards.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}

// Store keeps sessions in memory. It is safe for concurrent use.
type Store struct {
	sessions map[uuid.UUID]*Session
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a Store whose sessions expire after ttl of inactivity
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create acquires a new session for the given token
func (st *Store) Create(email, token string) *Session {
	now := st.now()
	s := &Session{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: now,
		token:     token,
		lastSeen:  now,
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

// Get returns a live session and refreshes its idle timer
func (st *Store) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := st.now()
	if s.idleSince(now) > st.ttl || !s.HasToken() {
		st.Delete(id)
		return nil, ErrNotFound
	}
	s.touch(now)
	return s, nil
}

// Delete clears and forgets a session. It returns the removed session, if any.
func (st *Store) Delete(id uuid.UUID) *Session {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return nil
	}
	s.Clear()
	return s
}

// Expired returns the IDs of sessions idle for longer than the TTL
func (st *Store) Expired() []uuid.UUID {
	now := st.now()

	st.mu.RLock()
	defer st.mu.RUnlock()

	var ids []uuid.UUID
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			ids = append(ids, id)
		}
	}
	return ids
}

// Count returns the number of stored sessions
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Cookie builds the session cookie for the response
func (st *Store) Cookie(s *Session, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    s.ID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(st.ttl.Seconds()),
	}
}

// ExpiredCookie builds a cookie that removes the session cookie
func ExpiredCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// IDFromRequest reads the session ID from the cookie or the explicit header
func IDFromRequest(r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(HeaderName)
	if raw == "" {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			return uuid.Nil, false
		}
		raw = cookie.Value
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
