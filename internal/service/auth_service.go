package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/storefront/admin-console/internal/domain"
	"github.com/storefront/admin-console/internal/session"
)

// SessionStreams is the set of live connections (browser tabs) per session
type SessionStreams interface {
	ClientCount(sessionID uuid.UUID) int
	CloseSession(sessionID uuid.UUID)
}

// AuthService handles the session lifecycle: token acquired on login, cleared on logout
type AuthService struct {
	auth     domain.AuthGateway
	sessions *session.Store
	managers *CategoryManagerRegistry
	streams  SessionStreams
}

// NewAuthService creates a new AuthService. streams may be nil.
func NewAuthService(auth domain.AuthGateway, sessions *session.Store, managers *CategoryManagerRegistry, streams SessionStreams) *AuthService {
	return &AuthService{
		auth:     auth,
		sessions: sessions,
		managers: managers,
		streams:  streams,
	}
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	Session *session.Session
	Manager *CategoryManager
}

// Login exchanges credentials for a token, opens a session and loads its categories.
// A failed initial load does not fail the login; the manager has already raised
// a notification for it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("Admin login rejected")
		return nil, err
	}
	if token == "" {
		log.Error().Str("email", email).Msg("Login succeeded without a token")
		return nil, domain.ErrUnauthorized
	}

	sess := s.sessions.Create(email, token)
	manager := s.managers.Open(sess)

	if err := manager.Load(ctx); err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("Initial category load failed")
	}

	log.Info().Str("session_id", sess.ID.String()).Str("email", email).Msg("Admin logged in")
	return &LoginResult{Session: sess, Manager: manager}, nil
}

// Logout clears the session token and releases everything bound to the session
func (s *AuthService) Logout(sessionID uuid.UUID) {
	s.release(sessionID)
	if sess := s.sessions.Delete(sessionID); sess != nil {
		log.Info().Str("session_id", sessionID.String()).Str("email", sess.Email).Msg("Admin logged out")
	}
}

// Session returns a live session. Expired sessions are released on the way.
func (s *AuthService) Session(sessionID uuid.UUID) (*session.Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.release(sessionID)
			return nil, domain.ErrNoSession
		}
		return nil, err
	}
	return sess, nil
}

// Manager returns the category manager of a live session
func (s *AuthService) Manager(sessionID uuid.UUID) (*CategoryManager, error) {
	return s.managers.Get(sessionID)
}

// ReapExpired logs out every idle session and returns how many were removed
func (s *AuthService) ReapExpired() int {
	expired := s.sessions.Expired()
	for _, id := range expired {
		s.Logout(id)
	}
	return len(expired)
}

// SessionCookie builds the cookie that carries the session ID to the browser
func (s *AuthService) SessionCookie(sess *session.Session, secure bool) *http.Cookie {
	return s.sessions.Cookie(sess, secure)
}

// ActiveSessions returns the number of stored sessions
func (s *AuthService) ActiveSessions() int {
	return s.sessions.Count()
}

// OpenStreams returns how many live connections the session has
func (s *AuthService) OpenStreams(sessionID uuid.UUID) int {
	if s.streams == nil {
		return 0
	}
	return s.streams.ClientCount(sessionID)
}

func (s *AuthService) release(sessionID uuid.UUID) {
	s.managers.Close(sessionID)
	if s.streams != nil {
		s.streams.CloseSession(sessionID)
	}
}
