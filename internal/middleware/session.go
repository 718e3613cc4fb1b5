package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/storefront/admin-console/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the authenticated console session
	SessionKey contextKey = "session"
)

// SessionResolver looks up a live session by ID
type SessionResolver interface {
	Session(id uuid.UUID) (*session.Session, error)
}

// SessionMiddleware guards routes that need a logged-in admin
type SessionMiddleware struct {
	resolver SessionResolver
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(resolver SessionResolver) *SessionMiddleware {
	return &SessionMiddleware{resolver: resolver}
}

// RequireSession returns an Echo middleware that rejects requests without a live session
func (m *SessionMiddleware) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := session.IDFromRequest(c.Request())
			if !ok {
				return unauthorizedError(c, "Login required")
			}

			sess, err := m.resolver.Session(id)
			if err != nil {
				log.Debug().Err(err).Str("session_id", id.String()).Msg("Session lookup failed")
				return unauthorizedError(c, "Session expired, please log in again")
			}

			ctx := context.WithValue(c.Request().Context(), SessionKey, sess)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetSession extracts the session from the context
func GetSession(c echo.Context) *session.Session {
	if sess, ok := c.Request().Context().Value(SessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}

// GetSessionID extracts the session ID from the context
func GetSessionID(c echo.Context) uuid.UUID {
	if sess := GetSession(c); sess != nil {
		return sess.ID
	}
	return uuid.Nil
}
