package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/storefront/admin-console/internal/backend"
	"github.com/storefront/admin-console/internal/domain"
	"github.com/storefront/admin-console/internal/middleware"
	"github.com/storefront/admin-console/internal/service"
	"github.com/storefront/admin-console/internal/session"
)

// AuthHandler handles login, logout and the current session
type AuthHandler struct {
	authService  *service.AuthService
	rateLimiter  *middleware.RateLimiter
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. rateLimiter may be nil.
func NewAuthHandler(authService *service.AuthService, rateLimiter *middleware.RateLimiter, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		rateLimiter:  rateLimiter,
		secureCookie: secureCookie,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse describes the logged-in admin
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	Streams   int    `json:"streams"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Session    SessionResponse       `json:"session"`
	Categories service.CategoryState `json:"categories"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Email and password are required", nil)
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewUnauthorizedError(c, "Invalid email or password")
		}
		if apiErr, ok := backend.IsAPIError(err); ok && apiErr.Status < http.StatusInternalServerError {
			detail := apiErr.Message
			if detail == "" {
				detail = "Invalid email or password"
			}
			return NewUnauthorizedError(c, detail)
		}
		log.Error().Err(err).Str("email", req.Email).Msg("Login failed")
		return NewBadGatewayError(c, "Login failed, please try again")
	}

	c.SetCookie(h.authService.SessionCookie(result.Session, h.secureCookie))

	return c.JSON(http.StatusOK, LoginResponse{
		Session:    toSessionResponse(result.Session),
		Categories: result.Manager.State(),
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewUnauthorizedError(c, "Login required")
	}

	h.authService.Logout(sess.ID)
	if h.rateLimiter != nil {
		h.rateLimiter.Forget(sess.ID)
	}
	c.SetCookie(session.ExpiredCookie(h.secureCookie))

	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return NewUnauthorizedError(c, "Login required")
	}
	resp := toSessionResponse(sess)
	resp.Streams = h.authService.OpenStreams(sess.ID)
	return c.JSON(http.StatusOK, resp)
}

func toSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		SessionID: s.ID.String(),
		Email:     s.Email,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}
