package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/storefront/admin-console/internal/session"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	sessionID := uuid.New()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow(sessionID) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be rate limited (exceeded burst)
	if rl.Allow(sessionID) {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentSessions(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	session1 := uuid.New()
	session2 := uuid.New()

	// Exhaust session1's burst
	for i := 0; i < 3; i++ {
		if !rl.Allow(session1) {
			t.Errorf("Session1 request %d should be allowed", i+1)
		}
	}

	if rl.Allow(session1) {
		t.Error("Session1 should be rate limited")
	}

	// Session2 should still have its full burst
	for i := 0; i < 3; i++ {
		if !rl.Allow(session2) {
			t.Errorf("Session2 request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_Forget(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 1)
	defer rl.Stop()

	sessionID := uuid.New()
	rl.Allow(sessionID)
	if rl.Allow(sessionID) {
		t.Fatal("Second request should be rate limited")
	}

	rl.Forget(sessionID)
	if !rl.Allow(sessionID) {
		t.Error("Request after Forget should be allowed")
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter()
	rl.Stop()
	rl.Stop()

	if rl.Limit() != DefaultRateLimit {
		t.Errorf("Expected limit %d, got %d", DefaultRateLimit, rl.Limit())
	}
}

func TestRateLimitMiddleware_SkipsWithoutSession(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	// Should pass through without rate limiting
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/navigation", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RateLimitMiddleware(rl)(handler)(c)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "" {
			t.Error("Expected no rate limit headers without a session")
		}
	}
}

func TestRateLimitMiddleware_RateLimitsSession(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(10, 2) // Small burst for testing
	defer rl.Stop()

	sess := session.NewStore(time.Hour).Create("admin@example.com", "tok")

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	newContext := func() (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
		ctx := context.WithValue(req.Context(), SessionKey, sess)
		rec := httptest.NewRecorder()
		return e.NewContext(req.WithContext(ctx), rec), rec
	}

	// First 2 requests should succeed (burst)
	for i := 0; i < 2; i++ {
		c, rec := newContext()

		err := RateLimitMiddleware(rl)(handler)(c)
		if err != nil {
			t.Fatalf("Request %d: Expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: Expected status 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "10" {
			t.Errorf("Request %d: Expected X-RateLimit-Limit 10, got %q", i+1, rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	// 3rd request should be rate limited
	c, rec := newContext()
	err := RateLimitMiddleware(rl)(handler)(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}
