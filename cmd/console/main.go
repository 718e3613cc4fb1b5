package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/storefront/admin-console/internal/backend"
	"github.com/storefront/admin-console/internal/config"
	"github.com/storefront/admin-console/internal/handler"
	"github.com/storefront/admin-console/internal/middleware"
	"github.com/storefront/admin-console/internal/service"
	"github.com/storefront/admin-console/internal/session"
	"github.com/storefront/admin-console/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Storefront backend client
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.LoginBaseURL, cfg.Backend.Timeout)
	log.Info().
		Str("base_url", cfg.Backend.BaseURL).
		Str("login_base_url", cfg.Backend.LoginBaseURL).
		Msg("Storefront backend configured")

	// Realtime hub, one stream per console session
	hub := websocket.NewHub()

	// Initialize services
	sessions := session.NewStore(cfg.SessionTTL)
	managers := service.NewCategoryManagerRegistry(client, service.NewImageService(), hub, log.Logger, service.CategoryManagerConfig{
		DebounceDelay: cfg.SearchDebounce,
		ImageHost:     cfg.Backend.ImageURL,
	})
	authService := service.NewAuthService(client, sessions, managers, hub)
	catalogService := service.NewCatalogService()

	// Background session expiry
	reaper := service.NewSessionReaper(authService, log.Logger, service.DefaultSessionReaperConfig())
	reaper.Start(context.Background())

	// Initialize middleware
	sessionMiddleware := middleware.NewSessionMiddleware(authService)
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, rateLimiter, cfg.IsProduction()),
		Category:  handler.NewCategoryHandler(authService),
		Catalog:   handler.NewCatalogHandler(catalogService),
		WebSocket: handler.NewWebSocketHandler(hub, authService, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, session.HeaderName},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"sessions": authService.ActiveSessions(),
			"streams":  hub.TotalClientCount(),
			"reaper":   reaper.IsRunning(),
		})
	})

	// Register API routes
	handler.RegisterRoutes(e, sessionMiddleware, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	reaper.Stop()
	rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
