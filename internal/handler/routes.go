package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/storefront/admin-console/internal/middleware"
)

// Handlers groups every HTTP handler of the console
type Handlers struct {
	Auth      *AuthHandler
	Category  *CategoryHandler
	Catalog   *CatalogHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	// WebSocket (session checked by the handler before upgrade)
	e.GET("/ws", h.WebSocket.HandleWS)

	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (public login)
	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)

	protected := []echo.MiddlewareFunc{sessionMiddleware.RequireSession(), middleware.RateLimitMiddleware(rateLimiter)}

	// Auth routes (protected)
	session := api.Group("/auth", protected...)
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.Me)

	// Category routes (protected)
	categories := api.Group("/categories", protected...)
	categories.GET("", h.Category.GetState)
	categories.PUT("/search", h.Category.Search)
	categories.POST("/refresh", h.Category.Refresh)
	categories.POST("/form", h.Category.OpenCreateForm)
	categories.DELETE("/form", h.Category.CloseCreateForm)
	categories.POST("", h.Category.CreateCategory)
	categories.DELETE("/edit", h.Category.CancelEdit)
	categories.POST("/:id/edit", h.Category.BeginEdit)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)
	categories.PATCH("/:id/status", h.Category.ToggleStatus)

	// Static screens (protected)
	screens := api.Group("", protected...)
	screens.GET("/navigation", h.Catalog.GetNavigation)
	screens.GET("/dashboard", h.Catalog.GetDashboard)
	screens.GET("/products", h.Catalog.GetProducts)
	screens.GET("/orders", h.Catalog.GetOrders)
	screens.GET("/customers", h.Catalog.GetCustomers)
}
