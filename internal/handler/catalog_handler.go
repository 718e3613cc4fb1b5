package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/storefront/admin-console/internal/service"
)

// CatalogHandler serves the static back-office screens
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// GetNavigation handles GET /api/v1/navigation
func (h *CatalogHandler) GetNavigation(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogService.Navigation())
}

// GetDashboard handles GET /api/v1/dashboard
func (h *CatalogHandler) GetDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogService.Dashboard())
}

// GetProducts handles GET /api/v1/products?q=
func (h *CatalogHandler) GetProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogService.Products(c.QueryParam("q")))
}

// GetOrders handles GET /api/v1/orders?q=
func (h *CatalogHandler) GetOrders(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogService.Orders(c.QueryParam("q")))
}

// GetCustomers handles GET /api/v1/customers?q=
func (h *CatalogHandler) GetCustomers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogService.Customers(c.QueryParam("q")))
}
