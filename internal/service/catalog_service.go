package service

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/admin-console/internal/domain"
)

// ProductList is the products screen: filtered rows plus counters over the full catalog
type ProductList struct {
	Products []domain.Product       `json:"products"`
	Counters domain.ProductCounters `json:"counters"`
}

// OrderList is the orders screen
type OrderList struct {
	Orders   []domain.Order       `json:"orders"`
	Counters domain.OrderCounters `json:"counters"`
}

// CustomerView is a customer row with its spend tier
type CustomerView struct {
	domain.Customer
	Tier domain.CustomerTier `json:"tier"`
}

// CustomerList is the customers screen
type CustomerList struct {
	Customers []CustomerView          `json:"customers"`
	Counters  domain.CustomerCounters `json:"counters"`
}

// CatalogService serves the static back-office screens. Nothing here talks to the backend.
type CatalogService struct {
	products  []domain.Product
	orders    []domain.Order
	customers []domain.Customer
	dashboard domain.Dashboard
	nav       []domain.NavItem
}

// NewCatalogService creates a CatalogService with the built-in demo data
func NewCatalogService() *CatalogService {
	return &CatalogService{
		products:  demoProducts(),
		orders:    demoOrders(),
		customers: demoCustomers(),
		dashboard: demoDashboard(),
		nav:       sidebar(),
	}
}

// Navigation returns the sidebar entries
func (s *CatalogService) Navigation() []domain.NavItem {
	return append([]domain.NavItem{}, s.nav...)
}

// Dashboard returns the dashboard tiles, charts data and activity feed
func (s *CatalogService) Dashboard() domain.Dashboard {
	d := s.dashboard
	return domain.Dashboard{
		Stats:          append([]domain.DashboardStat{}, d.Stats...),
		Revenue:        append([]domain.RevenuePoint{}, d.Revenue...),
		CategoryShares: append([]domain.CategoryShare{}, d.CategoryShares...),
		RecentActivity: append([]domain.Activity{}, d.RecentActivity...),
	}
}

// Products filters products by name or category
func (s *CatalogService) Products(query string) ProductList {
	list := ProductList{Products: []domain.Product{}}
	for _, p := range s.products {
		if matches(query, p.Name, p.Category) {
			list.Products = append(list.Products, p)
		}

		list.Counters.Total++
		if p.Status == domain.ProductStatusActive {
			list.Counters.Active++
		}
		if p.Status == domain.ProductStatusOutOfStock {
			list.Counters.OutOfStock++
		}
		if p.Stock < domain.LowStockThreshold {
			list.Counters.LowStock++
		}
	}
	return list
}

// Orders filters orders by id, customer or email
func (s *CatalogService) Orders(query string) OrderList {
	list := OrderList{Orders: []domain.Order{}, Counters: domain.OrderCounters{Revenue: decimal.Zero}}
	for _, o := range s.orders {
		if matches(query, o.ID, o.Customer, o.Email) {
			list.Orders = append(list.Orders, o)
		}

		switch o.Status {
		case domain.OrderStatusPending:
			list.Counters.Pending++
		case domain.OrderStatusProcessing:
			list.Counters.Processing++
		case domain.OrderStatusShipped:
			list.Counters.Shipped++
		case domain.OrderStatusDelivered:
			list.Counters.Delivered++
		case domain.OrderStatusCancelled:
			list.Counters.Cancelled++
		}
		if o.Payment == domain.PaymentStatusPaid {
			list.Counters.Revenue = list.Counters.Revenue.Add(o.Total)
		}
	}
	return list
}

// Customers filters customers by name or email
func (s *CatalogService) Customers(query string) CustomerList {
	list := CustomerList{Customers: []CustomerView{}}
	sumAverages := decimal.Zero
	top := decimal.Zero

	for _, c := range s.customers {
		if matches(query, c.Name, c.Email) {
			list.Customers = append(list.Customers, CustomerView{Customer: c, Tier: c.Tier()})
		}

		list.Counters.Total++
		if c.Status == domain.CustomerStatusActive {
			list.Counters.Active++
		}
		if c.Orders > 0 {
			sumAverages = sumAverages.Add(c.TotalSpent.Div(decimal.NewFromInt(int64(c.Orders))))
		}
		if c.TotalSpent.GreaterThan(top) {
			top = c.TotalSpent
		}
	}

	list.Counters.AverageOrderValue = decimal.Zero
	if list.Counters.Total > 0 {
		list.Counters.AverageOrderValue = sumAverages.Div(decimal.NewFromInt(int64(list.Counters.Total))).Round(2)
	}
	list.Counters.TopSpender = top
	return list
}

// matches reports whether any field contains query, ignoring case. An empty query matches everything.
func matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func sidebar() []domain.NavItem {
	return []domain.NavItem{
		{Title: "Dashboard", URL: "/admin/dashboard", Icon: "LayoutDashboard"},
		{Title: "Categories", URL: "/admin/categories", Icon: "Layers"},
		{Title: "Products", URL: "/admin/products", Icon: "Package"},
		{Title: "Orders", URL: "/admin/orders", Icon: "ShoppingCart"},
		{Title: "Customers", URL: "/admin/customers", Icon: "Users"},
		{Title: "Analytics", URL: "/admin/analytics", Icon: "BarChart3"},
		{Title: "Settings", URL: "/admin/settings", Icon: "Settings"},
	}
}

func demoProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "iPhone 15 Pro", Category: "Electronics", Price: decimal.RequireFromString("999.99"), Stock: 45, Status: domain.ProductStatusActive, Image: "📱"},
		{ID: "2", Name: "MacBook Air M2", Category: "Electronics", Price: decimal.RequireFromString("1199.99"), Stock: 12, Status: domain.ProductStatusActive, Image: "💻"},
		{ID: "3", Name: "Nike Air Max 90", Category: "Clothing", Price: decimal.RequireFromString("129.99"), Stock: 0, Status: domain.ProductStatusOutOfStock, Image: "👟"},
		{ID: "4", Name: "Coffee Mug Set", Category: "Home", Price: decimal.RequireFromString("39.99"), Stock: 67, Status: domain.ProductStatusActive, Image: "☕"},
		{ID: "5", Name: "Wireless Headphones", Category: "Electronics", Price: decimal.RequireFromString("199.99"), Stock: 23, Status: domain.ProductStatusActive, Image: "🎧"},
	}
}

func demoOrders() []domain.Order {
	return []domain.Order{
		{ID: "ORD-001", Customer: "John Doe", Email: "john@example.com", Date: "2024-01-15", Total: decimal.RequireFromString("299.99"), Status: domain.OrderStatusDelivered, Items: 3, Payment: domain.PaymentStatusPaid},
		{ID: "ORD-002", Customer: "Sarah Johnson", Email: "sarah@example.com", Date: "2024-01-14", Total: decimal.RequireFromString("89.50"), Status: domain.OrderStatusShipped, Items: 1, Payment: domain.PaymentStatusPaid},
		{ID: "ORD-003", Customer: "Mike Chen", Email: "mike@example.com", Date: "2024-01-14", Total: decimal.RequireFromString("159.99"), Status: domain.OrderStatusProcessing, Items: 2, Payment: domain.PaymentStatusPaid},
		{ID: "ORD-004", Customer: "Emily Davis", Email: "emily@example.com", Date: "2024-01-13", Total: decimal.RequireFromString("45.00"), Status: domain.OrderStatusPending, Items: 1, Payment: domain.PaymentStatusPending},
		{ID: "ORD-005", Customer: "Alex Wilson", Email: "alex@example.com", Date: "2024-01-13", Total: decimal.RequireFromString("199.99"), Status: domain.OrderStatusCancelled, Items: 1, Payment: domain.PaymentStatusFailed},
	}
}

func demoCustomers() []domain.Customer {
	return []domain.Customer{
		{ID: "CUST-001", Name: "John Doe", Email: "john@example.com", JoinDate: "2023-05-15", Orders: 12, TotalSpent: decimal.RequireFromString("2499.99"), Status: domain.CustomerStatusActive, LastOrder: "2024-01-15", Rating: 4.8},
		{ID: "CUST-002", Name: "Sarah Johnson", Email: "sarah@example.com", JoinDate: "2023-08-22", Orders: 8, TotalSpent: decimal.RequireFromString("1299.50"), Status: domain.CustomerStatusActive, LastOrder: "2024-01-14", Rating: 4.9},
		{ID: "CUST-003", Name: "Mike Chen", Email: "mike@example.com", JoinDate: "2023-03-10", Orders: 15, TotalSpent: decimal.RequireFromString("3200.75"), Status: domain.CustomerStatusActive, LastOrder: "2024-01-12", Rating: 4.7},
		{ID: "CUST-004", Name: "Emily Davis", Email: "emily@example.com", JoinDate: "2023-11-05", Orders: 3, TotalSpent: decimal.RequireFromString("189.99"), Status: domain.CustomerStatusActive, LastOrder: "2024-01-10", Rating: 4.5},
		{ID: "CUST-005", Name: "Alex Wilson", Email: "alex@example.com", JoinDate: "2022-12-18", Orders: 22, TotalSpent: decimal.RequireFromString("4567.88"), Status: domain.CustomerStatusInactive, LastOrder: "2023-10-15", Rating: 4.6},
	}
}

func demoDashboard() domain.Dashboard {
	return domain.Dashboard{
		Stats: []domain.DashboardStat{
			{Title: "Total Revenue", Value: "$328,500", Change: "+12.5%", ChangeType: domain.ChangePositive},
			{Title: "Total Orders", Value: "1,309", Change: "+8.2%", ChangeType: domain.ChangePositive},
			{Title: "Total Customers", Value: "2,847", Change: "+15.3%", ChangeType: domain.ChangePositive},
			{Title: "Total Products", Value: "486", Change: "-2.1%", ChangeType: domain.ChangeNegative},
		},
		Revenue: []domain.RevenuePoint{
			{Month: "Jan", Revenue: decimal.NewFromInt(45000), Orders: 120},
			{Month: "Feb", Revenue: decimal.NewFromInt(52000), Orders: 145},
			{Month: "Mar", Revenue: decimal.NewFromInt(48000), Orders: 132},
			{Month: "Apr", Revenue: decimal.NewFromInt(61000), Orders: 168},
			{Month: "May", Revenue: decimal.NewFromInt(55000), Orders: 155},
			{Month: "Jun", Revenue: decimal.NewFromInt(67000), Orders: 189},
		},
		CategoryShares: []domain.CategoryShare{
			{Name: "Electronics", Value: 35, Color: "hsl(217, 91%, 60%)"},
			{Name: "Clothing", Value: 28, Color: "hsl(217, 91%, 70%)"},
			{Name: "Home", Value: 22, Color: "hsl(217, 91%, 80%)"},
			{Name: "Books", Value: 15, Color: "hsl(217, 91%, 90%)"},
		},
		RecentActivity: []domain.Activity{
			{Action: "New order received", Details: "Order #1234 - $89.99", Time: "2 minutes ago"},
			{Action: "Product updated", Details: "iPhone 15 Pro - Stock updated", Time: "15 minutes ago"},
			{Action: "Customer registered", Details: "john.doe@email.com", Time: "1 hour ago"},
			{Action: "Payment processed", Details: "Order #1230 - $156.50", Time: "2 hours ago"},
			{Action: "Review submitted", Details: "5-star review for Laptop Stand", Time: "3 hours ago"},
		},
	}
}
