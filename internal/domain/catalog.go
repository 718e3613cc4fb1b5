package domain

import "github.com/shopspring/decimal"

// ProductStatus is the stock/listing state of a product
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out-of-stock"
)

// Product is a catalog item shown on the products screen
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Status   ProductStatus   `json:"status"`
	Image    string          `json:"image"`
}

// LowStockThreshold marks products whose stock should be highlighted
const LowStockThreshold = 20

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Order is a customer order shown on the orders screen
type Order struct {
	ID       string          `json:"id"`
	Customer string          `json:"customer"`
	Email    string          `json:"email"`
	Date     string          `json:"date"`
	Total    decimal.Decimal `json:"total"`
	Status   OrderStatus     `json:"status"`
	Items    int             `json:"items"`
	Payment  PaymentStatus   `json:"payment"`
}

// CustomerStatus is whether a customer account is active
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is a storefront customer shown on the customers screen
type Customer struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	JoinDate   string          `json:"joinDate"`
	Orders     int             `json:"orders"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	Status     CustomerStatus  `json:"status"`
	LastOrder  string          `json:"lastOrder"`
	Rating     float64         `json:"rating"`
}

// CustomerTier buckets customers by lifetime spend
type CustomerTier string

const (
	TierVIP    CustomerTier = "VIP"
	TierGold   CustomerTier = "Gold"
	TierSilver CustomerTier = "Silver"
	TierBronze CustomerTier = "Bronze"
)

// Tier returns the customer's spend tier
func (c Customer) Tier() CustomerTier {
	switch {
	case c.TotalSpent.GreaterThanOrEqual(decimal.NewFromInt(3000)):
		return TierVIP
	case c.TotalSpent.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		return TierGold
	case c.TotalSpent.GreaterThanOrEqual(decimal.NewFromInt(500)):
		return TierSilver
	default:
		return TierBronze
	}
}

// ChangeType tells whether a dashboard stat moved up or down
type ChangeType string

const (
	ChangePositive ChangeType = "positive"
	ChangeNegative ChangeType = "negative"
)

// DashboardStat is a single headline tile
type DashboardStat struct {
	Title      string     `json:"title"`
	Value      string     `json:"value"`
	Change     string     `json:"change"`
	ChangeType ChangeType `json:"changeType"`
}

// RevenuePoint is one month of the revenue series
type RevenuePoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// CategoryShare is a slice of the sales-by-category breakdown
type CategoryShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Activity is an entry in the recent activity feed
type Activity struct {
	Action  string `json:"action"`
	Details string `json:"details"`
	Time    string `json:"time"`
}

// Dashboard aggregates everything rendered on the dashboard screen
type Dashboard struct {
	Stats          []DashboardStat `json:"stats"`
	Revenue        []RevenuePoint  `json:"revenue"`
	CategoryShares []CategoryShare `json:"categoryShares"`
	RecentActivity []Activity      `json:"recentActivity"`
}

// ProductCounters are the tiles under the products table
type ProductCounters struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	OutOfStock int `json:"outOfStock"`
	LowStock   int `json:"lowStock"`
}

// OrderCounters are the per-status tiles above the orders table
type OrderCounters struct {
	Pending    int             `json:"pending"`
	Processing int             `json:"processing"`
	Shipped    int             `json:"shipped"`
	Delivered  int             `json:"delivered"`
	Cancelled  int             `json:"cancelled"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// CustomerCounters are the tiles above the customers table
type CustomerCounters struct {
	Total             int             `json:"total"`
	Active            int             `json:"active"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	TopSpender        decimal.Decimal `json:"topSpender"`
}

// NavItem is a sidebar entry
type NavItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
}
