package domain

import "context"

// Category is a product category as returned by the storefront backend.
// The backend owns every field; the console only caches the current result set.
type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	Products    int    `json:"products"`
	Image       string `json:"image,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// CategorySummary holds the aggregate counts shown in the category tiles
type CategorySummary struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Consistent reports whether total == active + inactive
func (s CategorySummary) Consistent() bool {
	return s.Total == s.Active+s.Inactive
}

// CategoryPage is the list/search payload: the matching categories plus their summary
type CategoryPage struct {
	Categories []Category      `json:"categories"`
	Summary    CategorySummary `json:"summary"`
}

// CategoryForm carries the fields submitted on create and update.
// Image is optional; a nil Image leaves the stored image untouched.
type CategoryForm struct {
	Name        string
	Description string
	Image       *ImageUpload
}

// ImageUpload is an image file ready to be sent as a multipart part
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SyncPolicy describes how local state is reconciled after a successful mutation
type SyncPolicy string

const (
	// SyncRefetch reloads list and summary from the backend
	SyncRefetch SyncPolicy = "refetch"
	// SyncPatch applies the server-confirmed change to local state in place
	SyncPatch SyncPolicy = "patch"
)

// CategoryOperation names a category operation
type CategoryOperation string

const (
	OpFetch        CategoryOperation = "fetch"
	OpCreate       CategoryOperation = "create"
	OpUpdate       CategoryOperation = "update"
	OpDelete       CategoryOperation = "delete"
	OpToggleStatus CategoryOperation = "toggle_status"
)

// CategorySyncPolicies is the per-operation reconciliation table.
// Create refetches because the backend derives product counts and storage paths;
// the rest patch locally to avoid refetch latency.
var CategorySyncPolicies = map[CategoryOperation]SyncPolicy{
	OpCreate:       SyncRefetch,
	OpUpdate:       SyncPatch,
	OpDelete:       SyncPatch,
	OpToggleStatus: SyncPatch,
}

// CategoryGateway is the remote category API. Every call is authenticated with the
// caller's bearer token.
type CategoryGateway interface {
	ListCategories(ctx context.Context, token, query string) (*CategoryPage, error)
	CreateCategory(ctx context.Context, token string, form CategoryForm) (*Category, error)
	UpdateCategory(ctx context.Context, token, id string, form CategoryForm) (*Category, error)
	DeleteCategory(ctx context.Context, token, id string) error
	SetCategoryStatus(ctx context.Context, token, id string, active bool) error
}

// AuthGateway exchanges admin credentials for a bearer token
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (token string, err error)
}
