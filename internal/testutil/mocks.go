package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/admin-console/internal/domain"
	"github.com/storefront/admin-console/internal/websocket"
)

// MockCategoryGateway is an in-memory implementation of domain.CategoryGateway.
// The *Fn hooks replace the default behavior when set.
type MockCategoryGateway struct {
	mu         sync.Mutex
	Categories []domain.Category
	NextID     int

	ListFn   func(ctx context.Context, token, query string) (*domain.CategoryPage, error)
	CreateFn func(ctx context.Context, token string, form domain.CategoryForm) (*domain.Category, error)
	UpdateFn func(ctx context.Context, token, id string, form domain.CategoryForm) (*domain.Category, error)
	DeleteFn func(ctx context.Context, token, id string) error
	StatusFn func(ctx context.Context, token, id string, active bool) error

	ListQueries   []string
	Tokens        []string
	CreateForms   []domain.CategoryForm
	UpdateIDs     []string
	DeleteIDs     []string
	StatusChanges map[string]bool
	StatusCalls   int
}

// NewMockCategoryGateway creates a gateway seeded with categories
func NewMockCategoryGateway(categories ...domain.Category) *MockCategoryGateway {
	return &MockCategoryGateway{
		Categories:    append([]domain.Category{}, categories...),
		NextID:        len(categories) + 1,
		StatusChanges: make(map[string]bool),
	}
}

// ListCategories returns categories whose name contains query, with a matching summary
func (m *MockCategoryGateway) ListCategories(ctx context.Context, token, query string) (*domain.CategoryPage, error) {
	m.mu.Lock()
	m.ListQueries = append(m.ListQueries, query)
	m.Tokens = append(m.Tokens, token)
	fn := m.ListFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, token, query)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	page := &domain.CategoryPage{Categories: []domain.Category{}}
	needle := strings.ToLower(query)
	for _, c := range m.Categories {
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		page.Categories = append(page.Categories, c)
		page.Summary.Total++
		if c.IsActive {
			page.Summary.Active++
		} else {
			page.Summary.Inactive++
		}
	}
	return page, nil
}

// CreateCategory appends a new active category
func (m *MockCategoryGateway) CreateCategory(ctx context.Context, token string, form domain.CategoryForm) (*domain.Category, error) {
	m.mu.Lock()
	m.CreateForms = append(m.CreateForms, form)
	m.Tokens = append(m.Tokens, token)
	fn := m.CreateFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, token, form)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := domain.Category{
		ID:          fmt.Sprintf("%d", m.NextID),
		Name:        form.Name,
		Description: form.Description,
		IsActive:    true,
	}
	if form.Image != nil {
		c.Image = "/uploads/categories/" + form.Image.Filename
	}
	m.NextID++
	m.Categories = append(m.Categories, c)
	return &c, nil
}

// UpdateCategory changes name and description of a stored category
func (m *MockCategoryGateway) UpdateCategory(ctx context.Context, token, id string, form domain.CategoryForm) (*domain.Category, error) {
	m.mu.Lock()
	m.UpdateIDs = append(m.UpdateIDs, id)
	m.Tokens = append(m.Tokens, token)
	fn := m.UpdateFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, token, id, form)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.Categories {
		if m.Categories[i].ID != id {
			continue
		}
		m.Categories[i].Name = form.Name
		m.Categories[i].Description = form.Description
		if form.Image != nil {
			m.Categories[i].Image = "/uploads/categories/" + form.Image.Filename
		}
		c := m.Categories[i]
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

// DeleteCategory removes a stored category
func (m *MockCategoryGateway) DeleteCategory(ctx context.Context, token, id string) error {
	m.mu.Lock()
	m.DeleteIDs = append(m.DeleteIDs, id)
	m.Tokens = append(m.Tokens, token)
	fn := m.DeleteFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, token, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.Categories {
		if m.Categories[i].ID == id {
			m.Categories = append(m.Categories[:i], m.Categories[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// SetCategoryStatus sets the active flag of a stored category
func (m *MockCategoryGateway) SetCategoryStatus(ctx context.Context, token, id string, active bool) error {
	m.mu.Lock()
	m.StatusCalls++
	m.StatusChanges[id] = active
	m.Tokens = append(m.Tokens, token)
	fn := m.StatusFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, token, id, active)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.Categories {
		if m.Categories[i].ID == id {
			m.Categories[i].IsActive = active
			return nil
		}
	}
	return domain.ErrNotFound
}

// ListCount returns how many list requests were made
func (m *MockCategoryGateway) ListCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ListQueries)
}

// Queries returns a copy of the queries sent to ListCategories
func (m *MockCategoryGateway) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.ListQueries...)
}

// RequestCount returns the number of requests of any kind
func (m *MockCategoryGateway) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tokens)
}

// MockAuthGateway is a mock implementation of domain.AuthGateway
type MockAuthGateway struct {
	// Accounts maps email to password
	Accounts map[string]string
	Token    string
	LoginFn  func(ctx context.Context, email, password string) (string, error)
	Calls    int
}

// NewMockAuthGateway creates a gateway accepting a single account
func NewMockAuthGateway(email, password, token string) *MockAuthGateway {
	return &MockAuthGateway{
		Accounts: map[string]string{email: password},
		Token:    token,
	}
}

// Login returns Token when the credentials match
func (m *MockAuthGateway) Login(ctx context.Context, email, password string) (string, error) {
	m.Calls++
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}
	if pw, ok := m.Accounts[email]; ok && pw == password {
		return m.Token, nil
	}
	return "", domain.ErrUnauthorized
}

// RecordingPublisher records every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent is an event together with its target session
type PublishedEvent struct {
	SessionID uuid.UUID
	Event     websocket.Event
}

// NewRecordingPublisher creates an empty RecordingPublisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records the event
func (p *RecordingPublisher) Publish(sessionID uuid.UUID, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, PublishedEvent{SessionID: sessionID, Event: event})
}

// Types returns the recorded event types in order
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.Events))
	for i, e := range p.Events {
		types[i] = e.Event.Type
	}
	return types
}

// Notifications returns the payloads of recorded notification events
func (p *RecordingPublisher) Notifications() []domain.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Notification
	for _, e := range p.Events {
		if n, ok := e.Event.Payload.(domain.Notification); ok {
			out = append(out, n)
		}
	}
	return out
}
