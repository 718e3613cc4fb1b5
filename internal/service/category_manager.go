package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/storefront/admin-console/internal/debounce"
	"github.com/storefront/admin-console/internal/domain"
	"github.com/storefront/admin-console/internal/session"
	"github.com/storefront/admin-console/internal/websocket"
)

// CategoryView is a category as shown in the list, with its image URL resolved
type CategoryView struct {
	domain.Category
	ImageURL string `json:"imageUrl,omitempty"`
}

// CreateFormState is the draft behind the "Add Category" dialog
type CreateFormState struct {
	Open        bool   `json:"open"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EditFormState is the draft behind the edit dialog
type EditFormState struct {
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryState is a point-in-time copy of everything the category screen renders
type CategoryState struct {
	Query            string                 `json:"query"`
	SearchPending    bool                   `json:"searchPending"`
	Categories       []CategoryView         `json:"categories"`
	Summary          domain.CategorySummary `json:"summary"`
	Loading          bool                   `json:"loading"`
	CreateForm       CreateFormState        `json:"createForm"`
	EditForm         *EditFormState         `json:"editForm,omitempty"`
	LastNotification *domain.Notification   `json:"lastNotification,omitempty"`
}

// CategoryManagerConfig holds the tunables for a CategoryManager
type CategoryManagerConfig struct {
	DebounceDelay time.Duration
	ImageHost     string

	// Policies overrides entries of domain.CategorySyncPolicies
	Policies map[domain.CategoryOperation]domain.SyncPolicy
}

// CategoryManager keeps one session's category list and summary in step with
// the backend. Reads are served from memory; every mutation goes to the backend
// first and is reconciled locally per domain.CategorySyncPolicies.
type CategoryManager struct {
	session   *session.Session
	gateway   domain.CategoryGateway
	images    ImagePreparer
	publisher websocket.EventPublisher
	debouncer *debounce.Debouncer
	imageHost string
	policies  map[domain.CategoryOperation]domain.SyncPolicy
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	query      string
	categories []domain.Category
	summary    domain.CategorySummary
	inFlight   int
	createForm CreateFormState
	editForm   *EditFormState
	lastNotice *domain.Notification

	// issuedSeq numbers fetch requests; appliedSeq is the newest one applied
	issuedSeq  uint64
	appliedSeq uint64
}

// NewCategoryManager creates a manager bound to a session
func NewCategoryManager(
	sess *session.Session,
	gateway domain.CategoryGateway,
	images ImagePreparer,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
	config CategoryManagerConfig,
) *CategoryManager {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	policies := make(map[domain.CategoryOperation]domain.SyncPolicy, len(domain.CategorySyncPolicies))
	for op, policy := range domain.CategorySyncPolicies {
		policies[op] = policy
	}
	for op, policy := range config.Policies {
		policies[op] = policy
	}

	return &CategoryManager{
		session:    sess,
		gateway:    gateway,
		images:     images,
		publisher:  publisher,
		debouncer:  debounce.New(config.DebounceDelay),
		imageHost:  config.ImageHost,
		policies:   policies,
		logger:     logger.With().Str("component", "category_manager").Str("session_id", sess.ID.String()).Logger(),
		ctx:        ctx,
		cancel:     cancel,
		categories: []domain.Category{},
	}
}

// Load fetches the list for the current query. It is a no-op without a token.
func (m *CategoryManager) Load(ctx context.Context) error {
	if !m.session.HasToken() {
		return nil
	}
	return m.Fetch(ctx, m.Query())
}

// Fetch replaces list and summary with the backend's answer for query.
// On failure local state is left untouched.
func (m *CategoryManager) Fetch(ctx context.Context, query string) error {
	token := m.session.Token()
	if token == "" {
		return domain.ErrNoSession
	}

	m.mu.Lock()
	m.issuedSeq++
	seq := m.issuedSeq
	m.mu.Unlock()

	page, err := m.gateway.ListCategories(ctx, token, query)
	if err != nil {
		if m.superseded(seq) {
			m.logger.Debug().Err(err).Uint64("seq", seq).Str("query", query).Msg("Discarded stale category fetch failure")
			return nil
		}
		m.logger.Warn().Err(err).Str("query", query).Msg("Failed to fetch categories")
		m.notifyError(domain.OpFetch, err)
		return err
	}

	m.mu.Lock()
	if seq < m.appliedSeq {
		m.mu.Unlock()
		m.logger.Debug().Uint64("seq", seq).Str("query", query).Msg("Discarded stale category response")
		return nil
	}
	m.appliedSeq = seq
	m.categories = append([]domain.Category{}, page.Categories...)
	m.summary = page.Summary
	m.checkSummaryLocked(domain.OpFetch)
	state := m.stateLocked()
	m.mu.Unlock()

	m.publish(websocket.CategoryListSynced(state))
	return nil
}

// superseded reports whether a later fetch has already been applied
func (m *CategoryManager) superseded(seq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return seq < m.appliedSeq
}

// SetQuery records the search text and schedules a debounced fetch.
// Earlier pending fetches are superseded. Without a token nothing is scheduled.
func (m *CategoryManager) SetQuery(query string) {
	m.mu.Lock()
	m.query = query
	m.mu.Unlock()

	if !m.session.HasToken() {
		return
	}

	m.logger.Debug().Str("query", query).Dur("delay", m.debouncer.Delay()).Msg("Search scheduled")
	m.debouncer.Schedule(func() {
		if err := m.Fetch(m.ctx, query); err != nil {
			m.logger.Debug().Err(err).Str("query", query).Msg("Debounced fetch failed")
		}
	})
}

// Query returns the current search text
func (m *CategoryManager) Query() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query
}

// OpenCreateForm opens the create dialog, keeping any previous draft
func (m *CategoryManager) OpenCreateForm() {
	m.mu.Lock()
	m.createForm.Open = true
	m.mu.Unlock()
}

// CloseCreateForm closes the create dialog, keeping its draft
func (m *CategoryManager) CloseCreateForm() {
	m.mu.Lock()
	m.createForm.Open = false
	m.mu.Unlock()
}

// Create submits a new category. By default the list and summary are then
// refetched, since the backend derives product counts and image paths.
func (m *CategoryManager) Create(ctx context.Context, form domain.CategoryForm) (*domain.Category, error) {
	m.mu.Lock()
	m.createForm = CreateFormState{Open: true, Name: form.Name, Description: form.Description}
	m.mu.Unlock()

	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		m.notifyError(domain.OpCreate, domain.ErrNameRequired)
		return nil, domain.ErrNameRequired
	}

	token := m.session.Token()
	if token == "" {
		m.notifyError(domain.OpCreate, domain.ErrNoSession)
		return nil, domain.ErrNoSession
	}

	image, err := m.prepareImage(form.Image)
	if err != nil {
		m.notifyError(domain.OpCreate, err)
		return nil, err
	}
	form.Image = image

	m.beginLoading()
	defer m.endLoading()

	category, err := m.gateway.CreateCategory(ctx, token, form)
	if err != nil {
		m.logger.Warn().Err(err).Str("name", form.Name).Msg("Failed to create category")
		m.notifyError(domain.OpCreate, err)
		return nil, err
	}

	m.logger.Info().Str("category_id", category.ID).Str("name", category.Name).Msg("Category created")

	m.reconcile(ctx, domain.OpCreate, func() {
		m.categories = append(m.categories, *category)
		m.summary.Total++
		if category.IsActive {
			m.summary.Active++
		} else {
			m.summary.Inactive++
		}
	})

	m.mu.Lock()
	m.createForm = CreateFormState{}
	m.mu.Unlock()

	m.publish(websocket.CategoryCreated(m.view(*category)))
	m.notifySuccess(domain.OpCreate)
	return category, nil
}

// BeginEdit selects a category from the current list for editing
func (m *CategoryManager) BeginEdit(id string) (*EditFormState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(id)
	if idx < 0 {
		return nil, domain.ErrCategoryMissing
	}

	c := m.categories[idx]
	m.editForm = &EditFormState{CategoryID: c.ID, Name: c.Name, Description: c.Description}
	form := *m.editForm
	return &form, nil
}

// CancelEdit closes the edit dialog
func (m *CategoryManager) CancelEdit() {
	m.mu.Lock()
	m.editForm = nil
	m.mu.Unlock()
}

// Update submits changes to the category selected with BeginEdit. Under the
// patch policy the matching entry takes the submitted name and description and
// the image path returned by the backend.
func (m *CategoryManager) Update(ctx context.Context, id string, form domain.CategoryForm) (*domain.Category, error) {
	m.mu.Lock()
	if m.editForm == nil || m.editForm.CategoryID != id {
		m.mu.Unlock()
		m.notifyError(domain.OpUpdate, domain.ErrNoSelection)
		return nil, domain.ErrNoSelection
	}
	m.editForm.Name = form.Name
	m.editForm.Description = form.Description
	m.mu.Unlock()

	token := m.session.Token()
	if token == "" {
		m.notifyError(domain.OpUpdate, domain.ErrNoSession)
		return nil, domain.ErrNoSession
	}

	image, err := m.prepareImage(form.Image)
	if err != nil {
		m.notifyError(domain.OpUpdate, err)
		return nil, err
	}
	form.Image = image

	updated, err := m.gateway.UpdateCategory(ctx, token, id, form)
	if err != nil {
		m.logger.Warn().Err(err).Str("category_id", id).Msg("Failed to update category")
		m.notifyError(domain.OpUpdate, err)
		return nil, err
	}

	name, description := form.Name, form.Description

	m.reconcile(ctx, domain.OpUpdate, func() {
		if idx := m.indexLocked(id); idx >= 0 {
			m.categories[idx].Name = name
			m.categories[idx].Description = description
			if updated.Image != "" {
				m.categories[idx].Image = updated.Image
			}
		}
	})

	m.mu.Lock()
	if m.editForm != nil && m.editForm.CategoryID == id {
		m.editForm = nil
	}
	patched := m.lookupLocked(id)
	m.mu.Unlock()

	m.logger.Info().Str("category_id", id).Str("name", name).Msg("Category updated")

	if patched != nil {
		m.publish(websocket.CategoryUpdated(m.view(*patched)))
		return patched, nil
	}
	return updated, nil
}

// Delete removes a category after explicit confirmation. The summary bucket
// to decrement is read from the entry before it is removed.
func (m *CategoryManager) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrNotConfirmed
	}

	token := m.session.Token()
	if token == "" {
		m.notifyError(domain.OpDelete, domain.ErrNoSession)
		return domain.ErrNoSession
	}

	m.beginLoading()
	defer m.endLoading()

	if err := m.gateway.DeleteCategory(ctx, token, id); err != nil {
		m.logger.Warn().Err(err).Str("category_id", id).Msg("Failed to delete category")
		m.notifyError(domain.OpDelete, err)
		return err
	}

	m.reconcile(ctx, domain.OpDelete, func() {
		idx := m.indexLocked(id)
		if idx < 0 {
			m.logger.Warn().Str("category_id", id).Msg("Deleted category was not in the local list, summary left as is")
			return
		}
		wasActive := m.categories[idx].IsActive
		m.categories = append(m.categories[:idx:idx], m.categories[idx+1:]...)
		m.summary.Total--
		if wasActive {
			m.summary.Active--
		} else {
			m.summary.Inactive--
		}
	})

	m.mu.Lock()
	if m.editForm != nil && m.editForm.CategoryID == id {
		m.editForm = nil
	}
	m.mu.Unlock()

	m.logger.Info().Str("category_id", id).Msg("Category deleted")

	m.publish(websocket.CategoryDeleted(map[string]string{"_id": id}))
	m.notifySuccess(domain.OpDelete)
	return nil
}

// ToggleStatus asks the backend to set the category to !currentStatus and,
// once confirmed, flips the local flag and moves one count between buckets
// (or refetches, if so configured).
// Nothing changes locally before the backend answers.
func (m *CategoryManager) ToggleStatus(ctx context.Context, id string, currentStatus bool) error {
	token := m.session.Token()
	if token == "" {
		m.notifyError(domain.OpToggleStatus, domain.ErrNoSession)
		return domain.ErrNoSession
	}

	next := !currentStatus
	if err := m.gateway.SetCategoryStatus(ctx, token, id, next); err != nil {
		m.logger.Warn().Err(err).Str("category_id", id).Bool("is_active", next).Msg("Failed to toggle category status")
		m.notifyError(domain.OpToggleStatus, err)
		return err
	}

	m.reconcile(ctx, domain.OpToggleStatus, func() {
		adjust := true
		if idx := m.indexLocked(id); idx >= 0 {
			// A stale currentStatus must not move counts twice
			adjust = m.categories[idx].IsActive != next
			m.categories[idx].IsActive = next
		}
		if !adjust {
			return
		}
		if next {
			m.summary.Active++
			m.summary.Inactive--
		} else {
			m.summary.Active--
			m.summary.Inactive++
		}
	})

	m.mu.Lock()
	patched := m.lookupLocked(id)
	m.mu.Unlock()

	m.logger.Info().Str("category_id", id).Bool("is_active", next).Msg("Category status toggled")

	if patched != nil {
		m.publish(websocket.CategoryStatusChanged(m.view(*patched)))
	}
	return nil
}

// Policy returns how op is reconciled after a successful backend call
func (m *CategoryManager) Policy(op domain.CategoryOperation) domain.SyncPolicy {
	if policy, ok := m.policies[op]; ok {
		return policy
	}
	return domain.SyncRefetch
}

// reconcile brings local state in line after a successful mutation: either a
// full fetch for the current query or patch applied under the lock.
// A failed refetch raises its own notification; the mutation itself stands.
func (m *CategoryManager) reconcile(ctx context.Context, op domain.CategoryOperation, patch func()) {
	if m.Policy(op) == domain.SyncRefetch {
		_ = m.Fetch(ctx, m.Query())
		return
	}

	m.mu.Lock()
	patch()
	m.checkSummaryLocked(op)
	m.mu.Unlock()
}

// State returns a copy of the current screen state
func (m *CategoryManager) State() CategoryState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Summary returns the current summary counts
func (m *CategoryManager) Summary() domain.CategorySummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}

// Categories returns a copy of the current list
func (m *CategoryManager) Categories() []domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Category{}, m.categories...)
}

// Close stops the debouncer and cancels in-flight debounced fetches
func (m *CategoryManager) Close() {
	m.debouncer.Stop()
	m.cancel()
}

func (m *CategoryManager) prepareImage(upload *domain.ImageUpload) (*domain.ImageUpload, error) {
	if upload == nil || m.images == nil {
		return upload, nil
	}
	return m.images.Prepare(upload)
}

func (m *CategoryManager) beginLoading() {
	m.mu.Lock()
	m.inFlight++
	m.mu.Unlock()
}

func (m *CategoryManager) endLoading() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}

func (m *CategoryManager) indexLocked(id string) int {
	for i, c := range m.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// lookupLocked returns a copy of the entry with id, or nil
func (m *CategoryManager) lookupLocked(id string) *domain.Category {
	idx := m.indexLocked(id)
	if idx < 0 {
		return nil
	}
	c := m.categories[idx]
	return &c
}

func (m *CategoryManager) checkSummaryLocked(op domain.CategoryOperation) {
	if m.summary.Consistent() {
		return
	}
	m.logger.Warn().
		Str("operation", string(op)).
		Int("total", m.summary.Total).
		Int("active", m.summary.Active).
		Int("inactive", m.summary.Inactive).
		Msg("Category summary out of sync")
}

func (m *CategoryManager) stateLocked() CategoryState {
	views := make([]CategoryView, len(m.categories))
	for i, c := range m.categories {
		views[i] = m.view(c)
	}

	state := CategoryState{
		Query:         m.query,
		SearchPending: m.debouncer.Pending(),
		Categories:    views,
		Summary:       m.summary,
		Loading:       m.inFlight > 0,
		CreateForm:    m.createForm,
	}
	if m.editForm != nil {
		form := *m.editForm
		state.EditForm = &form
	}
	if m.lastNotice != nil {
		notice := *m.lastNotice
		state.LastNotification = &notice
	}
	return state
}

func (m *CategoryManager) view(c domain.Category) CategoryView {
	return CategoryView{Category: c, ImageURL: ResolveImageURL(m.imageHost, c.Image)}
}

func (m *CategoryManager) notifyError(op domain.CategoryOperation, err error) {
	m.raise(domain.Notification{
		Level:     domain.NotificationError,
		Operation: op,
		Message:   UserMessage(op, err),
	})
}

func (m *CategoryManager) notifySuccess(op domain.CategoryOperation) {
	msg := successMessage(op)
	if msg == "" {
		return
	}
	m.raise(domain.Notification{
		Level:     domain.NotificationSuccess,
		Operation: op,
		Message:   msg,
	})
}

func (m *CategoryManager) raise(n domain.Notification) {
	m.mu.Lock()
	m.lastNotice = &n
	m.mu.Unlock()

	m.publish(websocket.NotificationRaised(n))
}

func (m *CategoryManager) publish(event websocket.Event) {
	m.publisher.Publish(m.session.ID, event)
}
