package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/storefront/admin-console/internal/domain"
	"github.com/storefront/admin-console/internal/session"
	"github.com/storefront/admin-console/internal/websocket"
)

// CategoryManagerRegistry holds one CategoryManager per live session
type CategoryManagerRegistry struct {
	gateway   domain.CategoryGateway
	images    ImagePreparer
	publisher websocket.EventPublisher
	logger    zerolog.Logger
	config    CategoryManagerConfig

	mu       sync.RWMutex
	managers map[uuid.UUID]*CategoryManager
}

// NewCategoryManagerRegistry creates an empty registry
func NewCategoryManagerRegistry(
	gateway domain.CategoryGateway,
	images ImagePreparer,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
	config CategoryManagerConfig,
) *CategoryManagerRegistry {
	return &CategoryManagerRegistry{
		gateway:   gateway,
		images:    images,
		publisher: publisher,
		logger:    logger,
		config:    config,
		managers:  make(map[uuid.UUID]*CategoryManager),
	}
}

// Open returns the session's manager, creating it on first use
func (r *CategoryManagerRegistry) Open(sess *session.Session) *CategoryManager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[sess.ID]; ok {
		return m
	}
	m := NewCategoryManager(sess, r.gateway, r.images, r.publisher, r.logger, r.config)
	r.managers[sess.ID] = m
	return m
}

// Get returns the manager for a session
func (r *CategoryManagerRegistry) Get(sessionID uuid.UUID) (*CategoryManager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.managers[sessionID]
	if !ok {
		return nil, domain.ErrNoSession
	}
	return m, nil
}

// Close stops and forgets the session's manager
func (r *CategoryManagerRegistry) Close(sessionID uuid.UUID) {
	r.mu.Lock()
	m, ok := r.managers[sessionID]
	delete(r.managers, sessionID)
	r.mu.Unlock()

	if ok {
		m.Close()
	}
}

// Count returns the number of open managers
func (r *CategoryManagerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.managers)
}
