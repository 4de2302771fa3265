package repository

import (
	"context"
	"sync"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// InMemorySessionRepository implements SessionRepository using in-memory
// storage keyed by owner.
type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.PlaylistSession
}

// NewInMemorySessionRepository creates a new in-memory session repository.
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[string]*domain.PlaylistSession),
	}
}

// Put stores a copy of the session, replacing any existing session of the
// owner.
func (r *InMemorySessionRepository) Put(ctx context.Context, session *domain.PlaylistSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *session
	r.sessions[session.OwnerID] = &cp
	return nil
}

// Get retrieves a copy of the owner's current session. The copy keeps
// callers from mutating shared state; Items are shared but immutable.
func (r *InMemorySessionRepository) Get(ctx context.Context, ownerID string) (*domain.PlaylistSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[ownerID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

// Delete removes the owner's session.
func (r *InMemorySessionRepository) Delete(ctx context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, ownerID)
	return nil
}
