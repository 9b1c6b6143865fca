// internal/browser/registry.go
package browser

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/pagehound/internal/observability"
)

// Registry tracks persistent sessions by identifier. Reads run
// concurrently; map mutations exclude everything else. Two distinct
// sessions can run actions at the same time since each serializes on its
// own mutex.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	driver  *Driver
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRegistry builds an empty registry backed by the given driver.
func NewRegistry(driver *Driver, logger *zap.Logger, metrics *observability.Metrics) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		driver:   driver,
		logger:   logger.Named("session_registry"),
		metrics:  metrics,
	}
}

// Create opens a new session and stores it under its identifier.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	session, err := r.driver.NewSession(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[session.ID()] = session
	r.mu.Unlock()

	r.metrics.SessionOpened()
	r.logger.Info("Session registered", zap.String("session_id", session.ID()))
	return session, nil
}

// Get looks up a session by identifier.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove closes the session and drops it from the registry. Reports
// whether the identifier was present.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	session, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	if err := session.Close(); err != nil {
		r.logger.Warn("Error closing session", zap.String("session_id", id), zap.Error(err))
	}
	r.metrics.SessionClosed()
	return true
}

// Clear closes every session concurrently and empties the registry,
// returning how many were cleared.
func (r *Registry) Clear(ctx context.Context) (int, error) {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for id, session := range sessions {
		id, session := id, session
		g.Go(func() error {
			if err := session.Close(); err != nil {
				r.logger.Warn("Error closing session during cleanup",
					zap.String("session_id", id), zap.Error(err))
			}
			r.metrics.SessionClosed()
			return nil
		})
	}
	err := g.Wait()

	r.logger.Info("Cleared sessions", zap.Int("count", len(sessions)))
	return len(sessions), err
}

// Count reports how many sessions are registered.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
