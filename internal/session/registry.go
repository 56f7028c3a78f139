package session

import (
	"context"
	"sync"
	"time"

	"github.com/mariana/studydeck/internal/logger"
)

// Registry holds live sessions by ID and expires the idle ones. The sweep
// runs on an explicit timer owned by the registry, stopped through the
// context passed to Start.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	log      *logger.Logger
}

// NewRegistry creates a registry that expires sessions idle longer than ttl.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      logger.Default().WithPrefix("sessions"),
	}
}

// Start launches the idle sweep. It returns immediately; the sweep goroutine
// exits when ctx is cancelled.
func (r *Registry) Start(ctx context.Context) {
	interval := r.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.log.Debug("session sweep stopped")
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}()
}

// Add registers a session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	r.log.Debug("session added: id=%s, cards=%d", s.ID, s.Len())
}

// Get looks up a session by ID.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops a session. In-memory state is simply discarded; ratings
// already persisted are not rolled back.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			delete(r.sessions, id)
			r.log.Info("expired idle session: id=%s", id)
		}
	}
}
