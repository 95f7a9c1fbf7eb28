package provisioning

import (
	"sync"

	"github.com/sogawa-yk/Galley/internal/errdefs"
)

// Guard admits at most one in-flight operation per session. Entries exist
// only while held, so the table never outgrows the number of running
// operations.
type Guard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{held: make(map[string]struct{})}
}

// TryAcquire claims the session without blocking. The returned release
// function is idempotent.
func (g *Guard) TryAcquire(sessionID string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[sessionID]; busy {
		return nil, errdefs.InProgress(sessionID)
	}
	g.held[sessionID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, sessionID)
			g.mu.Unlock()
		})
	}, nil
}

// Held reports whether the session is currently claimed.
func (g *Guard) Held(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[sessionID]
	return ok
}

// Len returns the number of claimed sessions.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.held)
}
