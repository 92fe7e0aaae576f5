package session

import (
	"context"
	"sync"
	"time"
)

// Store is the backing registry of live sessions. The in-memory
// implementation below is the default; a shared store (Redis, a database)
// would implement the same interface as an external collaborator.
type Store interface {
	// Get returns the session with the given id, if it exists.
	Get(id string) (*Session, bool)
	// Put registers a session under its id.
	Put(s *Session)
	// Delete removes a session.
	Delete(id string)
}

// MemoryStore keeps sessions in process memory and evicts sessions idle for
// longer than the configured TTL.
type MemoryStore struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore evicting sessions idle longer than
// ttl. A background goroutine sweeps expired sessions every ttl/2 and stops
// when ctx is cancelled. A non-positive ttl disables eviction.
func NewMemoryStore(ctx context.Context, ttl time.Duration) *MemoryStore {
	st := &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
	if ttl > 0 {
		go st.sweep(ctx)
	}
	return st
}

// Get returns the session for id and refreshes its idle timer.
func (st *MemoryStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.mu.Lock()
		s.lastSeen = time.Now()
		s.mu.Unlock()
	}
	return s, ok
}

// Put registers s under its id.
func (st *MemoryStore) Put(s *Session) {
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
}

// Delete removes the session with the given id.
func (st *MemoryStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *MemoryStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *MemoryStore) sweep(ctx context.Context) {
	ticker := time.NewTicker(st.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.evictIdle(now)
		}
	}
}

func (st *MemoryStore) evictIdle(now time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		// A session serving a request holds its lock for the duration of the
		// request. Blocking on it here would stall every Get and Put until
		// that request finishes, and a busy session is not idle anyway.
		if !s.mu.TryLock() {
			continue
		}
		idle := now.Sub(s.lastSeen)
		s.mu.Unlock()
		if idle > st.ttl {
			delete(st.sessions, id)
		}
	}
}
