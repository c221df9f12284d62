package engine

import "sync"

// sessionLocks serializes transitions per session id. Requests for
// different sessions never contend; requests for the same session run
// at most one transition at a time.
type sessionLocks struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the given session id, creating it on first
// use, and returns the unlock function.
func (l *sessionLocks) acquire(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
