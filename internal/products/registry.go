package product

import (
	"context"
	"sync"
	"time"
)

// Registry keeps browse sessions in memory and forgets idle ones.
type Registry struct {
	pageSize int
	sorter   Sorter
	idleTTL  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(pageSize int, sorter Sorter, idleTTL time.Duration) *Registry {
	return &Registry{
		pageSize: pageSize,
		sorter:   sorter,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// Session returns the browse session for id, creating it on first use.
func (r *Registry) Session(id string) *Session {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if !ok {
		sess = NewSession(r.pageSize, r.sorter)
		r.sessions[id] = sess
	}
	sess.touch(r.now())
	r.mu.Unlock()
	return sess
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, sess := range r.sessions {
		if sess.idleSince(now) > r.idleTTL {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
