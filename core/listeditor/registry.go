package listeditor

import (
	"sync"
	"time"
)

type entry[R Record, F any] struct {
	editor   *Editor[R, F]
	lastUsed time.Time
}

// Registry keeps one Editor per key (typically user + screen) and forgets idle ones.
type Registry[R Record, F any] struct {
	cfg Config[R, F]
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	editors map[string]*entry[R, F]
}

func NewRegistry[R Record, F any](cfg Config[R, F], ttl time.Duration) *Registry[R, F] {
	return &Registry[R, F]{
		cfg:     cfg,
		ttl:     ttl,
		now:     time.Now,
		editors: make(map[string]*entry[R, F]),
	}
}

// Get returns the editor for key, creating it if needed. created reports a fresh editor;
// an editor idle for longer than the TTL is replaced by a fresh one.
func (r *Registry[R, F]) Get(key string) (ed *Editor[R, F], created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, e := range r.editors {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.editors, k)
		}
	}

	e, ok := r.editors[key]
	if !ok {
		e = &entry[R, F]{editor: New(r.cfg)}
		r.editors[key] = e
	}
	e.lastUsed = now
	return e.editor, !ok
}

// Forget drops the editor for key, e.g. on logout.
func (r *Registry[R, F]) Forget(key string) {
	r.mu.Lock()
	delete(r.editors, key)
	r.mu.Unlock()
}

func (r *Registry[R, F]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.editors)
}
