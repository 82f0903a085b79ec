// Package workspace holds the per-user state of the portal between
// requests: open forms, current page, filters, expanded categories.
package workspace

import (
	"log/slog"
	"sync"
	"time"

	"marketplace-portal/model"
)

type entry[V any] struct {
	value    V
	lastSeen time.Time
}

// Registry lazily creates one V per signed-in user and forgets users that
// stay idle.
type Registry[V any] struct {
	name   string
	create func(model.Session) V

	mu      sync.Mutex
	entries map[string]*entry[V]
	now     func() time.Time
}

func NewRegistry[V any](name string, create func(model.Session) V) *Registry[V] {
	return &Registry[V]{
		name:    name,
		create:  create,
		entries: map[string]*entry[V]{},
		now:     time.Now,
	}
}

// Key identifies a user across requests. The role is part of it so a user
// switching accounts never inherits the other account's state.
func Key(s model.Session) string {
	return s.Role + ":" + s.UserInfo.ID.String()
}

// Get returns the user's value, creating it on first use.
func (r *Registry[V]) Get(s model.Session) V {
	k := Key(s)
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[k]
	if !ok {
		e = &entry[V]{value: r.create(s)}
		r.entries[k] = e
	}
	e.lastSeen = r.now()
	return e.value
}

// Drop forgets the user's value, e.g. on logout.
func (r *Registry[V]) Drop(s model.Session) {
	r.mu.Lock()
	delete(r.entries, Key(s))
	r.mu.Unlock()
}

// Sweep removes entries not used for maxIdle and returns how many went.
func (r *Registry[V]) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for k, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, k)
			n++
		}
	}
	if n > 0 {
		slog.Info("swept idle workspaces", "registry", r.name, "removed", n, "remaining", len(r.entries))
	}
	return n
}

func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweeper is anything whose idle state can be swept.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}
