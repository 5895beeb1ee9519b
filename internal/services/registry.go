package services

import (
	"sync"
	"time"
)

// Registry lazily builds one value per key and drops values that have not
// been used for longer than the idle timeout
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*registryEntry[T]
	idle    time.Duration
	build   func(key string) (T, error)
	onEvict func(key string, value T)
	now     func() time.Time
}

type registryEntry[T any] struct {
	value    T
	lastSeen time.Time
}

// NewRegistry creates a registry. idle <= 0 disables eviction.
func NewRegistry[T any](idle time.Duration, build func(key string) (T, error), onEvict func(key string, value T)) *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]*registryEntry[T]),
		idle:    idle,
		build:   build,
		onEvict: onEvict,
		now:     time.Now,
	}
}

// Get returns the value for key, building it on first use
func (r *Registry[T]) Get(key string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[key]; ok {
		e.lastSeen = r.now()
		return e.value, nil
	}

	value, err := r.build(key)
	if err != nil {
		var zero T
		return zero, err
	}
	r.entries[key] = &registryEntry[T]{value: value, lastSeen: r.now()}
	return value, nil
}

// Remove drops key without calling the eviction hook
func (r *Registry[T]) Remove(key string) {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
}

// Len returns the number of live values
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// EvictIdle drops values idle for longer than the timeout and returns how
// many were dropped
func (r *Registry[T]) EvictIdle() int {
	if r.idle <= 0 {
		return 0
	}

	r.mu.Lock()
	cutoff := r.now().Add(-r.idle)
	evicted := make(map[string]T)
	for key, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			evicted[key] = e.value
			delete(r.entries, key)
		}
	}
	r.mu.Unlock()

	if r.onEvict != nil {
		for key, value := range evicted {
			r.onEvict(key, value)
		}
	}
	return len(evicted)
}
