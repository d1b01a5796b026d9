package resource

import (
	"hash/maphash"
	"sync"
)

const shardCount = 32

// Registry maps foreign handles to wrappers.
// Thread-safe; keys are spread over independently locked shards.
type Registry[K comparable, V any] struct {
	seed   maphash.Seed
	shards [shardCount]shard[K, V]
}

type shard[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry[K comparable, V any]() *Registry[K, V] {
	r := &Registry[K, V]{seed: maphash.MakeSeed()}
	for i := range r.shards {
		r.shards[i].m = make(map[K]V)
	}
	return r
}

func (r *Registry[K, V]) shard(key K) *shard[K, V] {
	return &r.shards[maphash.Comparable(r.seed, key)%shardCount]
}

// Insert stores value under key, replacing any previous value.
func (r *Registry[K, V]) Insert(key K, value V) {
	s := r.shard(key)
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
}

// InsertNew stores value under key unless the key is already present.
// It reports whether the value was stored.
func (r *Registry[K, V]) InsertNew(key K, value V) bool {
	s := r.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.m[key]; exists {
		return false
	}
	s.m[key] = value
	return true
}

// Get returns the value stored under key.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	s := r.shard(key)
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok
}

// Remove deletes key and returns the value it held.
func (r *Registry[K, V]) Remove(key K) (V, bool) {
	s := r.shard(key)
	s.mu.Lock()
	v, ok := s.m[key]
	if ok {
		delete(s.m, key)
	}
	s.mu.Unlock()
	return v, ok
}

// Len returns the number of entries.
func (r *Registry[K, V]) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// Range calls fn for each entry until fn returns false.
// Each shard is copied before fn runs, so fn may call back into the registry.
func (r *Registry[K, V]) Range(fn func(K, V) bool) {
	type kv struct {
		k K
		v V
	}
	var buf []kv
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		buf = buf[:0]
		for k, v := range s.m {
			buf = append(buf, kv{k, v})
		}
		s.mu.RUnlock()

		for _, e := range buf {
			if !fn(e.k, e.v) {
				return
			}
		}
	}
}
