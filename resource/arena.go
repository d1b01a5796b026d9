package resource

import (
	"math"
	"sync"
)

// Arena is a generational slot allocator.
// Thread-safe.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
	mu    sync.RWMutex
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{
		slots: make([]slot[T], 0, 16),
	}
}

// Insert stores value in a free slot and returns its index.
func (a *Arena[T]) Insert(value T) Index {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		s := a.free[n-1]
		a.free = a.free[:n-1]
		sl := &a.slots[s]
		sl.value = value
		sl.occupied = true
		a.count++
		return Index{Slot: s, Generation: sl.generation}
	}

	if len(a.slots) == math.MaxUint32 {
		panic("resource: arena slot space exhausted")
	}
	a.slots = append(a.slots, slot[T]{value: value, generation: 1, occupied: true})
	a.count++
	return Index{Slot: uint32(len(a.slots) - 1), Generation: 1}
}

// Get returns the value at idx if the slot is occupied by the same generation.
func (a *Arena[T]) Get(idx Index) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var zero T
	if int(idx.Slot) >= len(a.slots) {
		return zero, false
	}
	sl := &a.slots[idx.Slot]
	if !sl.occupied || sl.generation != idx.Generation {
		return zero, false
	}
	return sl.value, true
}

// Lookup decodes a handle value and returns the value it refers to.
func (a *Arena[T]) Lookup(bits uint64) (T, bool) {
	idx, ok := IndexFromBits(bits)
	if !ok {
		var zero T
		return zero, false
	}
	return a.Get(idx)
}

// Remove frees the slot at idx and returns its value.
// The slot's generation is bumped, so idx never resolves again.
func (a *Arena[T]) Remove(idx Index) (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var zero T
	if int(idx.Slot) >= len(a.slots) {
		return zero, false
	}
	sl := &a.slots[idx.Slot]
	if !sl.occupied || sl.generation != idx.Generation {
		return zero, false
	}

	value := sl.value
	sl.value = zero
	sl.occupied = false
	sl.generation++
	if sl.generation == 0 {
		sl.generation = 1
	}
	a.free = append(a.free, idx.Slot)
	a.count--
	return value, true
}

// Len returns the number of occupied slots.
func (a *Arena[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.count
}

// Each calls fn for every occupied slot until fn returns false.
// fn must not call back into the arena.
func (a *Arena[T]) Each(fn func(Index, T) bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := range a.slots {
		sl := &a.slots[i]
		if !sl.occupied {
			continue
		}
		if !fn(Index{Slot: uint32(i), Generation: sl.generation}, sl.value) {
			return
		}
	}
}
