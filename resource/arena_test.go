package resource

import (
	"sync"
	"testing"
)

func TestIndex_RoundTrip(t *testing.T) {
	tests := []Index{
		{Slot: 0, Generation: 1},
		{Slot: 1, Generation: 1},
		{Slot: 42, Generation: 7},
		{Slot: 0xFFFFFFFF, Generation: 0xFFFFFFFF},
	}
	for _, idx := range tests {
		bits := idx.Bits()
		if bits == 0 {
			t.Fatalf("%v encoded to 0", idx)
		}
		got, ok := IndexFromBits(bits)
		if !ok {
			t.Fatalf("IndexFromBits(%#x) failed", bits)
		}
		if got != idx {
			t.Fatalf("round trip %v -> %#x -> %v", idx, bits, got)
		}
	}
}

func TestIndex_ZeroGenerationInvalid(t *testing.T) {
	if _, ok := IndexFromBits(0); ok {
		t.Fatal("bits 0 must not decode")
	}
	if _, ok := IndexFromBits(5); ok {
		t.Fatal("generation 0 must not decode")
	}
}

func TestArena_Basic(t *testing.T) {
	a := NewArena[string]()

	idx := a.Insert("main")
	if idx.Generation == 0 {
		t.Fatal("expected non-zero generation")
	}

	v, ok := a.Get(idx)
	if !ok || v != "main" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	v, ok = a.Lookup(idx.Bits())
	if !ok || v != "main" {
		t.Fatalf("Lookup = %q, %v", v, ok)
	}

	v, ok = a.Remove(idx)
	if !ok || v != "main" {
		t.Fatalf("Remove = %q, %v", v, ok)
	}
	if _, ok := a.Get(idx); ok {
		t.Fatal("Get should fail after Remove")
	}
	if _, ok := a.Remove(idx); ok {
		t.Fatal("double Remove should fail")
	}
}

func TestArena_StaleGeneration(t *testing.T) {
	a := NewArena[int]()

	old := a.Insert(1)
	a.Remove(old)
	fresh := a.Insert(2)

	if fresh.Slot != old.Slot {
		t.Fatalf("expected slot reuse, got %v and %v", old, fresh)
	}
	if fresh.Generation == old.Generation {
		t.Fatal("reused slot must carry a new generation")
	}
	if _, ok := a.Get(old); ok {
		t.Fatal("stale index resolved")
	}
	if _, ok := a.Lookup(old.Bits()); ok {
		t.Fatal("stale handle resolved")
	}
	if v, ok := a.Get(fresh); !ok || v != 2 {
		t.Fatalf("fresh index = %d, %v", v, ok)
	}
}

func TestArena_InvalidIndex(t *testing.T) {
	a := NewArena[int]()
	a.Insert(1)

	if _, ok := a.Get(Index{Slot: 99, Generation: 1}); ok {
		t.Fatal("out of range slot resolved")
	}
	if _, ok := a.Get(Index{Slot: 0, Generation: 2}); ok {
		t.Fatal("future generation resolved")
	}
	if _, ok := a.Lookup(0); ok {
		t.Fatal("null handle resolved")
	}
}

func TestArena_LenAndEach(t *testing.T) {
	a := NewArena[string]()
	i1 := a.Insert("a")
	a.Insert("b")
	a.Insert("c")

	if a.Len() != 3 {
		t.Fatalf("Len = %d, want 3", a.Len())
	}
	a.Remove(i1)
	if a.Len() != 2 {
		t.Fatalf("Len = %d, want 2", a.Len())
	}

	seen := map[string]bool{}
	a.Each(func(idx Index, v string) bool {
		got, ok := a.slots[idx.Slot].value, a.slots[idx.Slot].occupied
		if !ok || got != v {
			t.Errorf("Each yielded %v=%q not matching slot", idx, v)
		}
		seen[v] = true
		return true
	})
	if len(seen) != 2 || seen["a"] {
		t.Fatalf("Each visited %v", seen)
	}

	count := 0
	a.Each(func(Index, string) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("early termination visited %d", count)
	}
}

func TestArena_Concurrent(t *testing.T) {
	a := NewArena[int]()
	var wg sync.WaitGroup

	idxs := make([]Index, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			idx := a.Insert(id)
			if v, ok := a.Get(idx); !ok || v != id {
				t.Errorf("Get(%v) = %d, %v", idx, v, ok)
			}
			idxs[id] = idx
		}(i)
	}
	wg.Wait()

	seen := make(map[Index]bool)
	for _, idx := range idxs {
		if seen[idx] {
			t.Fatalf("index %v issued twice", idx)
		}
		seen[idx] = true
	}
	if a.Len() != 100 {
		t.Fatalf("Len = %d, want 100", a.Len())
	}
}
