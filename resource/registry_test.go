package resource

import (
	"sync"
	"testing"
)

func TestRegistry_Basic(t *testing.T) {
	r := NewRegistry[uint64, string]()

	r.Insert(1, "instance")
	v, ok := r.Get(1)
	if !ok || v != "instance" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	if _, ok := r.Get(2); ok {
		t.Fatal("never inserted key resolved")
	}

	v, ok = r.Remove(1)
	if !ok || v != "instance" {
		t.Fatalf("Remove = %q, %v", v, ok)
	}
	if _, ok := r.Get(1); ok {
		t.Fatal("removed key resolved")
	}
	if _, ok := r.Remove(1); ok {
		t.Fatal("double Remove succeeded")
	}
}

func TestRegistry_InsertNew(t *testing.T) {
	r := NewRegistry[uint64, int]()

	if !r.InsertNew(5, 1) {
		t.Fatal("first InsertNew failed")
	}
	if r.InsertNew(5, 2) {
		t.Fatal("second InsertNew replaced the value")
	}
	if v, _ := r.Get(5); v != 1 {
		t.Fatalf("value = %d, want 1", v)
	}
}

func TestRegistry_LenAndRange(t *testing.T) {
	r := NewRegistry[uint64, int]()
	for i := uint64(1); i <= 50; i++ {
		r.Insert(i, int(i))
	}
	if r.Len() != 50 {
		t.Fatalf("Len = %d, want 50", r.Len())
	}

	sum := 0
	r.Range(func(k uint64, v int) bool {
		if uint64(v) != k {
			t.Errorf("key %d holds %d", k, v)
		}
		sum += v
		return true
	})
	if sum != 50*51/2 {
		t.Fatalf("sum = %d", sum)
	}

	// Range may mutate the registry.
	r.Range(func(k uint64, _ int) bool {
		r.Remove(k)
		return true
	})
	if r.Len() != 0 {
		t.Fatalf("Len after removing all = %d", r.Len())
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry[uint64, uint64]()
	var wg sync.WaitGroup

	for i := uint64(1); i <= 200; i++ {
		wg.Add(1)
		go func(k uint64) {
			defer wg.Done()
			r.Insert(k, k*2)
			if v, ok := r.Get(k); !ok || v != k*2 {
				t.Errorf("Get(%d) = %d, %v", k, v, ok)
			}
			if _, ok := r.Get(k + 10_000); ok {
				t.Errorf("absent key %d resolved", k+10_000)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 200 {
		t.Fatalf("Len = %d, want 200", r.Len())
	}
}
