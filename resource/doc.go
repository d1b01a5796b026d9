// Package resource provides the handle tables used by the layer.
//
// Two kinds of handles cross the layer boundary and they live in separate
// tables so one can never be looked up in the other's space.
//
// # Registry
//
// Handles issued by the runtime below the layer (instances, sessions) are
// keys of a Registry. The registry is sharded; lookups on different keys only
// contend when the keys hash to the same shard:
//
//	sessions := resource.NewRegistry[xr.Session, *Session]()
//	sessions.Insert(handle, wrapper)
//	wrapper, ok := sessions.Get(handle)
//
// A handle that was never inserted, or was removed, is simply absent. The
// layer never dereferences a foreign handle it did not register.
//
// # Arena
//
// Handles minted by the layer (action sets, actions) come from an Arena.
// An Index packs a slot number and a generation; removing a value bumps the
// slot's generation so stale handles stop resolving even after the slot is
// reused:
//
//	sets := resource.NewArena[*ActionSet]()
//	idx := sets.Insert(set)
//	handle := xr.ActionSet(idx.Bits())
//
//	set, ok := sets.Lookup(uint64(handle))
//
// Each arena is guarded by one RWMutex: Get and Each take it shared,
// Insert and Remove take it exclusively.
package resource
