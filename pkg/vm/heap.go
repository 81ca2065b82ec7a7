package vm

import (
	"github.com/google/uuid"
)

// Heap holds the values pinned by host code. Objects are reclaimed by the
// Go collector once nothing references them; a pinned value stays reachable
// until it is released, so host code can keep script objects (callbacks,
// settings objects) across runtime entries without leaving them on the
// stack.
type Heap struct {
	pinned map[string]Value
}

func NewHeap() *Heap {
	return &Heap{pinned: make(map[string]Value)}
}

// Pin stores v under a fresh handle.
func (h *Heap) Pin(v Value) string {
	ref := uuid.NewString()
	h.pinned[ref] = v
	return ref
}

// Get returns the value pinned under ref.
func (h *Heap) Get(ref string) (Value, bool) {
	v, ok := h.pinned[ref]
	return v, ok
}

// Release drops ref. It reports whether ref was pinned.
func (h *Heap) Release(ref string) bool {
	if _, ok := h.pinned[ref]; !ok {
		return false
	}
	delete(h.pinned, ref)
	return true
}

// Size returns the number of pinned values.
func (h *Heap) Size() int { return len(h.pinned) }

// Ref pins v and returns its handle.
func (rt *Runtime) Ref(v Value) string { return rt.heap.Pin(v) }

// Deref returns the value behind a handle; unknown handles yield Undefined.
func (rt *Runtime) Deref(ref string) (Value, bool) { return rt.heap.Get(ref) }

// Unref releases a handle.
func (rt *Runtime) Unref(ref string) bool { return rt.heap.Release(ref) }

// RefCount returns the number of live handles.
func (rt *Runtime) RefCount() int { return rt.heap.Size() }
