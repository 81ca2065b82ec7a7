package vm

import (
	"testing"
)

func TestHeap_PinAndRelease(t *testing.T) {
	heap := NewHeap()
	if heap.Size() != 0 {
		t.Errorf("Expected new heap size to be 0, got %d", heap.Size())
	}

	ref := heap.Pin(NewString("test"))
	if ref == "" {
		t.Fatal("Expected a non-empty handle")
	}
	value, exists := heap.Get(ref)
	if !exists {
		t.Error("Expected pinned value to exist")
	}
	if value.Type() != TypeString || value.AsString() != "test" {
		t.Errorf("Expected string 'test', got %v", value.Inspect())
	}

	if !heap.Release(ref) {
		t.Error("Expected Release to report a pinned handle")
	}
	if heap.Release(ref) {
		t.Error("Expected second Release to fail")
	}
	if _, exists := heap.Get(ref); exists {
		t.Error("Expected released handle to be gone")
	}
}

func TestHeap_DistinctHandles(t *testing.T) {
	heap := NewHeap()
	a := heap.Pin(True)
	b := heap.Pin(True)
	if a == b {
		t.Error("Expected distinct handles for separate pins")
	}
	if heap.Size() != 2 {
		t.Errorf("Expected size 2, got %d", heap.Size())
	}
}

func TestRuntimeRefs(t *testing.T) {
	rt := NewRuntime()
	callback := rt.NewNativeFunction("on_change", func(rt *Runtime) error { return rt.Return(True) }, 0)
	ref := rt.Ref(ObjectValue(callback))
	if rt.RefCount() != 1 {
		t.Errorf("RefCount = %d", rt.RefCount())
	}

	// The pinned value survives a reset of the stack and frames.
	rt.Reset()
	v, ok := rt.Deref(ref)
	if !ok || v.AsObject() != callback {
		t.Fatalf("Deref = %v, %v", v, ok)
	}
	res, err := rt.CallValue(v, Undefined)
	if err != nil || !res.StrictlyEquals(True) {
		t.Errorf("calling pinned callback = %v, %v", res, err)
	}
	if !rt.Unref(ref) || rt.RefCount() != 0 {
		t.Error("Unref failed")
	}
	if v, ok := rt.Deref(ref); ok || !v.IsUndefined() {
		t.Errorf("Deref after Unref = %v, %v", v, ok)
	}
}
