package builtins

import (
	"testing"

	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

func TestObjectInitializer(t *testing.T) {
	var initializer BuiltinInitializer = &ObjectInitializer{}

	if initializer.Name() != "Object" {
		t.Errorf("Expected name 'Object', got %s", initializer.Name())
	}

	if initializer.Priority() != PriorityObject {
		t.Errorf("Expected priority %d, got %d", PriorityObject, initializer.Priority())
	}
}

func TestObjectInitRuntime(t *testing.T) {
	rt := vm.NewRuntime()
	ctx := &RuntimeContext{Runtime: rt}
	if err := (&ObjectInitializer{}).InitRuntime(ctx); err != nil {
		t.Fatalf("InitRuntime failed: %v", err)
	}

	ctor, ok := rt.LookupGlobal("Object")
	if !ok || !ctor.IsCallable() {
		t.Fatal("Object constructor not installed")
	}
	for _, name := range []string{"get_prototype_of", "get_own_field_names", "create"} {
		if v, _ := ctor.AsObject().GetOwn(name); !v.IsCallable() {
			t.Errorf("Object.%s missing", name)
		}
	}
	meta := rt.Meta(vm.KindPlain)
	for _, name := range []string{"to_string", "to_value", "has_field", "is_prototype_of", "field_is_enumerable", "keys", "values", "is_empty"} {
		f, ok := meta.GetOwnField(name)
		if !ok {
			t.Errorf("Object.meta.%s missing", name)
			continue
		}
		if f.Flags().Enumerable() {
			t.Errorf("Object.meta.%s is enumerable", name)
		}
	}
}

func TestObjectConstructor(t *testing.T) {
	rt := newRuntime(t)
	ctor := global(t, rt, "Object")

	empty, err := rt.CallValue(ctor, vm.Undefined)
	if err != nil {
		t.Fatal(err)
	}
	if !empty.IsKind(vm.KindPlain) || empty.AsObject().Prototype() != rt.Meta(vm.KindPlain) {
		t.Errorf("Object() = %v", empty)
	}

	wrapped, err := rt.New(ctor, num(3))
	if err != nil {
		t.Fatal(err)
	}
	if !wrapped.IsKind(vm.KindNumber) {
		t.Errorf("new Object(3) = %v, want a Number wrapper", wrapped)
	}

	same, err := rt.CallValue(ctor, vm.Undefined, empty)
	if err != nil {
		t.Fatal(err)
	}
	if same.AsObject() != empty.AsObject() {
		t.Error("Object(obj) did not return obj")
	}
}

func TestObjectToString(t *testing.T) {
	rt := newRuntime(t)
	fn, err := rt.GetProperty(rt.Meta(vm.KindPlain), "to_string")
	if err != nil {
		t.Fatal(err)
	}
	arr := vm.ObjectValue(rt.NewArray())
	for _, tc := range []struct {
		this vm.Value
		want string
	}{
		{vm.ObjectValue(rt.NewPlainObject()), "[object Object]"},
		{arr, "[object Array]"},
		{vm.Undefined, "[object Undefined]"},
		{vm.Null, "[object Null]"},
		{num(1), "[object Number]"},
	} {
		got, err := rt.CallValue(fn, tc.this)
		if err != nil {
			t.Fatal(err)
		}
		if got.AsString() != tc.want {
			t.Errorf("to_string(%v) = %q, want %q", tc.this, got.AsString(), tc.want)
		}
	}
}

func TestObjectFields(t *testing.T) {
	rt := newRuntime(t)
	obj := rt.NewPlainObject()
	obj.SetOwn("b", num(1))
	obj.SetOwn("a", num(2))
	obj.DefineOwn("hidden", num(3), vm.DontEnum)
	v := vm.ObjectValue(obj)

	if got := stringsOf(t, call(t, rt, v, "keys")); !equalStrings(got, []string{"b", "a"}) {
		t.Errorf("keys = %q", got)
	}
	if got := numbersOf(call(t, rt, v, "values")); !equalNumbers(got, []float64{1, 2}) {
		t.Errorf("values = %v", got)
	}
	if got := call(t, rt, v, "has_field", str("hidden")); got != vm.True {
		t.Errorf("has_field(hidden) = %v", got)
	}
	if got := call(t, rt, v, "has_field", str("to_string")); got != vm.False {
		t.Errorf("has_field(to_string) = %v, inherited fields are not own", got)
	}
	if got := call(t, rt, v, "field_is_enumerable", str("hidden")); got != vm.False {
		t.Errorf("field_is_enumerable(hidden) = %v", got)
	}
	if got := call(t, rt, v, "field_is_enumerable", str("a")); got != vm.True {
		t.Errorf("field_is_enumerable(a) = %v", got)
	}
	if got := call(t, rt, v, "is_empty"); got != vm.False {
		t.Errorf("is_empty = %v", got)
	}
	names := stringsOf(t, call(t, rt, global(t, rt, "Object"), "get_own_field_names", v))
	if !equalStrings(names, []string{"b", "a", "hidden"}) {
		t.Errorf("get_own_field_names = %q", names)
	}
}

func TestObjectPrototypes(t *testing.T) {
	rt := newRuntime(t)
	ctor := global(t, rt, "Object")
	proto := vm.ObjectValue(rt.NewPlainObject())

	child := call(t, rt, ctor, "create", proto)
	if got := call(t, rt, ctor, "get_prototype_of", child); got.AsObject() != proto.AsObject() {
		t.Error("get_prototype_of(create(p)) is not p")
	}
	if got := call(t, rt, proto, "is_prototype_of", child); got != vm.True {
		t.Errorf("is_prototype_of = %v", got)
	}
	if got := call(t, rt, child, "is_prototype_of", proto); got != vm.False {
		t.Errorf("reverse is_prototype_of = %v", got)
	}

	orphan := call(t, rt, ctor, "create", vm.Null)
	if orphan.AsObject().Prototype() != nil {
		t.Error("create(null) has a prototype")
	}
	if got := call(t, rt, ctor, "get_prototype_of", orphan); !got.IsNull() {
		t.Errorf("get_prototype_of(orphan) = %v", got)
	}
	if exc := callErr(t, rt, ctor, "create", num(1)); exc.Kind() != errors.KindType {
		t.Errorf("create(1) kind = %q", exc.Kind())
	}
}
