package builtins

import (
	"testing"

	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

func newTestArray(t *testing.T, rt *vm.Runtime, elems ...vm.Value) vm.Value {
	t.Helper()
	arr, err := rt.CallValue(global(t, rt, "Array"), vm.Undefined, elems...)
	if err != nil {
		t.Fatal(err)
	}
	return arr
}

func numbersOf(v vm.Value) []float64 {
	var out []float64
	for _, el := range v.AsObject().Elements() {
		out = append(out, el.AsNumber())
	}
	return out
}

func equalNumbers(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestArrayConstructor(t *testing.T) {
	rt := newRuntime(t)
	arr := newTestArray(t, rt, num(1), num(2), num(3))
	if got := numbersOf(arr); !equalNumbers(got, []float64{1, 2, 3}) {
		t.Errorf("Array(1, 2, 3) = %v", got)
	}
	constructed, err := rt.New(global(t, rt, "Array"), str("a"))
	if err != nil {
		t.Fatal(err)
	}
	if !constructed.IsKind(vm.KindArray) || len(constructed.AsObject().Elements()) != 1 {
		t.Errorf("new Array(\"a\") = %v", constructed)
	}
	if v := call(t, rt, global(t, rt, "Array"), "is_array", arr); v != vm.True {
		t.Errorf("is_array(array) = %v", v)
	}
	if v := call(t, rt, global(t, rt, "Array"), "is_array", str("x")); v != vm.False {
		t.Errorf("is_array(string) = %v", v)
	}
}

func TestArrayLengthIsVirtual(t *testing.T) {
	rt := newRuntime(t)
	arr := newTestArray(t, rt, num(1), num(2))
	v, err := rt.GetValue(arr, "length")
	if err != nil {
		t.Fatal(err)
	}
	if v.ToInteger() != 2 {
		t.Errorf("length = %v, want 2", v)
	}
	call(t, rt, arr, "append", num(3))
	if v, _ := rt.GetValue(arr, "length"); v.ToInteger() != 3 {
		t.Errorf("length after append = %v, want 3", v)
	}
	if arr.AsObject().HasOwn("length") {
		t.Error("length stored as an own field")
	}
}

func TestArrayAccess(t *testing.T) {
	rt := newRuntime(t)
	arr := newTestArray(t, rt, num(10), num(20), num(30))
	if v := call(t, rt, arr, "get", integer(1)); v.AsNumber() != 10 {
		t.Errorf("get(1) = %v", v)
	}
	if v := call(t, rt, arr, "get", integer(-1)); v.AsNumber() != 30 {
		t.Errorf("get(-1) = %v", v)
	}
	call(t, rt, arr, "set", integer(2), num(25))
	if v := call(t, rt, arr, "get", integer(2)); v.AsNumber() != 25 {
		t.Errorf("get(2) after set = %v", v)
	}
	for _, i := range []int{0, 4, -4} {
		if exc := callErr(t, rt, arr, "get", integer(i)); exc.Kind() != errors.KindIndex {
			t.Errorf("get(%d) kind = %q", i, exc.Kind())
		}
	}
	if exc := callErr(t, rt, arr, "set", integer(9), num(1)); exc.Kind() != errors.KindIndex {
		t.Errorf("set(9) kind = %q", exc.Kind())
	}
}

func TestArrayAppendPop(t *testing.T) {
	rt := newRuntime(t)
	arr := newTestArray(t, rt)
	if v := call(t, rt, arr, "is_empty"); v != vm.True {
		t.Errorf("is_empty = %v", v)
	}
	if res := call(t, rt, arr, "append", num(1), num(2)); res.AsObject() != arr.AsObject() {
		t.Error("append did not return the array")
	}
	if v := call(t, rt, arr, "pop"); v.AsNumber() != 2 {
		t.Errorf("pop = %v, want 2", v)
	}
	call(t, rt, arr, "pop")
	if exc := callErr(t, rt, arr, "pop"); exc.Kind() != errors.KindIndex {
		t.Errorf("pop on empty kind = %q", exc.Kind())
	}
}

func TestArrayRendering(t *testing.T) {
	rt := newRuntime(t)
	arr := newTestArray(t, rt, num(1), str("b"), vm.True)
	if v := call(t, rt, arr, "join"); v.AsString() != "1,b,true" {
		t.Errorf("join() = %q", v.AsString())
	}
	if v := call(t, rt, arr, "join", str(" - ")); v.AsString() != "1 - b - true" {
		t.Errorf("join(\" - \") = %q", v.AsString())
	}
	if v := call(t, rt, arr, "to_string"); v.AsString() != "[1, b, true]" {
		t.Errorf("to_string = %q", v.AsString())
	}

	self := newTestArray(t, rt, num(1))
	call(t, rt, self, "append", self)
	if v := call(t, rt, self, "to_string"); v.AsString() != "[1, [...]]" {
		t.Errorf("self-referencing to_string = %q", v.AsString())
	}
}

func TestArraySearch(t *testing.T) {
	rt := newRuntime(t)
	arr := newTestArray(t, rt, num(1), str("1"), num(3))
	if v := call(t, rt, arr, "contains", str("1")); v != vm.True {
		t.Errorf("contains(\"1\") = %v", v)
	}
	if v := call(t, rt, arr, "contains", num(2)); v != vm.False {
		t.Errorf("contains(2) = %v", v)
	}
	if v := call(t, rt, arr, "find", num(3)); v.ToInteger() != 3 {
		t.Errorf("find(3) = %v", v)
	}
	if v := call(t, rt, arr, "find", num(9)); v.ToInteger() != 0 {
		t.Errorf("find(9) = %v", v)
	}
}

func TestArrayReverseSlice(t *testing.T) {
	rt := newRuntime(t)
	arr := newTestArray(t, rt, num(1), num(2), num(3), num(4))
	tests := []struct {
		args []vm.Value
		want []float64
	}{
		{[]vm.Value{integer(2)}, []float64{2, 3, 4}},
		{[]vm.Value{integer(1), integer(2)}, []float64{1, 2}},
		{[]vm.Value{integer(-2), integer(-1)}, []float64{3, 4}},
		{[]vm.Value{integer(3), integer(2)}, nil},
	}
	for _, tt := range tests {
		got := numbersOf(call(t, rt, arr, "slice", tt.args...))
		if !equalNumbers(got, tt.want) {
			t.Errorf("slice%v = %v, want %v", tt.args, got, tt.want)
		}
	}
	call(t, rt, arr, "reverse")
	if got := numbersOf(arr); !equalNumbers(got, []float64{4, 3, 2, 1}) {
		t.Errorf("reverse = %v", got)
	}
}

func TestArrayMethodsRejectForeignReceiver(t *testing.T) {
	rt := newRuntime(t)
	fn, err := rt.GetProperty(rt.Meta(vm.KindArray), "append")
	if err != nil {
		t.Fatal(err)
	}
	_, err = rt.CallValue(fn, str("abc"), num(1))
	exc := mustRaise(t, err)
	if exc.Kind() != errors.KindType || exc.Message() != "not an array" {
		t.Errorf("[%s] %s", exc.Kind(), exc.Message())
	}
}

func TestArrayEnds(t *testing.T) {
	rt := newRuntime(t)
	arr := newTestArray(t, rt, num(1), num(2), num(3))
	if v := call(t, rt, arr, "first"); v.AsNumber() != 1 {
		t.Errorf("first = %v", v)
	}
	if v := call(t, rt, arr, "last"); v.AsNumber() != 3 {
		t.Errorf("last = %v", v)
	}
	call(t, rt, arr, "prepend", num(-1), num(0))
	if got := numbersOf(arr); !equalNumbers(got, []float64{-1, 0, 1, 2, 3}) {
		t.Errorf("prepend = %v", got)
	}
	if v := call(t, rt, arr, "shift"); v.AsNumber() != -1 {
		t.Errorf("shift = %v", v)
	}
	if got := numbersOf(arr); !equalNumbers(got, []float64{0, 1, 2, 3}) {
		t.Errorf("after shift = %v", got)
	}

	empty := newTestArray(t, rt)
	for _, method := range []string{"first", "last", "shift"} {
		if exc := callErr(t, rt, empty, method); exc.Kind() != errors.KindIndex {
			t.Errorf("%s on empty kind = %q", method, exc.Kind())
		}
	}
}

func TestArrayInsertRemoveAt(t *testing.T) {
	tests := []struct {
		method string
		args   []vm.Value
		want   []float64
	}{
		{"insert", []vm.Value{integer(1), num(0)}, []float64{0, 1, 2, 3}},
		{"insert", []vm.Value{integer(2), num(9)}, []float64{1, 9, 2, 3}},
		{"insert", []vm.Value{integer(4), num(4)}, []float64{1, 2, 3, 4}},
		{"insert", []vm.Value{integer(-1), num(4)}, []float64{1, 2, 3, 4}},
		{"remove_at", []vm.Value{integer(1)}, []float64{2, 3}},
		{"remove_at", []vm.Value{integer(-1)}, []float64{1, 2}},
		{"remove_at", []vm.Value{integer(2)}, []float64{1, 3}},
	}
	for _, tt := range tests {
		rt := newRuntime(t)
		arr := newTestArray(t, rt, num(1), num(2), num(3))
		call(t, rt, arr, tt.method, tt.args...)
		if got := numbersOf(arr); !equalNumbers(got, tt.want) {
			t.Errorf("%s%v = %v, want %v", tt.method, tt.args, got, tt.want)
		}
	}

	rt := newRuntime(t)
	arr := newTestArray(t, rt, str("a"), str("b"))
	if v := call(t, rt, arr, "remove_at", integer(2)); v.AsString() != "b" {
		t.Errorf("remove_at returned %v", v)
	}
	for _, tc := range []struct {
		method string
		args   []vm.Value
	}{
		{"insert", []vm.Value{integer(0), num(1)}},
		{"insert", []vm.Value{integer(3), num(1)}},
		{"remove_at", []vm.Value{integer(0)}},
		{"remove_at", []vm.Value{integer(2)}},
	} {
		if exc := callErr(t, rt, arr, tc.method, tc.args...); exc.Kind() != errors.KindIndex {
			t.Errorf("%s%v kind = %q", tc.method, tc.args, exc.Kind())
		}
	}
}

func TestArraySort(t *testing.T) {
	rt := newRuntime(t)
	arr := newTestArray(t, rt, str("b"), num(10), vm.Null, num(2), vm.True, str("a"), vm.NaN, num(-1))
	if res := call(t, rt, arr, "sort"); res.AsObject() != arr.AsObject() {
		t.Error("sort did not return the array")
	}
	var got []string
	for _, el := range arr.AsObject().Elements() {
		got = append(got, el.ToString())
	}
	if want := []string{"-1", "2", "10", "NaN", "true", "a", "b", "null"}; !equalStrings(got, want) {
		t.Errorf("sort = %q, want %q", got, want)
	}

	desc := rt.NewNativeFunction("desc", func(rt *vm.Runtime) error {
		return rt.Return(vm.NumberValue(rt.Arg(2).AsNumber() - rt.Arg(1).AsNumber()))
	}, 2)
	nums := newTestArray(t, rt, num(3), num(1), num(2))
	call(t, rt, nums, "sort", vm.ObjectValue(desc))
	if got := numbersOf(nums); !equalNumbers(got, []float64{3, 2, 1}) {
		t.Errorf("sort(desc) = %v", got)
	}

	failing := rt.NewNativeFunction("failing", func(rt *vm.Runtime) error {
		return rt.Raise(errors.KindRange, "no order")
	}, 2)
	nums = newTestArray(t, rt, num(3), num(1), num(2))
	if exc := callErr(t, rt, nums, "sort", vm.ObjectValue(failing)); exc.Kind() != errors.KindRange {
		t.Errorf("failing comparator kind = %q", exc.Kind())
	}
	if got := numbersOf(nums); !equalNumbers(got, []float64{3, 1, 2}) {
		t.Errorf("array changed by a failed sort: %v", got)
	}
	if exc := callErr(t, rt, nums, "sort", num(1)); exc.Kind() != errors.KindType {
		t.Errorf("sort(1) kind = %q", exc.Kind())
	}
}
