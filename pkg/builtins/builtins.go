package builtins

import (
	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

// checkString coerces the receiver of a String method to a string. Null and
// undefined receivers are rejected.
func checkString(rt *vm.Runtime) (string, error) {
	this := rt.This()
	if this.IsNullish() {
		return "", rt.RaiseTypeError("string function called on null or undefined")
	}
	return rt.ToString(this)
}

// resolveIndex maps a script index onto a 0-based position in a sequence of
// length n. Indices are 1-based; negative indices count from the end, so -1
// is the last element. Zero and out-of-range indices raise an index error.
func resolveIndex(rt *vm.Runtime, i, n int) (int, error) {
	pos := i - 1
	if i < 0 {
		pos = n + i
	}
	if i == 0 || pos < 0 || pos >= n {
		return 0, rt.Raise(errors.KindIndex, "index %d out of range", i)
	}
	return pos, nil
}

func newArrayOf(rt *vm.Runtime, items []string) vm.Value {
	vals := make([]vm.Value, len(items))
	for i, s := range items {
		vals[i] = vm.NewString(s)
	}
	return vm.ObjectValue(rt.NewArray(vals...))
}

// thisPrimitive returns the payload of the receiver, which must be a
// wrapper object of the given kind or a primitive of the matching type.
func thisPrimitive(rt *vm.Runtime, kind vm.ObjectKind) (vm.Value, error) {
	obj, err := rt.ThisAs(kind)
	if err != nil {
		return vm.Undefined, err
	}
	v, _ := obj.PrimitiveValue()
	return v, nil
}
