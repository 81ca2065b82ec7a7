package builtins

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

type ArrayInitializer struct{}

func (a *ArrayInitializer) Name() string {
	return "Array"
}

func (a *ArrayInitializer) Priority() int {
	return PriorityArray // after Object and Function
}

func (a *ArrayInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	meta := rt.Meta(vm.KindArray)

	rt.RegisterMethod(meta, "Array.meta.to_string", arrayToString, 0)
	rt.RegisterMethod(meta, "Array.meta.get", arrayGet, 1)
	rt.RegisterMethod(meta, "Array.meta.set", arraySet, 2)
	rt.RegisterMethod(meta, "Array.meta.append", arrayAppend, 1)
	rt.RegisterMethod(meta, "Array.meta.pop", arrayPop, 0)
	rt.RegisterMethod(meta, "Array.meta.join", arrayJoin, 1)
	rt.RegisterMethod(meta, "Array.meta.is_empty", arrayIsEmpty, 0)
	rt.RegisterMethod(meta, "Array.meta.contains", arrayContains, 1)
	rt.RegisterMethod(meta, "Array.meta.find", arrayFind, 1)
	rt.RegisterMethod(meta, "Array.meta.reverse", arrayReverse, 0)
	rt.RegisterMethod(meta, "Array.meta.slice", arraySlice, 2)
	rt.RegisterMethod(meta, "Array.meta.first", arrayFirst, 0)
	rt.RegisterMethod(meta, "Array.meta.last", arrayLast, 0)
	rt.RegisterMethod(meta, "Array.meta.prepend", arrayPrepend, 1)
	rt.RegisterMethod(meta, "Array.meta.shift", arrayShift, 0)
	rt.RegisterMethod(meta, "Array.meta.insert", arrayInsert, 2)
	rt.RegisterMethod(meta, "Array.meta.remove_at", arrayRemoveAt, 1)
	rt.RegisterMethod(meta, "Array.meta.sort", arraySort, 1)

	ctor := rt.RegisterConstructor(rt.Global(), "Array", newArray, newArray, 0, meta, vm.DontEnum)
	rt.RegisterMethod(ctor, "Array.is_array", arrayIsArray, 1)
	return nil
}

// Array(a1, ..., an) and new Array(a1, ..., an) both build [a1, ..., an].
func newArray(rt *vm.Runtime) error {
	return rt.Return(vm.ObjectValue(rt.NewArray(rt.Args()...)))
}

func arrayIsArray(rt *vm.Runtime) error {
	return rt.Return(vm.BooleanValue(rt.Arg(1).IsKind(vm.KindArray)))
}

func thisArray(rt *vm.Runtime) (*vm.Object, error) {
	return rt.ThisAs(vm.KindArray)
}

// joinElements converts every element with the script-visible to_string.
func joinElements(rt *vm.Runtime, arr *vm.Object, sep string) (string, error) {
	elems := arr.Elements()
	parts := make([]string, len(elems))
	for i, el := range elems {
		if el.IsObject() && el.AsObject() == arr {
			parts[i] = "[...]"
			continue
		}
		s, err := rt.ToString(el)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, sep), nil
}

func arrayToString(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	s, err := joinElements(rt, arr, ", ")
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString("[" + s + "]"))
}

func arrayGet(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	i, err := rt.ArgToInteger(1)
	if err != nil {
		return err
	}
	elems := arr.Elements()
	pos, err := resolveIndex(rt, i, len(elems))
	if err != nil {
		return err
	}
	return rt.Return(elems[pos])
}

func arraySet(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	i, err := rt.ArgToInteger(1)
	if err != nil {
		return err
	}
	elems := arr.Elements()
	pos, err := resolveIndex(rt, i, len(elems))
	if err != nil {
		return err
	}
	elems[pos] = rt.Arg(2)
	return nil
}

// a.append(v1, ..., vn) appends in order and returns the array.
func arrayAppend(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	arr.SetElements(append(arr.Elements(), rt.Args()...))
	return rt.Return(vm.ObjectValue(arr))
}

func arrayPop(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	elems := arr.Elements()
	if len(elems) == 0 {
		return rt.Raise(errors.KindIndex, "cannot pop from an empty array")
	}
	last := elems[len(elems)-1]
	elems[len(elems)-1] = vm.Undefined
	arr.SetElements(elems[:len(elems)-1])
	return rt.Return(last)
}

// a.join(sep) concatenates the elements, separated by "," by default.
func arrayJoin(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	sep := ","
	if rt.ArgIsDefined(1) {
		if sep, err = rt.ArgToString(1); err != nil {
			return err
		}
	}
	s, err := joinElements(rt, arr, sep)
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(s))
}

func arrayIsEmpty(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.BooleanValue(len(arr.Elements()) == 0))
}

// indexOf returns the 0-based position of the first strictly equal element.
func indexOf(elems []vm.Value, v vm.Value) int {
	for i, el := range elems {
		if vm.StrictEquals(el, v) {
			return i
		}
	}
	return -1
}

func arrayContains(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.BooleanValue(indexOf(arr.Elements(), rt.Arg(1)) >= 0))
}

// a.find(v) returns the 1-based index of v, or 0.
func arrayFind(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.IntegerValue(indexOf(arr.Elements(), rt.Arg(1)) + 1))
}

// a.reverse() reverses in place and returns the array.
func arrayReverse(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	elems := arr.Elements()
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	return rt.Return(vm.ObjectValue(arr))
}

// a.slice(from, to) copies elements from..to inclusive; to defaults to the
// last element.
func arraySlice(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	elems := arr.Elements()
	from, err := rt.ArgToInteger(1)
	if err != nil {
		return err
	}
	to := -1
	if rt.ArgIsDefined(2) {
		if to, err = rt.ArgToInteger(2); err != nil {
			return err
		}
	}
	if len(elems) == 0 {
		return rt.Return(vm.ObjectValue(rt.NewArray()))
	}
	start, err := resolveIndex(rt, from, len(elems))
	if err != nil {
		return err
	}
	end, err := resolveIndex(rt, to, len(elems))
	if err != nil {
		return err
	}
	var out []vm.Value
	if start <= end {
		out = append(out, elems[start:end+1]...)
	}
	return rt.Return(vm.ObjectValue(rt.NewArray(out...)))
}

func arrayEnd(rt *vm.Runtime, last bool) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	elems := arr.Elements()
	if len(elems) == 0 {
		return rt.Raise(errors.KindIndex, "empty array")
	}
	if last {
		return rt.Return(elems[len(elems)-1])
	}
	return rt.Return(elems[0])
}

func arrayFirst(rt *vm.Runtime) error { return arrayEnd(rt, false) }
func arrayLast(rt *vm.Runtime) error  { return arrayEnd(rt, true) }

// a.prepend(v1, ..., vn) puts the values in front, in argument order, and
// returns the array.
func arrayPrepend(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	arr.SetElements(slices.Insert(arr.Elements(), 0, rt.Args()...))
	return rt.Return(vm.ObjectValue(arr))
}

func arrayShift(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	elems := arr.Elements()
	if len(elems) == 0 {
		return rt.Raise(errors.KindIndex, "cannot shift from an empty array")
	}
	first := elems[0]
	arr.SetElements(slices.Delete(elems, 0, 1))
	return rt.Return(first)
}

// a.insert(i, v) inserts v so that it ends up at index i. Index n+1 (or -1)
// appends.
func arrayInsert(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	i, err := rt.ArgToInteger(1)
	if err != nil {
		return err
	}
	elems := arr.Elements()
	pos, err := resolveIndex(rt, i, len(elems)+1)
	if err != nil {
		return err
	}
	arr.SetElements(slices.Insert(elems, pos, rt.Arg(2)))
	return rt.Return(vm.ObjectValue(arr))
}

// a.remove_at(i) removes and returns the element at index i.
func arrayRemoveAt(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	i, err := rt.ArgToInteger(1)
	if err != nil {
		return err
	}
	elems := arr.Elements()
	pos, err := resolveIndex(rt, i, len(elems))
	if err != nil {
		return err
	}
	removed := elems[pos]
	arr.SetElements(slices.Delete(elems, pos, pos+1))
	return rt.Return(removed)
}

// a.sort(cmp) sorts in place and returns the array. cmp(x, y) returns a
// negative number when x goes first; without it numbers precede booleans,
// then strings, then everything else, and null and undefined go last. The
// sort is stable. When cmp raises the array is left unchanged.
func arraySort(rt *vm.Runtime) error {
	arr, err := thisArray(rt)
	if err != nil {
		return err
	}
	order := compareValues
	if rt.ArgIsDefined(1) {
		fn, err := rt.ArgAsCallable(1)
		if err != nil {
			return err
		}
		var failed error
		order = func(a, b vm.Value) int {
			if failed != nil {
				return 0
			}
			r, err := rt.CallValue(fn, vm.Undefined, a, b)
			if err != nil {
				failed = err
				return 0
			}
			return cmp.Compare(r.ToNumber(), 0)
		}
		sorted := slices.Clone(arr.Elements())
		slices.SortStableFunc(sorted, order)
		if failed != nil {
			return failed
		}
		arr.SetElements(sorted)
		return rt.Return(vm.ObjectValue(arr))
	}
	elems := arr.Elements()
	slices.SortStableFunc(elems, order)
	arr.SetElements(elems)
	return rt.Return(vm.ObjectValue(arr))
}

// sortRank orders values of different types in the default sort.
func sortRank(v vm.Value) int {
	switch {
	case v.IsNumber():
		return 0
	case v.IsBoolean():
		return 1
	case v.IsString():
		return 2
	case v.IsObject():
		return 3
	}
	return 4
}

func compareValues(a, b vm.Value) int {
	if ra, rb := sortRank(a), sortRank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch {
	case a.IsNumber():
		x, y := a.AsNumber(), b.AsNumber()
		// NaN sorts after every other number.
		if math.IsNaN(x) || math.IsNaN(y) {
			return cmp.Compare(boolRank(math.IsNaN(x)), boolRank(math.IsNaN(y)))
		}
		return cmp.Compare(x, y)
	case a.IsBoolean():
		return cmp.Compare(boolRank(a.AsBoolean()), boolRank(b.AsBoolean()))
	case a.IsString():
		return strings.Compare(a.AsString(), b.AsString())
	case a.IsObject():
		return strings.Compare(a.ToString(), b.ToString())
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
