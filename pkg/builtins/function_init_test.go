package builtins

import (
	"testing"

	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

func TestFunctionCallApply(t *testing.T) {
	rt := newRuntime(t)
	var gotThis vm.Value
	sum := vm.ObjectValue(rt.NewNativeFunction("sum", func(rt *vm.Runtime) error {
		gotThis = rt.This()
		total := 0.0
		for _, a := range rt.Args() {
			total += a.AsNumber()
		}
		return rt.Return(vm.NumberValue(total))
	}, 0))
	receiver := str("self")

	if v := call(t, rt, sum, "call", receiver, num(1), num(2)); v.AsNumber() != 3 {
		t.Errorf("call = %v", v)
	}
	if gotThis.AsString() != "self" {
		t.Errorf("call receiver = %v", gotThis)
	}

	args := vm.ObjectValue(rt.NewArray(num(4), num(5), num(6)))
	if v := call(t, rt, sum, "apply", vm.Null, args); v.AsNumber() != 15 {
		t.Errorf("apply = %v", v)
	}
	if v := call(t, rt, sum, "apply", vm.Null); v.AsNumber() != 0 {
		t.Errorf("apply without arguments = %v", v)
	}
	if exc := callErr(t, rt, sum, "apply", vm.Null, num(1)); exc.Kind() != errors.KindType {
		t.Errorf("apply with a non-array kind = %q", exc.Kind())
	}
}

func TestFunctionToString(t *testing.T) {
	rt := newRuntime(t)
	fn := vm.ObjectValue(rt.NewNativeFunction("measure", func(rt *vm.Runtime) error { return nil }, 0))
	if v := call(t, rt, fn, "to_string"); v.AsString() != "<native function measure>" {
		t.Errorf("to_string = %q", v.AsString())
	}
}

func TestFunctionConstructorRefuses(t *testing.T) {
	rt := newRuntime(t)
	ctor := global(t, rt, "Function")
	_, err := rt.CallValue(ctor, vm.Undefined, str("return 1"))
	if exc := mustRaise(t, err); exc.Kind() != errors.KindRuntime {
		t.Errorf("Function() kind = %q", exc.Kind())
	}
	_, err = rt.New(ctor)
	if exc := mustRaise(t, err); exc.Kind() != errors.KindRuntime {
		t.Errorf("new Function() kind = %q", exc.Kind())
	}
}
