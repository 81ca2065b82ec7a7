package builtins

import (
	"strings"
	"testing"

	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

func TestErrorConstructors(t *testing.T) {
	rt := newRuntime(t)
	for _, ec := range errorConstructors {
		t.Run(ec.name, func(t *testing.T) {
			ctor := global(t, rt, ec.name)
			called, err := rt.CallValue(ctor, vm.Undefined, str("bad"))
			if err != nil {
				t.Fatal(err)
			}
			built, err := rt.New(ctor, str("bad"))
			if err != nil {
				t.Fatal(err)
			}
			for _, v := range []vm.Value{called, built} {
				if !v.IsKind(vm.KindError) {
					t.Fatalf("%s(\"bad\") = %v", ec.name, v)
				}
				name, _ := rt.GetValue(v, "name")
				if name.AsString() != ec.kind {
					t.Errorf("name = %q, want %q", name.AsString(), ec.kind)
				}
				if s := call(t, rt, v, "to_string"); s.AsString() != ec.kind+": bad" {
					t.Errorf("to_string = %q", s.AsString())
				}
				if v.AsObject().Prototype() != rt.Registry().ErrorMeta(ec.kind) {
					t.Error("error does not inherit from its kind's meta")
				}
			}
		})
	}
}

func TestErrorMetasInheritFromErrorMeta(t *testing.T) {
	rt := newRuntime(t)
	base := rt.Meta(vm.KindError)
	for _, kind := range []string{errors.KindType, errors.KindRange, errors.KindIndex} {
		if rt.Registry().ErrorMeta(kind).Prototype() != base {
			t.Errorf("%s meta does not inherit from Error.meta", kind)
		}
	}
}

func TestErrorToStringWithoutMessage(t *testing.T) {
	rt := newRuntime(t)
	v, err := rt.New(global(t, rt, "RangeError"))
	if err != nil {
		t.Fatal(err)
	}
	if s := call(t, rt, v, "to_string"); s.AsString() != errors.KindRange {
		t.Errorf("to_string = %q", s.AsString())
	}
}

func TestRaisedErrorsUseErrorMeta(t *testing.T) {
	rt := newRuntime(t)
	exc := callErr(t, rt, num(1), "to_fixed", integer(99))
	if s := call(t, rt, exc.Value(), "to_string"); !strings.HasPrefix(s.AsString(), "Range error: precision 99") {
		t.Errorf("to_string = %q", s.AsString())
	}
	trace, err := rt.GetValue(exc.Value(), "stackTrace")
	if err != nil {
		t.Fatal(err)
	}
	lines := stringsOf(t, trace)
	if len(lines) == 0 || lines[0] != "at Number.meta.to_fixed (native)" {
		t.Errorf("stackTrace = %q", lines)
	}
}

func TestErrorToStringRejectsPlainReceiver(t *testing.T) {
	rt := newRuntime(t)
	fn, err := rt.GetProperty(rt.Meta(vm.KindError), "to_string")
	if err != nil {
		t.Fatal(err)
	}
	_, err = rt.CallValue(fn, vm.ObjectValue(rt.NewPlainObject()))
	if exc := mustRaise(t, err); exc.Message() != "not an error" {
		t.Errorf("message = %q", exc.Message())
	}
}
