package builtins

import (
	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

// errorConstructors maps global constructor names to the error kind they
// allocate.
var errorConstructors = []struct {
	name string
	kind string
}{
	{"Error", errors.KindError},
	{"TypeError", errors.KindType},
	{"RangeError", errors.KindRange},
	{"ReferenceError", errors.KindReference},
	{"IndexError", errors.KindIndex},
	{"RuntimeError", errors.KindRuntime},
	{"SyntaxError", errors.KindSyntax},
}

type ErrorInitializer struct{}

func (e *ErrorInitializer) Name() string {
	return "Error"
}

func (e *ErrorInitializer) Priority() int {
	return PriorityError
}

func (e *ErrorInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	base := rt.Meta(vm.KindError)
	rt.RegisterMethod(base, "Error.meta.to_string", errorToString, 0)

	for _, ec := range errorConstructors {
		meta := rt.Registry().DefineErrorMeta(ec.kind)
		ctor := errorConstructor(ec.kind)
		rt.RegisterConstructor(rt.Global(), ec.name, ctor, ctor, 1, meta, vm.DontEnum)
	}
	return nil
}

// errorConstructor returns a native that allocates an error of the given
// kind whether it is called or constructed.
func errorConstructor(kind string) vm.NativeFunc {
	return func(rt *vm.Runtime) error {
		msg := ""
		if rt.ArgIsDefined(1) {
			var err error
			if msg, err = rt.ArgToString(1); err != nil {
				return err
			}
		}
		return rt.Return(vm.ObjectValue(rt.NewError(kind, msg)))
	}
}

// e.to_string() renders "kind: message", or the kind alone when there is no
// message.
func errorToString(rt *vm.Runtime) error {
	obj, err := rt.ThisAs(vm.KindError)
	if err != nil {
		return err
	}
	name, err := rt.GetProperty(obj, "name")
	if err != nil {
		return err
	}
	msg, err := rt.GetProperty(obj, "message")
	if err != nil {
		return err
	}
	n, err := rt.ToString(name)
	if err != nil {
		return err
	}
	m, err := rt.ToString(msg)
	if err != nil {
		return err
	}
	if m == "" {
		return rt.Return(vm.NewString(n))
	}
	return rt.Return(vm.NewString(n + ": " + m))
}
