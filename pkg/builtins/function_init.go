package builtins

import (
	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

type FunctionInitializer struct{}

func (f *FunctionInitializer) Name() string {
	return "Function"
}

func (f *FunctionInitializer) Priority() int {
	return PriorityFunction
}

func (f *FunctionInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	meta := rt.Meta(vm.KindFunction)

	rt.RegisterMethod(meta, "Function.meta.to_string", functionToString, 0)
	rt.RegisterMethod(meta, "Function.meta.call", functionCall, 1)
	rt.RegisterMethod(meta, "Function.meta.apply", functionApply, 2)

	// Functions are produced by the compiler; there is no source to compile
	// at run time.
	noSource := func(rt *vm.Runtime) error {
		return rt.Raise(errors.KindRuntime, "cannot create functions at run time")
	}
	rt.RegisterConstructor(rt.Global(), "Function", noSource, noSource, 0, meta, vm.DontEnum)
	return nil
}

func functionToString(rt *vm.Runtime) error {
	fn, err := rt.ThisAs(vm.KindFunction)
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(vm.ObjectValue(fn).ToString()))
}

// f.call(this, a1, ..., an)
func functionCall(rt *vm.Runtime) error {
	fn := rt.This()
	if !fn.IsCallable() {
		return rt.RaiseTypeError("not a function")
	}
	args := rt.Args()
	res, err := rt.CallValue(fn, args[0], args[1:]...)
	if err != nil {
		return err
	}
	return rt.Return(res)
}

// f.apply(this, array)
func functionApply(rt *vm.Runtime) error {
	fn := rt.This()
	if !fn.IsCallable() {
		return rt.RaiseTypeError("not a function")
	}
	var args []vm.Value
	if rt.ArgIsDefined(2) && !rt.Arg(2).IsNull() {
		arr, err := rt.ArgAsArray(2)
		if err != nil {
			return err
		}
		args = append(args, arr.Elements()...)
	}
	res, err := rt.CallValue(fn, rt.Arg(1), args...)
	if err != nil {
		return err
	}
	return rt.Return(res)
}
