package builtins

import (
	"phonscript/pkg/vm"
)

type BooleanInitializer struct{}

func (b *BooleanInitializer) Name() string {
	return "Boolean"
}

func (b *BooleanInitializer) Priority() int {
	return PriorityBoolean
}

func (b *BooleanInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	meta := rt.Meta(vm.KindBoolean)

	rt.RegisterMethod(meta, "Boolean.meta.to_string", booleanToString, 0)
	rt.RegisterMethod(meta, "Boolean.meta.to_value", booleanToValue, 0)

	rt.RegisterConstructor(rt.Global(), "Boolean", newBoolean, callBoolean, 1, meta, vm.DontEnum)
	return nil
}

// new Boolean(x) wraps the truth value of x.
func newBoolean(rt *vm.Runtime) error {
	obj := rt.NewBooleanObject(rt.Arg(1).ToBoolean())
	return rt.Return(vm.ObjectValue(obj))
}

// Boolean(x) converts x without allocating.
func callBoolean(rt *vm.Runtime) error {
	return rt.Return(vm.BooleanValue(rt.Arg(1).ToBoolean()))
}

func booleanToString(rt *vm.Runtime) error {
	v, err := thisPrimitive(rt, vm.KindBoolean)
	if err != nil {
		return err
	}
	if v.AsBoolean() {
		return rt.Return(vm.NewString("true"))
	}
	return rt.Return(vm.NewString("false"))
}

func booleanToValue(rt *vm.Runtime) error {
	v, err := thisPrimitive(rt, vm.KindBoolean)
	if err != nil {
		return err
	}
	return rt.Return(v)
}
