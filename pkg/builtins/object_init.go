package builtins

import (
	"phonscript/pkg/vm"
)

// ObjectInitializer implements the Object builtin
type ObjectInitializer struct{}

func (o *ObjectInitializer) Name() string {
	return "Object"
}

func (o *ObjectInitializer) Priority() int {
	return PriorityObject // Must be first (base prototype)
}

func (o *ObjectInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	meta := rt.Meta(vm.KindPlain)

	rt.RegisterMethod(meta, "Object.meta.to_string", objectToString, 0)
	rt.RegisterMethod(meta, "Object.meta.to_value", objectToValue, 0)
	rt.RegisterMethod(meta, "Object.meta.has_field", objectHasField, 1)
	rt.RegisterMethod(meta, "Object.meta.is_prototype_of", objectIsPrototypeOf, 1)
	rt.RegisterMethod(meta, "Object.meta.field_is_enumerable", objectFieldIsEnumerable, 1)
	rt.RegisterMethod(meta, "Object.meta.keys", objectKeys, 0)
	rt.RegisterMethod(meta, "Object.meta.values", objectValues, 0)
	rt.RegisterMethod(meta, "Object.meta.is_empty", objectIsEmpty, 0)

	ctor := rt.RegisterConstructor(rt.Global(), "Object", newObject, callObject, 1, meta, vm.DontEnum)
	rt.RegisterMethod(ctor, "Object.get_prototype_of", objectGetPrototypeOf, 1)
	rt.RegisterMethod(ctor, "Object.get_own_field_names", objectGetOwnFieldNames, 1)
	rt.RegisterMethod(ctor, "Object.create", objectCreate, 1)
	return nil
}

// Object(x) converts x to an object; without an argument it allocates an
// empty one. `new Object(x)` behaves the same.
func callObject(rt *vm.Runtime) error {
	v := rt.Arg(1)
	if v.IsNullish() {
		return rt.Return(vm.ObjectValue(rt.NewPlainObject()))
	}
	obj, err := rt.ToObject(v)
	if err != nil {
		return err
	}
	return rt.Return(vm.ObjectValue(obj))
}

func newObject(rt *vm.Runtime) error { return callObject(rt) }

func objectToString(rt *vm.Runtime) error {
	this := rt.This()
	switch {
	case this.IsUndefined():
		return rt.Return(vm.NewString("[object Undefined]"))
	case this.IsNull():
		return rt.Return(vm.NewString("[object Null]"))
	}
	obj, err := rt.ToObject(this)
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString("[object " + obj.Kind().String() + "]"))
}

func objectToValue(rt *vm.Runtime) error {
	obj, err := rt.ToObject(rt.This())
	if err != nil {
		return err
	}
	return rt.Return(vm.ObjectValue(obj))
}

func objectHasField(rt *vm.Runtime) error {
	obj, err := rt.ToObject(rt.This())
	if err != nil {
		return err
	}
	name, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	return rt.Return(vm.BooleanValue(obj.HasOwn(name)))
}

func objectIsPrototypeOf(rt *vm.Runtime) error {
	v := rt.Arg(1)
	if !v.IsObject() {
		return rt.Return(vm.False)
	}
	self, err := rt.ToObject(rt.This())
	if err != nil {
		return err
	}
	limit := rt.Config().MaxPrototypeDepth
	for p, depth := v.AsObject().Prototype(), 0; p != nil && depth <= limit; p, depth = p.Prototype(), depth+1 {
		if p == self {
			return rt.Return(vm.True)
		}
	}
	return rt.Return(vm.False)
}

func objectFieldIsEnumerable(rt *vm.Runtime) error {
	obj, err := rt.ToObject(rt.This())
	if err != nil {
		return err
	}
	name, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	f, ok := obj.GetOwnField(name)
	return rt.Return(vm.BooleanValue(ok && f.Flags().Enumerable()))
}

func objectKeys(rt *vm.Runtime) error {
	obj, err := rt.ToObject(rt.This())
	if err != nil {
		return err
	}
	return rt.Return(newArrayOf(rt, obj.OwnKeys()))
}

func objectValues(rt *vm.Runtime) error {
	obj, err := rt.ToObject(rt.This())
	if err != nil {
		return err
	}
	var vals []vm.Value
	for _, f := range obj.Fields() {
		if f.Flags().Enumerable() {
			vals = append(vals, f.Value())
		}
	}
	return rt.Return(vm.ObjectValue(rt.NewArray(vals...)))
}

func objectIsEmpty(rt *vm.Runtime) error {
	obj, err := rt.ToObject(rt.This())
	if err != nil {
		return err
	}
	return rt.Return(vm.BooleanValue(len(obj.OwnKeys()) == 0))
}

func objectGetPrototypeOf(rt *vm.Runtime) error {
	obj, err := rt.ArgAsObject(1)
	if err != nil {
		return err
	}
	return rt.Return(vm.ObjectValue(obj.Prototype()))
}

func objectGetOwnFieldNames(rt *vm.Runtime) error {
	obj, err := rt.ArgAsObject(1)
	if err != nil {
		return err
	}
	return rt.Return(newArrayOf(rt, obj.AllOwnKeys()))
}

// Object.create(proto) allocates a plain object inheriting from proto, or
// from nothing when proto is null.
func objectCreate(rt *vm.Runtime) error {
	v := rt.Arg(1)
	switch {
	case v.IsNull():
		return rt.Return(vm.ObjectValue(vm.NewObject(vm.KindPlain, nil)))
	case v.IsObject():
		return rt.Return(vm.ObjectValue(vm.NewObject(vm.KindPlain, v.AsObject())))
	}
	return rt.RaiseTypeError("Object.create: prototype must be an object or null")
}
