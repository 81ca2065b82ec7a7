package vm

import "strings"

// RegisterMethod installs fn as a non-enumerable method of owner. The name
// may be qualified ("Boolean.meta.to_string"): the full name is used in
// traces and the last segment becomes the field name.
func (rt *Runtime) RegisterMethod(owner *Object, name string, fn NativeFunc, arity int) *Object {
	field := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		field = name[i+1:]
	}
	obj := rt.NewNativeFunction(name, fn, arity)
	owner.DefineOwn(field, ObjectValue(obj), DontEnum)
	return obj
}

// RegisterConstructor installs a dual-mode callable named name on owner.
// Called with `new` it runs ctor, which must allocate and push an object
// inheriting from meta; called plainly it runs call, which converts its
// argument without allocating. The constructor exposes meta as its `meta`
// field and meta points back through `constructor`. flags controls how the
// name is installed on owner.
func (rt *Runtime) RegisterConstructor(owner *Object, name string, ctor, call NativeFunc, arity int, meta *Object, flags PropertyFlags) *Object {
	obj := rt.NewNativeConstructor(name, call, ctor, arity)
	if meta != nil {
		obj.DefineOwn("meta", ObjectValue(meta), Constant)
		meta.DefineOwn("constructor", ObjectValue(obj), DontEnum)
	}
	owner.DefineOwn(name, ObjectValue(obj), flags)
	return obj
}

// RegisterGlobalFunction installs fn as a non-enumerable global.
func (rt *Runtime) RegisterGlobalFunction(name string, fn NativeFunc, arity int) *Object {
	return rt.RegisterMethod(rt.global, name, fn, arity)
}

// RegisterConstant installs a read-only, hidden, non-configurable field.
func (rt *Runtime) RegisterConstant(owner *Object, name string, v Value) {
	owner.DefineOwn(name, v, Constant)
}
