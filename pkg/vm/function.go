package vm

// NativeFunc is the signature of host-implemented functions. Arguments are
// read from the runtime stack (rt.This(), rt.Arg(1..n)); the function pushes
// exactly one result, or returns an error to raise.
type NativeFunc func(rt *Runtime) error

// NativeFunction is the payload of a KindNativeFunction object. It is
// immutable after registration.
type NativeFunction struct {
	Name  string
	Arity int
	// Call runs when the function is invoked without `new`.
	Call NativeFunc
	// Construct runs when invoked with `new`; nil means the function is not
	// a native constructor and the generic construction path is used.
	Construct NativeFunc
}

// Code is a compiled script function body. The script executor supplies
// implementations; the runtime only needs to run them with a frame set up.
type Code interface {
	Run(rt *Runtime) error
}

// CodeFunc adapts a Go function to Code.
type CodeFunc func(rt *Runtime) error

func (f CodeFunc) Run(rt *Runtime) error { return f(rt) }

// ScriptFunction is the payload of a KindFunction object (a script closure).
type ScriptFunction struct {
	Name  string
	File  string
	Line  int
	Arity int
	Body  Code
}

// NewNativeFunction allocates a callable object for fn. The object inherits
// from Function.meta.
func (rt *Runtime) NewNativeFunction(name string, fn NativeFunc, arity int) *Object {
	obj := NewObject(KindNativeFunction, rt.registry.Meta(KindNativeFunction))
	obj.native = &NativeFunction{Name: name, Arity: arity, Call: fn}
	obj.DefineOwn("length", IntegerValue(arity), Constant)
	return obj
}

// NewNativeConstructor allocates a dual-mode callable: call runs for plain
// calls (conversion), ctor for `new` (allocation).
func (rt *Runtime) NewNativeConstructor(name string, call, ctor NativeFunc, arity int) *Object {
	obj := rt.NewNativeFunction(name, call, arity)
	obj.native.Construct = ctor
	return obj
}

// NewScriptFunction wraps a compiled body into a callable object. A fresh
// meta object is attached so instances created with `new` have a prototype.
func (rt *Runtime) NewScriptFunction(fn *ScriptFunction) *Object {
	obj := NewObject(KindFunction, rt.registry.Meta(KindFunction))
	obj.script = fn
	obj.DefineOwn("length", IntegerValue(fn.Arity), Constant)
	meta := rt.NewPlainObject()
	meta.DefineOwn("constructor", ObjectValue(obj), DontEnum)
	obj.DefineOwn("meta", ObjectValue(meta), DontEnum|DontConf)
	return obj
}

// functionName returns the diagnostic name of a callable object.
func functionName(o *Object) string {
	switch o.kind {
	case KindNativeFunction:
		return o.native.Name
	case KindFunction:
		if o.script.Name == "" {
			return "<anonymous>"
		}
		return o.script.Name
	}
	return ""
}
