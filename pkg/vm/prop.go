package vm

import (
	"github.com/rivo/uniseg"

	"phonscript/pkg/errors"
)

// GetProperty looks name up on obj and then along its prototype chain.
// A missing property yields Undefined. Chains longer than the configured
// maximum raise a runtime error, which also stops a cycle introduced by
// host code.
func (rt *Runtime) GetProperty(obj *Object, name string) (Value, error) {
	limit := rt.config.MaxPrototypeDepth
	for depth := 0; obj != nil; depth++ {
		if depth > limit {
			return Undefined, rt.Raise(errors.KindRuntime, "prototype chain too deep")
		}
		if v, ok := obj.GetOwn(name); ok {
			return v, nil
		}
		if v, ok := obj.virtualField(name); ok {
			return v, nil
		}
		obj = obj.prototype
	}
	return Undefined, nil
}

// virtualField serves read-only fields computed from the payload. String
// length counts grapheme clusters, the unit used by string indexing.
func (o *Object) virtualField(name string) (Value, bool) {
	if name == "length" {
		switch o.kind {
		case KindArray:
			return IntegerValue(len(o.elements)), true
		case KindString:
			return IntegerValue(uniseg.GraphemeClusterCount(o.str)), true
		}
	}
	return Undefined, false
}

// PutProperty writes name into obj's own table, never into a prototype.
// Writing a read-only own property raises a type error.
func (rt *Runtime) PutProperty(obj *Object, name string, v Value) error {
	if !obj.SetOwn(name, v) {
		return rt.RaiseTypeError("field '%s' is read-only", name)
	}
	return nil
}

// HasProperty reports whether name is found on obj or its prototypes.
func (rt *Runtime) HasProperty(obj *Object, name string) (bool, error) {
	limit := rt.config.MaxPrototypeDepth
	for depth := 0; obj != nil; depth++ {
		if depth > limit {
			return false, rt.Raise(errors.KindRuntime, "prototype chain too deep")
		}
		if obj.HasOwn(name) {
			return true, nil
		}
		if _, ok := obj.virtualField(name); ok {
			return true, nil
		}
		obj = obj.prototype
	}
	return false, nil
}

// Enumerate returns the enumerable field names of obj and its prototypes,
// own fields first in insertion order. A name found nearer to obj shadows
// the same name further up the chain even when the nearer one is hidden.
func (rt *Runtime) Enumerate(obj *Object) ([]string, error) {
	var keys []string
	seen := make(map[string]bool)
	limit := rt.config.MaxPrototypeDepth
	for depth := 0; obj != nil; depth++ {
		if depth > limit {
			return nil, rt.Raise(errors.KindRuntime, "prototype chain too deep")
		}
		for _, f := range obj.fields {
			if seen[f.name] {
				continue
			}
			seen[f.name] = true
			if f.flags.Enumerable() {
				keys = append(keys, f.name)
			}
		}
		obj = obj.prototype
	}
	return keys, nil
}

// GetValue reads a field from any value. Primitives are looked up on their
// type's meta-object without allocating a wrapper; undefined and null raise.
func (rt *Runtime) GetValue(v Value, name string) (Value, error) {
	switch v.typ {
	case TypeObject:
		return rt.GetProperty(v.obj, name)
	case TypeString:
		if name == "length" {
			return IntegerValue(uniseg.GraphemeClusterCount(v.str)), nil
		}
		return rt.GetProperty(rt.registry.Meta(KindString), name)
	case TypeNumber:
		return rt.GetProperty(rt.registry.Meta(KindNumber), name)
	case TypeBoolean:
		return rt.GetProperty(rt.registry.Meta(KindBoolean), name)
	}
	return Undefined, rt.RaiseTypeError("cannot read field '%s' of %s", name, v.ToString())
}

// PutValue writes a field on an object value. Writes to primitives are
// ignored; undefined and null raise.
func (rt *Runtime) PutValue(v Value, name string, val Value) error {
	switch v.typ {
	case TypeObject:
		return rt.PutProperty(v.obj, name, val)
	case TypeUndefined, TypeNull:
		return rt.RaiseTypeError("cannot set field '%s' of %s", name, v.ToString())
	}
	return nil
}

// --- Stack-slot field access ---

// GetField pushes the value of field name of the value at idx.
func (rt *Runtime) GetField(idx int, name string) error {
	v, err := rt.GetValue(rt.Get(idx), name)
	if err != nil {
		return err
	}
	rt.Push(v)
	return nil
}

// SetField pops the top value and stores it as field name of the value at
// idx. idx is resolved before the pop.
func (rt *Runtime) SetField(idx int, name string) error {
	target := rt.Get(idx)
	v := rt.Top()
	rt.Pop(1)
	return rt.PutValue(target, name, v)
}

// DefField pops the top value and defines it with explicit flags on the
// object at idx.
func (rt *Runtime) DefField(idx int, name string, flags PropertyFlags) error {
	target := rt.Get(idx)
	v := rt.Top()
	rt.Pop(1)
	if !target.IsObject() {
		return rt.RaiseTypeError("cannot define field '%s' on %s", name, target.TypeName())
	}
	target.obj.DefineOwn(name, v, flags)
	return nil
}

// HasField reports whether the object at idx has field name, own or
// inherited. Non-objects have no fields.
func (rt *Runtime) HasField(idx int, name string) (bool, error) {
	v := rt.Get(idx)
	if !v.IsObject() {
		return false, nil
	}
	return rt.HasProperty(v.obj, name)
}

// DelField deletes an own field of the object at idx. Non-configurable
// fields are kept and false is returned.
func (rt *Runtime) DelField(idx int, name string) bool {
	v := rt.Get(idx)
	if !v.IsObject() {
		return false
	}
	return v.obj.DeleteOwn(name)
}

// --- Globals ---

// GetGlobal pushes the global name. An undefined global raises a
// reference error.
func (rt *Runtime) GetGlobal(name string) error {
	v, ok := rt.global.GetOwn(name)
	if !ok {
		return rt.Raise(errors.KindReference, "'%s' is not defined", name)
	}
	rt.Push(v)
	return nil
}

// SetGlobal pops the top value into the global name.
func (rt *Runtime) SetGlobal(name string) error {
	v := rt.Top()
	rt.Pop(1)
	return rt.PutProperty(rt.global, name, v)
}

// DefGlobal pops the top value and defines it as a global with flags.
func (rt *Runtime) DefGlobal(name string, flags PropertyFlags) {
	v := rt.Top()
	rt.Pop(1)
	rt.global.DefineOwn(name, v, flags)
}

// LookupGlobal returns the global name without touching the stack.
func (rt *Runtime) LookupGlobal(name string) (Value, bool) {
	return rt.global.GetOwn(name)
}
