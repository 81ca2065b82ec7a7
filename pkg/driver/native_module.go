package driver

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

// ModuleBuilder provides the declarative API for exposing Go values and
// functions to scripts. A module is a read-only global object.
type ModuleBuilder struct {
	rt  *vm.Runtime
	obj *vm.Object
	err error
}

// DeclareModule builds a host module and installs it as the global name.
// The first conversion error reported by the builder is returned and the
// module is not installed.
func (r *Runtime) DeclareModule(name string, build func(*ModuleBuilder)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.modules[name] {
		return fmt.Errorf("module %q already declared", name)
	}
	if _, exists := r.rt.LookupGlobal(name); exists {
		return fmt.Errorf("module %q shadows an existing global", name)
	}
	m := &ModuleBuilder{rt: r.rt, obj: r.rt.NewPlainObject()}
	build(m)
	if m.err != nil {
		return fmt.Errorf("declaring module %q: %w", name, m.err)
	}
	r.rt.Global().DefineOwn(name, vm.ObjectValue(m.obj), vm.ReadOnly|vm.DontConf)
	r.modules[name] = true
	debugPrintf("// [Driver] module %s declared with %d fields\n", name, len(m.obj.AllOwnKeys()))
	return nil
}

// Const adds a read-only field holding the conversion of value.
func (m *ModuleBuilder) Const(name string, value interface{}) *ModuleBuilder {
	if m.err != nil {
		return m
	}
	v, err := goValueToVM(m.rt, value)
	if err != nil {
		m.err = fmt.Errorf("%s: %w", name, err)
		return m
	}
	m.obj.DefineOwn(name, v, vm.ReadOnly|vm.DontConf)
	return m
}

// Function adds a Go function. Parameters are converted from script values
// by type; a leading *vm.Runtime parameter receives the runtime. The function
// may return nothing, a value, an error, or a value and an error.
func (m *ModuleBuilder) Function(name string, fn interface{}) *ModuleBuilder {
	if m.err != nil {
		return m
	}
	v, err := goFunctionToVM(m.rt, name, fn)
	if err != nil {
		m.err = fmt.Errorf("%s: %w", name, err)
		return m
	}
	m.obj.DefineOwn(name, v, vm.ReadOnly|vm.DontConf)
	return m
}

// Native adds a function written against the native calling convention.
func (m *ModuleBuilder) Native(name string, fn vm.NativeFunc, arity int) *ModuleBuilder {
	if m.err != nil {
		return m
	}
	m.obj.DefineOwn(name, vm.ObjectValue(m.rt.NewNativeFunction(name, fn, arity)), vm.ReadOnly|vm.DontConf)
	return m
}

// Namespace adds a nested module object.
func (m *ModuleBuilder) Namespace(name string, build func(*ModuleBuilder)) *ModuleBuilder {
	if m.err != nil {
		return m
	}
	ns := &ModuleBuilder{rt: m.rt, obj: m.rt.NewPlainObject()}
	build(ns)
	if ns.err != nil {
		m.err = fmt.Errorf("%s.%w", name, ns.err)
		return m
	}
	m.obj.DefineOwn(name, vm.ObjectValue(ns.obj), vm.ReadOnly|vm.DontConf)
	return m
}

var (
	valueType   = reflect.TypeOf(vm.Value{})
	runtimeType = reflect.TypeOf((*vm.Runtime)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// goValueToVM converts a Go value into a script value. Maps become plain
// objects with their keys in sorted order and structs expose their exported
// fields under snake_case names (or the name in a `phon` tag).
func goValueToVM(rt *vm.Runtime, value interface{}) (vm.Value, error) {
	if value == nil {
		return vm.Null, nil
	}
	if v, ok := value.(vm.Value); ok {
		return v, nil
	}
	return reflectValueToVM(rt, reflect.ValueOf(value), 0)
}

// reflectValueToVM converts rv. Nesting deeper than MaxPrototypeDepth is
// refused, which also stops self-referencing pointers.
func reflectValueToVM(rt *vm.Runtime, rv reflect.Value, depth int) (vm.Value, error) {
	if !rv.IsValid() {
		return vm.Null, nil
	}
	if limit := rt.Config().MaxPrototypeDepth; depth > limit {
		return vm.Undefined, fmt.Errorf("%s nested more than %d levels deep", rv.Type(), limit)
	}
	if rv.Type() == valueType {
		return rv.Interface().(vm.Value), nil
	}
	switch rv.Kind() {
	case reflect.String:
		return vm.NewString(rv.String()), nil
	case reflect.Bool:
		return vm.BooleanValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return vm.NumberValue(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return vm.NumberValue(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return vm.NumberValue(rv.Float()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return vm.Null, nil
		}
		return reflectValueToVM(rt, rv.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return vm.Null, nil
		}
		elems := make([]vm.Value, rv.Len())
		for i := range elems {
			e, err := reflectValueToVM(rt, rv.Index(i), depth+1)
			if err != nil {
				return vm.Undefined, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = e
		}
		return vm.ObjectValue(rt.NewArray(elems...)), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return vm.Undefined, fmt.Errorf("cannot convert %s: map keys must be strings", rv.Type())
		}
		if rv.IsNil() {
			return vm.Null, nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		obj := rt.NewPlainObject()
		for _, k := range keys {
			e, err := reflectValueToVM(rt, rv.MapIndex(k), depth+1)
			if err != nil {
				return vm.Undefined, fmt.Errorf("key %q: %w", k.String(), err)
			}
			obj.SetOwn(k.String(), e)
		}
		return vm.ObjectValue(obj), nil
	case reflect.Struct:
		obj := rt.NewPlainObject()
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			name, ok := fieldName(sf)
			if !ok {
				continue
			}
			e, err := reflectValueToVM(rt, rv.Field(i), depth+1)
			if err != nil {
				return vm.Undefined, fmt.Errorf("field %s: %w", sf.Name, err)
			}
			obj.SetOwn(name, e)
		}
		return vm.ObjectValue(obj), nil
	case reflect.Func:
		return goFunctionToVM(rt, "anonymous", rv.Interface())
	}
	return vm.Undefined, fmt.Errorf("cannot convert %s", rv.Type())
}

// fieldName returns the script name of an exported struct field.
func fieldName(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() {
		return "", false
	}
	if tag, ok := sf.Tag.Lookup("phon"); ok {
		if tag == "-" {
			return "", false
		}
		return tag, true
	}
	return snakeCase(sf.Name), true
}

// snakeCase turns a Go identifier into snake_case: "MaxValue" → "max_value",
// "HTTPCode" → "http_code".
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && boundary(runes, i) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// boundary reports whether an underscore goes before the upper-case rune at i.
func boundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// vmValueToReflectValue converts a script argument to the parameter type t.
// Scalars are coerced the way the runtime coerces; composite targets require
// an object of the matching shape.
func vmValueToReflectValue(rt *vm.Runtime, v vm.Value, t reflect.Type) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(v), nil
	}
	switch t.Kind() {
	case reflect.String:
		s, err := rt.ToString(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s).Convert(t), nil
	case reflect.Bool:
		return reflect.ValueOf(v.ToBoolean()).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		f, err := rt.ToNumber(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, err := rt.ToNumber(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(vm.NumberValue(f).ToInteger()).Convert(t), nil
	case reflect.Interface:
		if t.NumMethod() != 0 {
			break
		}
		g, err := vmValueToGo(rt, v, 0)
		if err != nil {
			return reflect.Value{}, err
		}
		if g == nil {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(g), nil
	case reflect.Slice:
		if v.IsNullish() {
			return reflect.Zero(t), nil
		}
		if !v.IsKind(vm.KindArray) {
			return reflect.Value{}, rt.RaiseTypeError("expected Array, got %s", v.TypeName())
		}
		elems := v.AsObject().Elements()
		out := reflect.MakeSlice(t, len(elems), len(elems))
		for i, e := range elems {
			ev, err := vmValueToReflectValue(rt, e, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			break
		}
		if v.IsNullish() {
			return reflect.Zero(t), nil
		}
		if !v.IsObject() {
			return reflect.Value{}, rt.RaiseTypeError("expected Object, got %s", v.TypeName())
		}
		obj := v.AsObject()
		out := reflect.MakeMap(t)
		for _, k := range obj.OwnKeys() {
			fv, _ := obj.GetOwn(k)
			ev, err := vmValueToReflectValue(rt, fv, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
		}
		return out, nil
	}
	return reflect.Value{}, rt.RaiseTypeError("cannot convert %s to %s", v.TypeName(), t)
}

// vmValueToGo converts a script value to its natural Go form: nil, bool,
// float64, string, []interface{} or map[string]interface{}.
func vmValueToGo(rt *vm.Runtime, v vm.Value, depth int) (interface{}, error) {
	if depth > rt.Config().MaxPrototypeDepth {
		return nil, rt.Raise(errors.KindRuntime, "value nested too deeply")
	}
	switch {
	case v.IsNullish():
		return nil, nil
	case v.IsBoolean():
		return v.AsBoolean(), nil
	case v.IsNumber():
		return v.AsNumber(), nil
	case v.IsString():
		return v.AsString(), nil
	case v.IsKind(vm.KindArray):
		elems := v.AsObject().Elements()
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			g, err := vmValueToGo(rt, e, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case v.IsKind(vm.KindPlain):
		obj := v.AsObject()
		out := make(map[string]interface{})
		for _, k := range obj.OwnKeys() {
			fv, _ := obj.GetOwn(k)
			g, err := vmValueToGo(rt, fv, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = g
		}
		return out, nil
	}
	return v, nil
}

// goFunctionToVM wraps a Go function in a native function object.
func goFunctionToVM(rt *vm.Runtime, name string, fn interface{}) (vm.Value, error) {
	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()
	if fnType.Kind() != reflect.Func {
		return vm.Undefined, fmt.Errorf("expected a function, got %s", fnType)
	}
	if fnValue.IsNil() {
		return vm.Undefined, fmt.Errorf("nil function")
	}

	first := 0
	if fnType.NumIn() > 0 && fnType.In(0) == runtimeType {
		first = 1
	}
	switch fnType.NumOut() {
	case 0, 1:
	case 2:
		if fnType.Out(1) != errorType {
			return vm.Undefined, fmt.Errorf("second result of %s must be error", fnType)
		}
	default:
		return vm.Undefined, fmt.Errorf("%s returns too many results", fnType)
	}

	fixed := fnType.NumIn() - first
	if fnType.IsVariadic() {
		fixed--
	}

	native := func(rt *vm.Runtime) error {
		in := make([]reflect.Value, 0, fnType.NumIn())
		if first == 1 {
			in = append(in, reflect.ValueOf(rt))
		}
		for i := 0; i < fixed; i++ {
			arg, err := vmValueToReflectValue(rt, rt.Arg(i+1), fnType.In(first+i))
			if err != nil {
				return err
			}
			in = append(in, arg)
		}
		if fnType.IsVariadic() {
			elemType := fnType.In(fnType.NumIn() - 1).Elem()
			for i := fixed + 1; i <= rt.ArgCount(); i++ {
				arg, err := vmValueToReflectValue(rt, rt.Arg(i), elemType)
				if err != nil {
					return err
				}
				in = append(in, arg)
			}
		}

		out := fnValue.Call(in)
		if len(out) == 0 {
			return nil
		}
		last := out[len(out)-1]
		if last.Type() == errorType {
			if !last.IsNil() {
				return last.Interface().(error)
			}
			if len(out) == 1 {
				return nil
			}
		}
		result, err := reflectValueToVM(rt, out[0], 0)
		if err != nil {
			return rt.RaiseTypeError("%s: %s", name, err)
		}
		return rt.Return(result)
	}
	return vm.ObjectValue(rt.NewNativeFunction(name, native, fixed)), nil
}
