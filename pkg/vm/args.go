package vm

import "strings"

// Argument accessors for native functions. Slot 0 of the current frame is
// the receiver and slots 1..n are the arguments; missing arguments read as
// Undefined. The ArgAs* accessors check the tag and raise a uniform type
// error; the ArgTo* accessors coerce.

// This returns the receiver of the current call.
func (rt *Runtime) This() Value { return rt.Get(0) }

// Arg returns argument n (1-based).
func (rt *Runtime) Arg(n int) Value {
	if n < 1 {
		return Undefined
	}
	return rt.Get(n)
}

// ArgCount returns the number of arguments in the current frame, including
// padding added for the declared arity.
func (rt *Runtime) ArgCount() int {
	if c := rt.TopCount() - 1; c > 0 {
		return c
	}
	return 0
}

// Args returns a copy of all arguments of the current frame.
func (rt *Runtime) Args() []Value {
	n := rt.ArgCount()
	out := make([]Value, n)
	copy(out, rt.stack[rt.bot+1:rt.bot+1+n])
	return out
}

// ArgIsDefined reports whether argument n was passed and is not undefined.
func (rt *Runtime) ArgIsDefined(n int) bool { return !rt.Arg(n).IsUndefined() }

func (rt *Runtime) argTypeError(n int, want string, got Value) *Exception {
	return rt.RaiseTypeError("argument %d: expected %s, got %s", n, want, got.TypeName())
}

func (rt *Runtime) ArgAsBoolean(n int) (bool, error) {
	v := rt.Arg(n)
	if !v.IsBoolean() {
		return false, rt.argTypeError(n, "a boolean", v)
	}
	return v.AsBoolean(), nil
}

func (rt *Runtime) ArgAsNumber(n int) (float64, error) {
	v := rt.Arg(n)
	if !v.IsNumber() {
		return 0, rt.argTypeError(n, "a number", v)
	}
	return v.AsNumber(), nil
}

func (rt *Runtime) ArgAsString(n int) (string, error) {
	v := rt.Arg(n)
	if !v.IsString() {
		return "", rt.argTypeError(n, "a string", v)
	}
	return v.AsString(), nil
}

func (rt *Runtime) ArgAsObject(n int) (*Object, error) {
	v := rt.Arg(n)
	if !v.IsObject() {
		return nil, rt.argTypeError(n, "an object", v)
	}
	return v.AsObject(), nil
}

func (rt *Runtime) ArgAsCallable(n int) (Value, error) {
	v := rt.Arg(n)
	if !v.IsCallable() {
		return Undefined, rt.argTypeError(n, "a function", v)
	}
	return v, nil
}

func (rt *Runtime) ArgAsArray(n int) (*Object, error) {
	v := rt.Arg(n)
	if !v.IsKind(KindArray) {
		return nil, rt.argTypeError(n, "an array", v)
	}
	return v.AsObject(), nil
}

func (rt *Runtime) ArgToNumber(n int) (float64, error) { return rt.ToNumber(rt.Arg(n)) }
func (rt *Runtime) ArgToString(n int) (string, error)  { return rt.ToString(rt.Arg(n)) }

func (rt *Runtime) ArgToInteger(n int) (int, error) {
	f, err := rt.ToNumber(rt.Arg(n))
	if err != nil {
		return 0, err
	}
	return NumberValue(f).ToInteger(), nil
}

// ThisAs converts the receiver to an object and checks its kind. On a
// mismatch it raises a type error naming the expected type, e.g.
// "not a boolean".
func (rt *Runtime) ThisAs(kind ObjectKind) (*Object, error) {
	this := rt.This()
	if this.IsNullish() {
		return nil, rt.RaiseTypeError("not %s", kindArticle(kind))
	}
	obj, err := rt.ToObject(this)
	if err != nil {
		return nil, err
	}
	if obj.kind != kind && !(kind == KindFunction && obj.IsCallable()) {
		return nil, rt.RaiseTypeError("not %s", kindArticle(kind))
	}
	return obj, nil
}

func kindArticle(kind ObjectKind) string {
	name := strings.ToLower(kind.String())
	switch name[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + name
	}
	return "a " + name
}
