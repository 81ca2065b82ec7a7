package vm

import "phonscript/pkg/errors"

// Hint selects the preferred primitive in ToPrimitive.
type Hint uint8

const (
	HintNone Hint = iota
	HintNumber
	HintString
)

// ToPrimitive converts an object to a primitive by calling its to_value and
// to_string methods, in that order for HintNumber/HintNone and the reverse
// for HintString. Primitives are returned unchanged.
func (rt *Runtime) ToPrimitive(v Value, hint Hint) (Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	order := [2]string{"to_value", "to_string"}
	if hint == HintString {
		order = [2]string{"to_string", "to_value"}
	}
	for _, name := range order {
		fn, err := rt.GetProperty(v.obj, name)
		if err != nil {
			return Undefined, err
		}
		if !fn.IsCallable() {
			continue
		}
		res, err := rt.CallValue(fn, v)
		if err != nil {
			return Undefined, err
		}
		if res.IsPrimitive() {
			return res, nil
		}
	}
	if p, ok := v.obj.primitive(); ok {
		return p, nil
	}
	return NewString(v.obj.displayString()), nil
}

// ToString converts any value to a string, honouring to_string on objects.
func (rt *Runtime) ToString(v Value) (string, error) {
	p, err := rt.ToPrimitive(v, HintString)
	if err != nil {
		return "", err
	}
	return p.ToString(), nil
}

// ToNumber converts any value to a number, honouring to_value on objects.
func (rt *Runtime) ToNumber(v Value) (float64, error) {
	p, err := rt.ToPrimitive(v, HintNumber)
	if err != nil {
		return 0, err
	}
	return p.ToNumber(), nil
}

// ToBoolean never calls script code.
func (rt *Runtime) ToBoolean(v Value) bool { return v.ToBoolean() }

// ToObject wraps a primitive in an object of the matching kind. Objects are
// returned unchanged; undefined and null raise a type error.
func (rt *Runtime) ToObject(v Value) (*Object, error) {
	switch v.typ {
	case TypeObject:
		return v.obj, nil
	case TypeBoolean:
		return rt.NewBooleanObject(v.AsBoolean()), nil
	case TypeNumber:
		return rt.NewNumberObject(v.AsNumber()), nil
	case TypeString:
		return rt.NewStringObject(v.AsString()), nil
	}
	return nil, rt.Raise(errors.KindType, "cannot convert %s to object", v.ToString())
}

// LooseEquals is weak equality: null equals undefined, numbers and strings
// compare numerically, booleans compare as numbers and an object compared
// with a primitive is first converted with ToPrimitive.
func (rt *Runtime) LooseEquals(a, b Value) (bool, error) {
	for range 2 {
		if eq, ok := looseEqualsPrimitive(a, b); ok {
			return eq, nil
		}
		var err error
		if a.IsObject() {
			if a, err = rt.ToPrimitive(a, HintNone); err != nil {
				return false, err
			}
		} else if b.IsObject() {
			if b, err = rt.ToPrimitive(b, HintNone); err != nil {
				return false, err
			}
		}
	}
	eq, _ := looseEqualsPrimitive(a, b)
	return eq, nil
}
