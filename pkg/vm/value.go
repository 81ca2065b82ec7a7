package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// cleanExponentialFormat removes leading zeros from the exponent,
// e.g. "1e-07" -> "1e-7", "1e+025" -> "1e+25".
func cleanExponentialFormat(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' || s[i] == 'E' {
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				sign := s[i+1]
				expStart := i + 2
				j := expStart
				for j < len(s) && s[j] == '0' {
					j++
				}
				// If all zeros or no digits after sign, keep one zero
				if j >= len(s) {
					return s[:i+2] + "0"
				}
				return s[:i+1] + string(sign) + s[j:]
			}
			break
		}
	}
	return s
}

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the tagged union of every runtime datum. Values are copied by
// value; an object Value is a non-owning handle to a heap Object.
type Value struct {
	typ     ValueType
	payload uint64 // boolean (0/1) or float64 bits
	str     string
	obj     *Object
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, payload: math.Float64bits(value)}
}

func IntegerValue(value int) Value {
	return NumberValue(float64(value))
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, str: value}
}

// ObjectValue wraps an object handle. A nil object yields Null.
func ObjectValue(o *Object) Value {
	if o == nil {
		return Null
	}
	return Value{typ: TypeObject, obj: o}
}

func (v Value) Type() ValueType { return v.typ }

// TypeName returns the script-visible type name. Objects report their kind,
// so a Boolean wrapper object reports "Boolean".
func (v Value) TypeName() string {
	if v.typ == TypeObject {
		return v.obj.kind.String()
	}
	return v.typ.String()
}

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsNullish() bool   { return v.typ == TypeUndefined || v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsObject() bool    { return v.typ == TypeObject }
func (v Value) IsPrimitive() bool { return v.typ != TypeObject }

// IsCallable reports whether the value is a native or script function.
func (v Value) IsCallable() bool {
	return v.typ == TypeObject && v.obj.IsCallable()
}

// IsKind reports whether the value is an object of the given kind.
func (v Value) IsKind(kind ObjectKind) bool {
	return v.typ == TypeObject && v.obj.kind == kind
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload == 1
}

func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return v.str
}

func (v Value) AsObject() *Object {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	return v.obj
}

// ToBoolean is total: 0, NaN, "" , undefined and null are falsy. Primitive
// wrapper objects follow their payload; every other object is truthy.
func (v Value) ToBoolean() bool {
	switch v.typ {
	case TypeBoolean:
		return v.payload == 1
	case TypeNumber:
		f := math.Float64frombits(v.payload)
		return f != 0 && !math.IsNaN(f)
	case TypeString:
		return v.str != ""
	case TypeObject:
		if p, ok := v.obj.primitive(); ok {
			return p.ToBoolean()
		}
		return true
	default:
		return false
	}
}

// ToNumber converts without calling script code. Objects that are not
// primitive wrappers convert to NaN; use Runtime.ToNumber to honour to_value.
func (v Value) ToNumber() float64 {
	switch v.typ {
	case TypeNumber:
		return math.Float64frombits(v.payload)
	case TypeBoolean:
		if v.payload == 1 {
			return 1
		}
		return 0
	case TypeString:
		return parseStringToNumber(v.str)
	case TypeNull:
		return 0
	case TypeObject:
		if p, ok := v.obj.primitive(); ok {
			return p.ToNumber()
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

// ToInteger truncates ToNumber towards zero; NaN becomes 0.
func (v Value) ToInteger() int {
	f := v.ToNumber()
	if math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 1) || f > math.MaxInt64 {
		return math.MaxInt64
	}
	if math.IsInf(f, -1) || f < math.MinInt64 {
		return math.MinInt64
	}
	return int(f)
}

// ToString converts without calling script code.
func (v Value) ToString() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.payload == 1 {
			return "true"
		}
		return "false"
	case TypeNumber:
		return formatNumber(math.Float64frombits(v.payload))
	case TypeString:
		return v.str
	case TypeObject:
		return v.obj.displayString()
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

// formatNumber renders a float64 with the shortest digits that round-trip.
// Magnitudes in [1e-6, 1e21) use fixed notation, the rest exponent notation.
func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == 0 {
		return "0" // also -0
	}
	absF := math.Abs(f)
	if absF < 1e-6 || absF >= 1e21 {
		exp := strconv.FormatFloat(f, 'e', -1, 64)
		return cleanExponentialFormat(exp)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseStringToNumber converts a string to a number.
// Handles hex (0x), octal (0o), binary (0b), and decimal (including scientific notation)
func parseStringToNumber(s string) float64 {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0
	}

	if len(str) >= 2 && str[0] == '0' {
		base := 0
		switch str[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if i, err := strconv.ParseUint(str[2:], base, 64); err == nil {
				return float64(i)
			}
			return math.NaN()
		}
	}

	// "Infinity" is case-sensitive (unlike Go's ParseFloat)
	switch str {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(str)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return math.NaN()
	}
	// ParseFloat accepts underscores and hex floats in some forms; reject them.
	if strings.ContainsAny(str, "_pP") {
		return math.NaN()
	}

	if f, err := strconv.ParseFloat(str, 64); err == nil {
		return f
	}
	return math.NaN()
}

// Inspect returns a debugging representation; strings are quoted.
func (v Value) Inspect() string {
	if v.typ == TypeString {
		return strconv.Quote(v.str)
	}
	return v.ToString()
}

func (v Value) String() string { return v.Inspect() }

// Is reports SameValue identity: like StrictEquals but NaN is NaN.
func (v Value) Is(other Value) bool {
	if v.typ == TypeNumber && other.typ == TypeNumber {
		a, b := v.AsNumber(), other.AsNumber()
		if math.IsNaN(a) && math.IsNaN(b) {
			return true
		}
		return a == b
	}
	return v.StrictlyEquals(other)
}

// StrictlyEquals compares without coercion. Objects compare by identity.
func (v Value) StrictlyEquals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return v.payload == other.payload
	case TypeNumber:
		return v.AsNumber() == other.AsNumber()
	case TypeString:
		return v.str == other.str
	case TypeObject:
		return v.obj == other.obj
	}
	return false
}

// StrictEquals is the package-level form of Value.StrictlyEquals.
func StrictEquals(a, b Value) bool { return a.StrictlyEquals(b) }

// looseEqualsPrimitive implements weak equality when neither side needs a
// call into script code. ok is false when an object side must first be
// converted with ToPrimitive.
func looseEqualsPrimitive(a, b Value) (equal bool, ok bool) {
	if a.typ == b.typ {
		return a.StrictlyEquals(b), true
	}
	if a.IsNullish() && b.IsNullish() {
		return true, true
	}
	if a.IsNullish() || b.IsNullish() {
		return false, true
	}
	switch {
	case a.typ == TypeNumber && b.typ == TypeString:
		return a.AsNumber() == parseStringToNumber(b.str), true
	case a.typ == TypeString && b.typ == TypeNumber:
		return parseStringToNumber(a.str) == b.AsNumber(), true
	case a.typ == TypeBoolean:
		return looseEqualsPrimitive(NumberValue(a.ToNumber()), b)
	case b.typ == TypeBoolean:
		return looseEqualsPrimitive(a, NumberValue(b.ToNumber()))
	case a.typ == TypeObject || b.typ == TypeObject:
		return false, false
	}
	return false, true
}
