package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"phonscript/pkg/vm"
)

// kindURI is raised by the URI decoding functions.
const kindURI = "URI error"

type GlobalsInitializer struct{}

func (g *GlobalsInitializer) Name() string {
	return "Globals"
}

func (g *GlobalsInitializer) Priority() int {
	return PriorityGlobals
}

func (g *GlobalsInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	rt.RegisterConstant(rt.Global(), "Infinity", vm.NumberValue(math.Inf(1)))
	rt.RegisterConstant(rt.Global(), "NaN", vm.NaN)

	rt.RegisterGlobalFunction("parse_int", parseInt, 2)
	rt.RegisterGlobalFunction("parse_float", parseFloat, 1)
	rt.RegisterGlobalFunction("is_nan", isNaN, 1)
	rt.RegisterGlobalFunction("is_finite", isFinite, 1)
	rt.RegisterGlobalFunction("encode_uri", encodeURI, 1)
	rt.RegisterGlobalFunction("encode_uri_component", encodeURIComponent, 1)
	rt.RegisterGlobalFunction("decode_uri", decodeURI, 1)
	rt.RegisterGlobalFunction("decode_uri_component", decodeURIComponent, 1)
	rt.RegisterGlobalFunction("type", typeOf, 1)
	rt.RegisterGlobalFunction("len", lengthOf, 1)
	return nil
}

// type(v) returns the type name of v: "number", "string" and so on for
// primitives, the kind ("Array", "Number") for objects.
func typeOf(rt *vm.Runtime) error {
	return rt.Return(vm.NewString(rt.Arg(1).TypeName()))
}

// len(v) counts the graphemes of a string, the elements of an array or the
// enumerable fields of any other object.
func lengthOf(rt *vm.Runtime) error {
	v := rt.Arg(1)
	if v.IsObject() {
		if p, ok := v.AsObject().PrimitiveValue(); ok && p.IsString() {
			v = p
		}
	}
	switch {
	case v.IsString():
		return rt.Return(vm.IntegerValue(uniseg.GraphemeClusterCount(v.AsString())))
	case v.IsKind(vm.KindArray):
		return rt.Return(vm.IntegerValue(len(v.AsObject().Elements())))
	case v.IsObject() && !v.IsCallable():
		return rt.Return(vm.IntegerValue(len(v.AsObject().OwnKeys())))
	}
	return rt.RaiseTypeError("%s has no length", v.TypeName())
}

func isSpace(r rune) bool {
	return isTrimSpace(r)
}

// parse_int(s, radix) parses the longest prefix of s that forms an integer
// in radix. Without a radix "0x" selects base 16; radixes outside 2..36
// yield NaN.
func parseInt(rt *vm.Runtime) error {
	s, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	radix := 0
	if rt.ArgIsDefined(2) {
		if radix, err = rt.ArgToInteger(2); err != nil {
			return err
		}
	}
	s = strings.TrimLeftFunc(s, isSpace)
	sign := 1.0
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if radix == 0 {
		radix = 10
		if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			radix, s = 16, s[2:]
		}
	} else if radix < 2 || radix > 36 {
		return rt.Return(vm.NaN)
	}

	n, digits := 0.0, 0
	for _, c := range strings.ToLower(s) {
		d := strings.IndexRune(radixDigits, c)
		if d < 0 || d >= radix {
			break
		}
		n = n*float64(radix) + float64(d)
		digits++
	}
	if digits == 0 {
		return rt.Return(vm.NaN)
	}
	return rt.Return(vm.NumberValue(sign * n))
}

// floatPrefix returns the longest prefix of s with the shape
// [+-]digits[.digits][e[+-]digits].
func floatPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := func() int {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i - start
	}
	mantissa := digits()
	if i < len(s) && s[i] == '.' {
		i++
		mantissa += digits()
	}
	if mantissa == 0 {
		return ""
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() > 0 {
			end = i
		}
	}
	return s[:end]
}

func parseFloat(rt *vm.Runtime) error {
	s, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	s = strings.TrimLeftFunc(s, isSpace)
	switch {
	case strings.HasPrefix(s, "Infinity"), strings.HasPrefix(s, "+Infinity"):
		return rt.Return(vm.NumberValue(math.Inf(1)))
	case strings.HasPrefix(s, "-Infinity"):
		return rt.Return(vm.NumberValue(math.Inf(-1)))
	}
	prefix := floatPrefix(s)
	if prefix == "" {
		return rt.Return(vm.NaN)
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		// Out of range values saturate to ±Inf, which ParseFloat returns
		// alongside the error.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return rt.Return(vm.NumberValue(f))
		}
		return rt.Return(vm.NaN)
	}
	return rt.Return(vm.NumberValue(f))
}

func isNaN(rt *vm.Runtime) error {
	f, err := rt.ArgToNumber(1)
	if err != nil {
		return err
	}
	return rt.Return(vm.BooleanValue(math.IsNaN(f)))
}

func isFinite(rt *vm.Runtime) error {
	f, err := rt.ArgToNumber(1)
	if err != nil {
		return err
	}
	return rt.Return(vm.BooleanValue(!math.IsNaN(f) && !math.IsInf(f, 0)))
}

const (
	uriReserved  = ";/?:@&=+$,"
	uriUnescaped = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_.!~*'()"
	upperHex     = "0123456789ABCDEF"
)

// uriEncode percent-encodes every byte of s that is not in keep.
func uriEncode(s, keep string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(keep, c) >= 0 {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[c>>4])
		sb.WriteByte(upperHex[c&0xf])
	}
	return sb.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// uriDecode reverses uriEncode. Escapes that decode to a byte in preserve
// are left as written.
func uriDecode(rt *vm.Runtime, s, preserve string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			sb.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", rt.Raise(kindURI, "truncated escape sequence")
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", rt.Raise(kindURI, "invalid escape sequence")
		}
		if c := hi<<4 | lo; strings.IndexByte(preserve, c) < 0 {
			sb.WriteByte(c)
		} else {
			sb.WriteString(s[i : i+3])
		}
		i += 2
	}
	return sb.String(), nil
}

func encodeURI(rt *vm.Runtime) error {
	s, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(uriEncode(s, uriUnescaped+uriReserved+"#")))
}

func encodeURIComponent(rt *vm.Runtime) error {
	s, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(uriEncode(s, uriUnescaped)))
}

func decodeURI(rt *vm.Runtime) error {
	s, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	out, err := uriDecode(rt, s, uriReserved+"#")
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(out))
}

func decodeURIComponent(rt *vm.Runtime) error {
	s, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	out, err := uriDecode(rt, s, "")
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(out))
}
