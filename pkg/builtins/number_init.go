package builtins

import (
	"math"
	"strconv"
	"strings"

	"phonscript/pkg/vm"
)

type NumberInitializer struct{}

func (n *NumberInitializer) Name() string {
	return "Number"
}

func (n *NumberInitializer) Priority() int {
	return PriorityNumber
}

func (n *NumberInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	meta := rt.Meta(vm.KindNumber)

	rt.RegisterMethod(meta, "Number.meta.to_value", numberToValue, 0)
	rt.RegisterMethod(meta, "Number.meta.to_string", numberToString, 1)
	rt.RegisterMethod(meta, "Number.meta.to_fixed", numberToFixed, 1)
	rt.RegisterMethod(meta, "Number.meta.to_exponential", numberToExponential, 1)
	rt.RegisterMethod(meta, "Number.meta.to_precision", numberToPrecision, 1)

	ctor := rt.RegisterConstructor(rt.Global(), "Number", newNumber, callNumber, 1, meta, vm.DontEnum)
	rt.RegisterConstant(ctor, "MAX_VALUE", vm.NumberValue(math.MaxFloat64))
	rt.RegisterConstant(ctor, "MIN_VALUE", vm.NumberValue(math.SmallestNonzeroFloat64))
	rt.RegisterConstant(ctor, "NaN", vm.NaN)
	rt.RegisterConstant(ctor, "NEGATIVE_INFINITY", vm.NumberValue(math.Inf(-1)))
	rt.RegisterConstant(ctor, "POSITIVE_INFINITY", vm.NumberValue(math.Inf(1)))
	return nil
}

func numberArg(rt *vm.Runtime) (float64, error) {
	if rt.ArgCount() == 0 || !rt.ArgIsDefined(1) {
		return 0, nil
	}
	return rt.ArgToNumber(1)
}

func newNumber(rt *vm.Runtime) error {
	f, err := numberArg(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.ObjectValue(rt.NewNumberObject(f)))
}

func callNumber(rt *vm.Runtime) error {
	f, err := numberArg(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.NumberValue(f))
}

func thisNumber(rt *vm.Runtime) (float64, error) {
	v, err := thisPrimitive(rt, vm.KindNumber)
	if err != nil {
		return 0, err
	}
	return v.AsNumber(), nil
}

func numberToValue(rt *vm.Runtime) error {
	f, err := thisNumber(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.NumberValue(f))
}

// to_string(radix) renders in base 10 by default; other radixes must be in
// 2..36.
func numberToString(rt *vm.Runtime) error {
	f, err := thisNumber(rt)
	if err != nil {
		return err
	}
	radix := 10
	if rt.ArgIsDefined(1) && !rt.Arg(1).IsNull() {
		if radix, err = rt.ArgToInteger(1); err != nil {
			return err
		}
	}
	if radix == 10 {
		return rt.Return(vm.NewString(vm.NumberValue(f).ToString()))
	}
	if radix < 2 || radix > 36 {
		return rt.RaiseRangeError("invalid radix")
	}
	return rt.Return(vm.NewString(formatRadix(f, radix)))
}

const radixDigits = "0123456789abcdefghijklmnopqrstuvwxyz"

// formatRadix renders f in the given base with up to 52 bits of
// significant digits.
func formatRadix(f float64, radix int) string {
	switch {
	case f == 0:
		return "0"
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	neg := f < 0
	if neg {
		f = -f
	}
	// Scale f so that it fills a 52-bit integer.
	const limit = float64(uint64(1) << 52)
	r := float64(radix)
	exp := 0
	for f*math.Pow(r, float64(exp)) > limit {
		exp--
	}
	for f*math.Pow(r, float64(exp+1)) < limit {
		exp++
	}
	u := uint64(f*math.Pow(r, float64(exp)) + 0.5)
	for u > 0 && u%uint64(radix) == 0 {
		u /= uint64(radix)
		exp--
	}
	var digits []byte
	for u > 0 {
		digits = append(digits, radixDigits[u%uint64(radix)])
		u /= uint64(radix)
	}
	// digits are least significant first
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	point := len(digits) - exp
	if point <= 0 {
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", -point))
		for i := len(digits) - 1; i >= 0; i-- {
			sb.WriteByte(digits[i])
		}
		return sb.String()
	}
	for i := len(digits) - 1; i >= 0; i-- {
		sb.WriteByte(digits[i])
		point--
		if point == 0 && i > 0 {
			sb.WriteByte('.')
		}
	}
	if point > 0 {
		sb.WriteString(strings.Repeat("0", point))
	}
	return sb.String()
}

func precisionArg(rt *vm.Runtime, lo, hi int) (int, error) {
	p, err := rt.ArgToInteger(1)
	if err != nil {
		return 0, err
	}
	if p < lo || p > hi {
		return 0, rt.RaiseRangeError("precision %d out of range", p)
	}
	return p, nil
}

// cleanExponent rewrites Go's "e+05" exponent form as "e+5".
func cleanExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 {
		return s
	}
	exp, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return s
	}
	sign := "+"
	if exp < 0 {
		sign = "-"
		exp = -exp
	}
	return s[:i] + "e" + sign + strconv.Itoa(exp)
}

func numberToFixed(rt *vm.Runtime) error {
	f, err := thisNumber(rt)
	if err != nil {
		return err
	}
	digits, err := precisionArg(rt, 0, 20)
	if err != nil {
		return err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return rt.Return(vm.NewString(vm.NumberValue(f).ToString()))
	}
	return rt.Return(vm.NewString(strconv.FormatFloat(f, 'f', digits, 64)))
}

func numberToExponential(rt *vm.Runtime) error {
	f, err := thisNumber(rt)
	if err != nil {
		return err
	}
	digits, err := precisionArg(rt, 0, 20)
	if err != nil {
		return err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return rt.Return(vm.NewString(vm.NumberValue(f).ToString()))
	}
	return rt.Return(vm.NewString(cleanExponent(strconv.FormatFloat(f, 'e', digits, 64))))
}

func numberToPrecision(rt *vm.Runtime) error {
	f, err := thisNumber(rt)
	if err != nil {
		return err
	}
	digits, err := precisionArg(rt, 1, 21)
	if err != nil {
		return err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return rt.Return(vm.NewString(vm.NumberValue(f).ToString()))
	}
	return rt.Return(vm.NewString(cleanExponent(strconv.FormatFloat(f, 'g', digits, 64))))
}
