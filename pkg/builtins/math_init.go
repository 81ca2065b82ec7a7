package builtins

import (
	"math"
	"math/rand/v2"

	"phonscript/pkg/vm"
)

type MathInitializer struct{}

func (m *MathInitializer) Name() string {
	return "Math"
}

func (m *MathInitializer) Priority() int {
	return PriorityMath // after core types
}

func (m *MathInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	mathObj := rt.NewPlainObject()

	rt.RegisterConstant(mathObj, "pi", vm.NumberValue(math.Pi))
	rt.RegisterConstant(mathObj, "e", vm.NumberValue(math.E))
	rt.RegisterConstant(mathObj, "sqrt2", vm.NumberValue(math.Sqrt2))
	rt.RegisterConstant(mathObj, "ln2", vm.NumberValue(math.Ln2))
	rt.RegisterConstant(mathObj, "ln10", vm.NumberValue(math.Ln10))

	unary := map[string]func(float64) float64{
		"abs":   math.Abs,
		"acos":  math.Acos,
		"asin":  math.Asin,
		"atan":  math.Atan,
		"ceil":  math.Ceil,
		"cos":   math.Cos,
		"exp":   math.Exp,
		"floor": math.Floor,
		"log":   math.Log,
		"sin":   math.Sin,
		"sqrt":  math.Sqrt,
		"tan":   math.Tan,
	}
	for name, fn := range unary {
		rt.RegisterMethod(mathObj, "Math."+name, mathUnary(fn), 1)
	}
	rt.RegisterMethod(mathObj, "Math.atan2", mathAtan2, 2)
	rt.RegisterMethod(mathObj, "Math.pow", mathPow, 2)
	rt.RegisterMethod(mathObj, "Math.round", mathRound, 1)
	rt.RegisterMethod(mathObj, "Math.min", mathMin, 0)
	rt.RegisterMethod(mathObj, "Math.max", mathMax, 0)
	rt.RegisterMethod(mathObj, "Math.random", mathRandom, 0)

	return ctx.DefineGlobal("Math", vm.ObjectValue(mathObj))
}

func mathUnary(fn func(float64) float64) vm.NativeFunc {
	return func(rt *vm.Runtime) error {
		x, err := rt.ArgToNumber(1)
		if err != nil {
			return err
		}
		return rt.Return(vm.NumberValue(fn(x)))
	}
}

func twoNumbers(rt *vm.Runtime) (float64, float64, error) {
	x, err := rt.ArgToNumber(1)
	if err != nil {
		return 0, 0, err
	}
	y, err := rt.ArgToNumber(2)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func mathAtan2(rt *vm.Runtime) error {
	y, x, err := twoNumbers(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.NumberValue(math.Atan2(y, x)))
}

func mathPow(rt *vm.Runtime) error {
	x, y, err := twoNumbers(rt)
	if err != nil {
		return err
	}
	if math.IsInf(y, 0) && math.Abs(x) == 1 {
		return rt.Return(vm.NaN)
	}
	return rt.Return(vm.NumberValue(math.Pow(x, y)))
}

// round(x) rounds half up; round(x, n) rounds to n decimal places.
func mathRound(rt *vm.Runtime) error {
	x, err := rt.ArgToNumber(1)
	if err != nil {
		return err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || x == 0 {
		return rt.Return(vm.NumberValue(x))
	}
	if rt.ArgIsDefined(2) {
		n, err := rt.ArgToInteger(2)
		if err != nil {
			return err
		}
		p := math.Pow(10, float64(n))
		return rt.Return(vm.NumberValue(math.Floor(x*p+0.5) / p))
	}
	return rt.Return(vm.NumberValue(math.Floor(x + 0.5)))
}

func extremum(rt *vm.Runtime, start float64, better func(a, b float64) bool) error {
	result := start
	for _, v := range rt.Args() {
		x, err := rt.ToNumber(v)
		if err != nil {
			return err
		}
		if math.IsNaN(x) {
			return rt.Return(vm.NaN)
		}
		if better(x, result) {
			result = x
		}
	}
	return rt.Return(vm.NumberValue(result))
}

func mathMin(rt *vm.Runtime) error {
	return extremum(rt, math.Inf(1), func(a, b float64) bool { return a < b })
}

func mathMax(rt *vm.Runtime) error {
	return extremum(rt, math.Inf(-1), func(a, b float64) bool { return a > b })
}

func mathRandom(rt *vm.Runtime) error {
	return rt.Return(vm.NumberValue(rand.Float64()))
}
