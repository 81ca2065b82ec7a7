package vm

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// Helper function to check for panics using standard library
func expectPanic(t *testing.T, fn func(), containsMsg string) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("Expected a panic, but function did not panic")
			return
		}
		if containsMsg != "" {
			panicMsg := fmt.Sprintf("%v", r)
			if !strings.Contains(panicMsg, containsMsg) {
				t.Errorf("Panic message mismatch.\nExpected to contain: %q\nActual: %q", containsMsg, panicMsg)
			}
		}
	}()
	fn()
}

func TestValueTypes(t *testing.T) {
	obj := NewObject(KindPlain, nil)
	tests := []struct {
		name string
		v    Value
		want ValueType
	}{
		{"undefined", Undefined, TypeUndefined},
		{"null", Null, TypeNull},
		{"true", True, TypeBoolean},
		{"number", NumberValue(1.5), TypeNumber},
		{"string", NewString("x"), TypeString},
		{"object", ObjectValue(obj), TypeObject},
		{"nil object", ObjectValue(nil), TypeNull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueAccessorPanics(t *testing.T) {
	expectPanic(t, func() { NewString("x").AsNumber() }, "not a number")
	expectPanic(t, func() { NumberValue(1).AsString() }, "not a string")
	expectPanic(t, func() { Undefined.AsObject() }, "not an object")
	expectPanic(t, func() { Null.AsBoolean() }, "not a boolean")
}

func TestToBoolean(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Undefined, false},
		{Null, false},
		{False, false},
		{True, true},
		{NumberValue(0), false},
		{NumberValue(math.Copysign(0, -1)), false},
		{NaN, false},
		{NumberValue(-3), true},
		{NewString(""), false},
		{NewString("0"), true},
		{ObjectValue(NewObject(KindPlain, nil)), true},
	}
	for _, tt := range tests {
		if got := tt.v.ToBoolean(); got != tt.want {
			t.Errorf("ToBoolean(%s) = %v, want %v", tt.v.Inspect(), got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		f    float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-42, "-42"},
		{1.5, "1.5"},
		{0.1, "0.1"},
		{0.1 + 0.2, "0.30000000000000004"},
		{123456789012, "123456789012"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		if got := NumberValue(tt.f).ToString(); got != tt.want {
			t.Errorf("ToString(%v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestStringToNumber(t *testing.T) {
	tests := []struct {
		s    string
		want float64
	}{
		{"", 0},
		{"  12  ", 12},
		{"1e3", 1000},
		{"0x1F", 31},
		{"0o17", 15},
		{"0b101", 5},
		{"-2.5", -2.5},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		if got := NewString(tt.s).ToNumber(); got != tt.want {
			t.Errorf("ToNumber(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
	for _, s := range []string{"abc", "infinity", "inf", "NaN", "1_000", "0xZZ", "12px"} {
		if got := NewString(s).ToNumber(); !math.IsNaN(got) {
			t.Errorf("ToNumber(%q) = %v, want NaN", s, got)
		}
	}
}

func TestNullAndUndefinedToNumber(t *testing.T) {
	if got := Null.ToNumber(); got != 0 {
		t.Errorf("null -> %v, want 0", got)
	}
	if got := Undefined.ToNumber(); !math.IsNaN(got) {
		t.Errorf("undefined -> %v, want NaN", got)
	}
	if got := True.ToNumber(); got != 1 {
		t.Errorf("true -> %v, want 1", got)
	}
}

func TestStrictEquals(t *testing.T) {
	a := NewObject(KindPlain, nil)
	b := NewObject(KindPlain, nil)
	if StrictEquals(NumberValue(1), NewString("1")) {
		t.Error("1 === \"1\" should be false")
	}
	if StrictEquals(NaN, NaN) {
		t.Error("NaN === NaN should be false")
	}
	if !NaN.Is(NaN) {
		t.Error("NaN should be the same value as NaN")
	}
	if !StrictEquals(Null, Null) || StrictEquals(Null, Undefined) {
		t.Error("null strict equality mismatch")
	}
	if StrictEquals(ObjectValue(a), ObjectValue(b)) || !StrictEquals(ObjectValue(a), ObjectValue(a)) {
		t.Error("objects must compare by identity")
	}
}

func TestLooseEqualsPrimitive(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{NumberValue(1), NewString("1"), true},
		{NewString(" 2 "), NumberValue(2), true},
		{NumberValue(1), NewString("x"), false},
		{Null, Undefined, true},
		{Null, NumberValue(0), false},
		{True, NumberValue(1), true},
		{False, NewString("0"), true},
		{NaN, NaN, false},
	}
	for _, tt := range tests {
		got, ok := looseEqualsPrimitive(tt.a, tt.b)
		if !ok {
			t.Fatalf("looseEqualsPrimitive(%s, %s) needs conversion", tt.a.Inspect(), tt.b.Inspect())
		}
		if got != tt.want {
			t.Errorf("%s == %s: got %v, want %v", tt.a.Inspect(), tt.b.Inspect(), got, tt.want)
		}
	}
	if _, ok := looseEqualsPrimitive(ObjectValue(NewObject(KindPlain, nil)), NumberValue(1)); ok {
		t.Error("object vs number should request conversion")
	}
}

func TestInspect(t *testing.T) {
	if got := NewString("a\"b").Inspect(); got != `"a\"b"` {
		t.Errorf("Inspect = %s", got)
	}
	if got := NumberValue(3).Inspect(); got != "3" {
		t.Errorf("Inspect = %s", got)
	}
}
