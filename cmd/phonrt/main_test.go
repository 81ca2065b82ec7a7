package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phonscript/pkg/vm"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr, false)
	return code, stdout.String(), stderr.String()
}

func TestCall(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-call", "Math.max", "3", "9", "4"}, "9\n"},
		{[]string{"-call", "String.from_char_code", "104", "105"}, "hi\n"},
		{[]string{"-call", "parse_int", "ff", "16"}, "255\n"},
		{[]string{"-call", "is_nan", "abc"}, "true\n"},
		{[]string{"-call", "Array", "1", "x", "true"}, "[1, x, true]\n"},
	}
	for _, tt := range tests {
		code, out, errOut := runCLI(t, tt.args...)
		if code != 0 || out != tt.want {
			t.Errorf("%v: code=%d out=%q err=%q", tt.args, code, out, errOut)
		}
	}
}

func TestCallError(t *testing.T) {
	code, out, errOut := runCLI(t, "-call", "String.from_char_code", "--", "-1")
	if code != 1 || out != "" {
		t.Fatalf("code=%d out=%q", code, out)
	}
	if !strings.HasPrefix(errOut, "[Range error] invalid code point -1") {
		t.Errorf("stderr = %q", errOut)
	}
	if !strings.Contains(errOut, "at String.from_char_code (native)") {
		t.Errorf("stderr has no trace: %q", errOut)
	}

	code, _, errOut = runCLI(t, "-call", "nowhere")
	if code != 1 || !strings.Contains(errOut, "[Reference error] nowhere is not defined") {
		t.Errorf("code=%d stderr=%q", code, errOut)
	}
}

func TestInspect(t *testing.T) {
	code, out, _ := runCLI(t, "-inspect", "-all")
	if code != 0 {
		t.Fatalf("code = %d", code)
	}
	for _, want := range []string{"Globals", "  Math Object", "  parse_int Function", "  Events Object", "from_char_code"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output lacks %q:\n%s", want, out)
		}
	}
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "runtime.yaml")
	if err := os.WriteFile(good, []byte("capture_traces: false\nlog_level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runCLI(t, "-config", good, "-call", "String.from_char_code", "--", "-1")
	if code != 1 || strings.Contains(errOut, "native") {
		t.Errorf("traces disabled: code=%d stderr=%q", code, errOut)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("stack_size: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := runCLI(t, "-config", bad, "-inspect"); code != 78 {
		t.Errorf("invalid config exit code = %d", code)
	}
	if code, _, _ := runCLI(t, "-config", filepath.Join(dir, "missing.yaml"), "-inspect"); code != 78 {
		t.Errorf("missing config exit code = %d", code)
	}
}

func TestUsage(t *testing.T) {
	if code, _, _ := runCLI(t); code != 64 {
		t.Errorf("no arguments: code = %d", code)
	}
	if code, _, _ := runCLI(t, "-bogus"); code != 64 {
		t.Errorf("unknown flag: code = %d", code)
	}
}

func TestParseArg(t *testing.T) {
	tests := []struct {
		in   string
		want vm.Value
	}{
		{"true", vm.True},
		{"null", vm.Null},
		{"undefined", vm.Undefined},
		{"2.5", vm.NumberValue(2.5)},
		{"word", vm.NewString("word")},
	}
	for _, tt := range tests {
		if got := parseArg(tt.in); !vm.StrictEquals(got, tt.want) {
			t.Errorf("parseArg(%q) = %v", tt.in, got)
		}
	}
}
