package builtins

import (
	"strings"

	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

// maxJSONIndent caps a numeric dump_json indent.
const maxJSONIndent = 10

type JSONInitializer struct{}

func (j *JSONInitializer) Name() string {
	return "JSON"
}

func (j *JSONInitializer) Priority() int {
	return PriorityJSON
}

func (j *JSONInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	rt.RegisterGlobalFunction("load_json", loadJSON, 1)
	rt.RegisterGlobalFunction("dump_json", dumpJSON, 2)
	return nil
}

// load_json(text) parses a JSON document. Malformed input raises a Syntax
// error.
func loadJSON(rt *vm.Runtime) error {
	text, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	v, err := rt.ParseJSON(text)
	if err != nil {
		return rt.Raise(errors.KindSyntax, "invalid JSON: %s", err)
	}
	return rt.Return(v)
}

// dump_json(value, indent) renders value as JSON. indent is a number of
// spaces or a literal string; without it the output is compact. Cyclic
// values raise a Type error.
func dumpJSON(rt *vm.Runtime) error {
	indent := ""
	switch arg := rt.Arg(2); {
	case arg.IsNumber():
		n := min(max(arg.ToInteger(), 0), maxJSONIndent)
		indent = strings.Repeat(" ", n)
	case arg.IsString():
		indent = arg.AsString()
	case !arg.IsNullish():
		return rt.RaiseTypeError("dump_json indent must be a number or a string, got %s", arg.TypeName())
	}
	s, err := rt.FormatJSON(rt.Arg(1), indent)
	if err != nil {
		return rt.RaiseTypeError("%s", err)
	}
	return rt.Return(vm.NewString(s))
}
