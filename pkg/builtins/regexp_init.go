package builtins

import (
	"phonscript/pkg/errors"
	"phonscript/pkg/vm"
)

// regexErrorKind is raised when the matcher itself fails, e.g. on timeout.
const regexErrorKind = errors.KindRuntime

type RegexInitializer struct{}

func (r *RegexInitializer) Name() string {
	return "Regex"
}

func (r *RegexInitializer) Priority() int {
	return PriorityRegex
}

func (r *RegexInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	meta := rt.Meta(vm.KindRegex)

	rt.RegisterMethod(meta, "Regex.meta.to_string", regexToString, 0)
	rt.RegisterMethod(meta, "Regex.meta.to_value", regexToString, 0)
	rt.RegisterMethod(meta, "Regex.meta.test", regexTest, 1)
	rt.RegisterMethod(meta, "Regex.meta.match", regexMatch, 1)
	rt.RegisterMethod(meta, "Regex.meta.replace", regexReplace, 2)

	rt.RegisterConstructor(rt.Global(), "Regex", newRegex, newRegex, 2, meta, vm.DontEnum)
	return nil
}

// Regex(pattern, flags) compiles pattern. Passing an existing Regex copies
// it, in which case flags are not allowed.
func newRegex(rt *vm.Runtime) error {
	if src := rt.Arg(1); src.IsKind(vm.KindRegex) {
		if rt.ArgIsDefined(2) {
			return rt.RaiseTypeError("cannot supply flags when creating one Regex from another")
		}
		data := src.AsObject().RegexData()
		obj, err := rt.NewRegex(data.Source(), data.Flags())
		if err != nil {
			return err
		}
		return rt.Return(vm.ObjectValue(obj))
	}
	pattern, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	flags := ""
	if rt.ArgIsDefined(2) {
		if flags, err = rt.ArgToString(2); err != nil {
			return err
		}
	}
	obj, err := rt.NewRegex(pattern, flags)
	if err != nil {
		return err
	}
	return rt.Return(vm.ObjectValue(obj))
}

func thisRegex(rt *vm.Runtime) (*vm.RegexData, error) {
	obj, err := rt.ThisAs(vm.KindRegex)
	if err != nil {
		return nil, err
	}
	return obj.RegexData(), nil
}

func regexToString(rt *vm.Runtime) error {
	re, err := thisRegex(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(re.String()))
}

func regexTest(rt *vm.Runtime) error {
	re, err := thisRegex(rt)
	if err != nil {
		return err
	}
	s, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	ok, err := re.Test(s)
	if err != nil {
		return rt.Raise(regexErrorKind, "%s", err)
	}
	return rt.Return(vm.BooleanValue(ok))
}

// re.match(s) returns an Array holding the whole match followed by its
// groups, or null when s does not match.
func regexMatch(rt *vm.Runtime) error {
	re, err := thisRegex(rt)
	if err != nil {
		return err
	}
	s, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	groups, err := re.Match(s)
	if err != nil {
		return rt.Raise(regexErrorKind, "%s", err)
	}
	if groups == nil {
		return rt.Return(vm.Null)
	}
	return rt.Return(newArrayOf(rt, groups))
}

func regexReplace(rt *vm.Runtime) error {
	re, err := thisRegex(rt)
	if err != nil {
		return err
	}
	s, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	repl, err := rt.ArgToString(2)
	if err != nil {
		return err
	}
	out, err := re.Replace(s, repl, -1)
	if err != nil {
		return rt.Raise(regexErrorKind, "%s", err)
	}
	return rt.Return(vm.NewString(out))
}
