package builtins

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"phonscript/pkg/vm"
)

type StringInitializer struct{}

func (s *StringInitializer) Name() string {
	return "String"
}

func (s *StringInitializer) Priority() int {
	return PriorityString
}

func (s *StringInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	meta := rt.Meta(vm.KindString)

	rt.RegisterMethod(meta, "String.meta.to_string", stringToString, 0)
	rt.RegisterMethod(meta, "String.meta.to_value", stringToValue, 0)
	rt.RegisterMethod(meta, "String.meta.is_empty", stringIsEmpty, 0)
	rt.RegisterMethod(meta, "String.meta.at", stringAt, 1)
	rt.RegisterMethod(meta, "String.meta.find", stringFind, 1)
	rt.RegisterMethod(meta, "String.meta.find_last", stringFindLast, 1)
	rt.RegisterMethod(meta, "String.meta.contains", stringContains, 1)
	rt.RegisterMethod(meta, "String.meta.starts_with", stringStartsWith, 1)
	rt.RegisterMethod(meta, "String.meta.ends_with", stringEndsWith, 1)
	rt.RegisterMethod(meta, "String.meta.count", stringCount, 1)
	rt.RegisterMethod(meta, "String.meta.compare", stringCompare, 2)
	rt.RegisterMethod(meta, "String.meta.mid", stringMid, 2)
	rt.RegisterMethod(meta, "String.meta.left", stringLeft, 1)
	rt.RegisterMethod(meta, "String.meta.right", stringRight, 1)
	rt.RegisterMethod(meta, "String.meta.to_lower", stringToLower, 1)
	rt.RegisterMethod(meta, "String.meta.to_upper", stringToUpper, 1)
	rt.RegisterMethod(meta, "String.meta.trim", stringTrim, 0)
	rt.RegisterMethod(meta, "String.meta.ltrim", stringLTrim, 0)
	rt.RegisterMethod(meta, "String.meta.rtrim", stringRTrim, 0)
	rt.RegisterMethod(meta, "String.meta.replace", stringReplace, 2)
	rt.RegisterMethod(meta, "String.meta.replace_first", stringReplaceFirst, 2)
	rt.RegisterMethod(meta, "String.meta.remove", stringRemove, 1)
	rt.RegisterMethod(meta, "String.meta.reverse", stringReverse, 0)
	rt.RegisterMethod(meta, "String.meta.split", stringSplit, 1)
	rt.RegisterMethod(meta, "String.meta.normalize", stringNormalize, 1)

	ctor := rt.RegisterConstructor(rt.Global(), "String", newString, callString, 1, meta, vm.DontEnum)
	rt.RegisterMethod(ctor, "String.from_char_code", stringFromCharCode, 0)
	return nil
}

func stringArg(rt *vm.Runtime) (string, error) {
	if !rt.ArgIsDefined(1) {
		return "", nil
	}
	return rt.ArgToString(1)
}

func newString(rt *vm.Runtime) error {
	s, err := stringArg(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.ObjectValue(rt.NewStringObject(s)))
}

func callString(rt *vm.Runtime) error {
	s, err := stringArg(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(s))
}

func stringToString(rt *vm.Runtime) error {
	v, err := thisPrimitive(rt, vm.KindString)
	if err != nil {
		return err
	}
	return rt.Return(v)
}

func stringToValue(rt *vm.Runtime) error {
	v, err := thisPrimitive(rt, vm.KindString)
	if err != nil {
		return err
	}
	return rt.Return(v)
}

// graphemes splits s into user-perceived characters.
func graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// graphemeIndex converts a byte offset into a 1-based grapheme index.
func graphemeIndex(s string, offset int) int {
	return uniseg.GraphemeClusterCount(s[:offset]) + 1
}

func stringIsEmpty(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	return rt.Return(vm.BooleanValue(s == ""))
}

// s.at(i) returns the grapheme at 1-based index i; negative indices count
// from the end.
func stringAt(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	i, err := rt.ArgToInteger(1)
	if err != nil {
		return err
	}
	gs := graphemes(s)
	pos, err := resolveIndex(rt, i, len(gs))
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(gs[pos]))
}

// s.find(t) returns the 1-based index of the first occurrence of t, or 0.
func stringFind(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	needle, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	off := strings.Index(s, needle)
	if off < 0 {
		return rt.Return(vm.IntegerValue(0))
	}
	return rt.Return(vm.IntegerValue(graphemeIndex(s, off)))
}

func stringFindLast(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	needle, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	off := strings.LastIndex(s, needle)
	if off < 0 {
		return rt.Return(vm.IntegerValue(0))
	}
	return rt.Return(vm.IntegerValue(graphemeIndex(s, off)))
}

// stringPredicate adapts a two-string predicate to a method.
func stringPredicate(pred func(s, t string) bool) vm.NativeFunc {
	return func(rt *vm.Runtime) error {
		s, err := checkString(rt)
		if err != nil {
			return err
		}
		t, err := rt.ArgToString(1)
		if err != nil {
			return err
		}
		return rt.Return(vm.BooleanValue(pred(s, t)))
	}
}

var (
	stringContains   = stringPredicate(strings.Contains)
	stringStartsWith = stringPredicate(strings.HasPrefix)
	stringEndsWith   = stringPredicate(strings.HasSuffix)
)

func stringCount(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	t, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	if t == "" {
		return rt.Return(vm.IntegerValue(0))
	}
	return rt.Return(vm.IntegerValue(strings.Count(s, t)))
}

// s.compare(t, locale) returns -1, 0 or 1. Without a locale strings compare
// by code point; with one they are collated by that language's rules.
func stringCompare(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	t, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	if !rt.ArgIsDefined(2) {
		return rt.Return(vm.IntegerValue(strings.Compare(s, t)))
	}
	tag, err := localeArg(rt, 2)
	if err != nil {
		return err
	}
	c := collate.New(tag)
	return rt.Return(vm.IntegerValue(c.CompareString(s, t)))
}

func localeArg(rt *vm.Runtime, n int) (language.Tag, error) {
	if !rt.ArgIsDefined(n) {
		return language.Und, nil
	}
	name, err := rt.ArgToString(n)
	if err != nil {
		return language.Und, err
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.Und, rt.RaiseRangeError("invalid locale '%s'", name)
	}
	return tag, nil
}

// s.mid(from, count) extracts count graphemes starting at from (1-based).
// A missing count extracts to the end.
func stringMid(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	from, err := rt.ArgToInteger(1)
	if err != nil {
		return err
	}
	gs := graphemes(s)
	pos, err := resolveIndex(rt, from, len(gs))
	if err != nil {
		return err
	}
	end := len(gs)
	if rt.ArgIsDefined(2) {
		count, err := rt.ArgToInteger(2)
		if err != nil {
			return err
		}
		if count < 0 {
			return rt.RaiseRangeError("negative count %d", count)
		}
		end = min(pos+count, len(gs))
	}
	return rt.Return(vm.NewString(strings.Join(gs[pos:end], "")))
}

func stringLeft(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	n, err := rt.ArgToInteger(1)
	if err != nil {
		return err
	}
	gs := graphemes(s)
	n = max(0, min(n, len(gs)))
	return rt.Return(vm.NewString(strings.Join(gs[:n], "")))
}

func stringRight(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	n, err := rt.ArgToInteger(1)
	if err != nil {
		return err
	}
	gs := graphemes(s)
	n = max(0, min(n, len(gs)))
	return rt.Return(vm.NewString(strings.Join(gs[len(gs)-n:], "")))
}

func caseMethod(upper bool) vm.NativeFunc {
	return func(rt *vm.Runtime) error {
		s, err := checkString(rt)
		if err != nil {
			return err
		}
		tag, err := localeArg(rt, 1)
		if err != nil {
			return err
		}
		c := cases.Lower(tag)
		if upper {
			c = cases.Upper(tag)
		}
		return rt.Return(vm.NewString(c.String(s)))
	}
}

var (
	stringToLower = caseMethod(false)
	stringToUpper = caseMethod(true)
)

// isTrimSpace is the set of characters removed by trim.
func isTrimSpace(r rune) bool {
	switch r {
	case 0x9, 0xA, 0xB, 0xC, 0xD, 0x20, 0xA0, 0xFEFF, 0x2028, 0x2029:
		return true
	}
	return false
}

func trimMethod(trim func(string, func(rune) bool) string) vm.NativeFunc {
	return func(rt *vm.Runtime) error {
		s, err := checkString(rt)
		if err != nil {
			return err
		}
		return rt.Return(vm.NewString(trim(s, isTrimSpace)))
	}
}

var (
	stringTrim  = trimMethod(strings.TrimFunc)
	stringLTrim = trimMethod(strings.TrimLeftFunc)
	stringRTrim = trimMethod(strings.TrimRightFunc)
)

// s.replace(old, new) replaces every occurrence of old. old may be a Regex,
// in which case new may refer to groups as $1.
func stringReplace(rt *vm.Runtime) error {
	return replaceN(rt, -1)
}

func stringReplaceFirst(rt *vm.Runtime) error {
	return replaceN(rt, 1)
}

func replaceN(rt *vm.Runtime, n int) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	repl, err := rt.ArgToString(2)
	if err != nil {
		return err
	}
	if re := rt.Arg(1); re.IsKind(vm.KindRegex) {
		out, err := re.AsObject().RegexData().Replace(s, repl, n)
		if err != nil {
			return rt.Raise(regexErrorKind, "%s", err)
		}
		return rt.Return(vm.NewString(out))
	}
	old, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	return rt.Return(vm.NewString(strings.Replace(s, old, repl, n)))
}

func stringRemove(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	t, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	if t == "" {
		return rt.Return(vm.NewString(s))
	}
	return rt.Return(vm.NewString(strings.ReplaceAll(s, t, "")))
}

func stringReverse(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	gs := graphemes(s)
	for i, j := 0, len(gs)-1; i < j; i, j = i+1, j-1 {
		gs[i], gs[j] = gs[j], gs[i]
	}
	return rt.Return(vm.NewString(strings.Join(gs, "")))
}

// s.split(sep) returns an Array of pieces. sep may be a string or a Regex;
// an empty separator splits into graphemes and a missing one yields [s].
func stringSplit(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	sep := rt.Arg(1)
	switch {
	case sep.IsNullish():
		return rt.Return(newArrayOf(rt, []string{s}))
	case sep.IsKind(vm.KindRegex):
		pieces, err := sep.AsObject().RegexData().Split(s)
		if err != nil {
			return rt.Raise(regexErrorKind, "%s", err)
		}
		return rt.Return(newArrayOf(rt, pieces))
	}
	t, err := rt.ToString(sep)
	if err != nil {
		return err
	}
	if t == "" {
		return rt.Return(newArrayOf(rt, graphemes(s)))
	}
	return rt.Return(newArrayOf(rt, strings.Split(s, t)))
}

// s.normalize(form) applies a Unicode normalization form, NFC by default.
func stringNormalize(rt *vm.Runtime) error {
	s, err := checkString(rt)
	if err != nil {
		return err
	}
	name := "NFC"
	if rt.ArgIsDefined(1) {
		if name, err = rt.ArgToString(1); err != nil {
			return err
		}
	}
	var form norm.Form
	switch strings.ToUpper(name) {
	case "NFC":
		form = norm.NFC
	case "NFD":
		form = norm.NFD
	case "NFKC":
		form = norm.NFKC
	case "NFKD":
		form = norm.NFKD
	default:
		return rt.RaiseRangeError("invalid normalization form '%s'", name)
	}
	return rt.Return(vm.NewString(form.String(s)))
}

// String.from_char_code(c1, ..., cn) builds a string from code points.
func stringFromCharCode(rt *vm.Runtime) error {
	var sb strings.Builder
	for _, v := range rt.Args() {
		f, err := rt.ToNumber(v)
		if err != nil {
			return err
		}
		c := vm.NumberValue(f).ToInteger()
		if c < 0 || c > utf8.MaxRune || !utf8.ValidRune(rune(c)) {
			return rt.RaiseRangeError("invalid code point %d", c)
		}
		sb.WriteRune(rune(c))
	}
	return rt.Return(vm.NewString(sb.String()))
}
