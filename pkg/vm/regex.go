package vm

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// RegexData is the payload of a KindRegex object, backed by regexp2 so that
// backreferences and lookaround work as script authors expect.
type RegexData struct {
	compiled *regexp2.Regexp
	source   string // pattern as written
	flags    string // Normalised flags, subset of "imsx"
}

// CompileRegex compiles pattern with the given flags:
// i (ignore case), m (multiline), s (dot matches newline), x (ignore whitespace).
// A single match attempt fails once it runs longer than timeout; zero or
// less means no limit.
func CompileRegex(pattern, flags string, timeout time.Duration) (*RegexData, error) {
	opts := regexp2.RegexOptions(regexp2.None)
	var norm strings.Builder
	for _, f := range "imsx" {
		if !strings.ContainsRune(flags, f) {
			continue
		}
		norm.WriteRune(f)
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		}
	}
	for _, f := range flags {
		if !strings.ContainsRune("imsx", f) {
			return nil, fmt.Errorf("invalid regex flag '%c'", f)
		}
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return &RegexData{compiled: re, source: pattern, flags: norm.String()}, nil
}

func (r *RegexData) Source() string { return r.source }
func (r *RegexData) Flags() string  { return r.flags }

func (r *RegexData) String() string {
	return "/" + r.source + "/" + r.flags
}

// Test reports whether s contains a match.
func (r *RegexData) Test(s string) (bool, error) {
	return r.compiled.MatchString(s)
}

// Match returns the first match and its groups (index 0 is the whole match),
// or nil when there is no match.
func (r *RegexData) Match(s string) ([]string, error) {
	m, err := r.compiled.FindStringMatch(s)
	if err != nil || m == nil {
		return nil, err
	}
	groups := m.Groups()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.String()
	}
	return out, nil
}

// Replace substitutes every match (count < 0) or the first count matches.
// The replacement may refer to groups as $1, ${name}.
func (r *RegexData) Replace(s, replacement string, count int) (string, error) {
	return r.compiled.Replace(s, replacement, -1, count)
}

// Split cuts s around every match. Empty matches at the start of a piece
// are skipped, so a pattern that can match the empty string still makes
// progress.
func (r *RegexData) Split(s string) ([]string, error) {
	runes := []rune(s)
	var out []string
	last := 0
	m, err := r.compiled.FindStringMatch(s)
	for m != nil {
		// regexp2 reports positions in runes.
		if m.Length > 0 || (m.Index > last && m.Index < len(runes)) {
			out = append(out, string(runes[last:m.Index]))
			last = m.Index + m.Length
		}
		if m, err = r.compiled.FindNextMatch(m); err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	return append(out, string(runes[last:])), nil
}
