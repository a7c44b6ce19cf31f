// Package matching selects instances by family pattern and numeric
// constraints, and maps instances back to the runner configurations that
// would launch them.
//
// Everything in this package is a pure function over its inputs. Unknown
// values never cause errors; they simply fail the constraint that needs them.
package matching

import (
	"regexp"
	"strings"
)

// PatternKind distinguishes the two ways a family pattern can match.
type PatternKind int

const (
	// PatternExact matches one full instance name ("r7a.large").
	PatternExact PatternKind = iota

	// PatternPrefix matches every name whose family starts with Value
	// ("r7" matches r7i.large, r7a.xlarge, r7gd.large).
	PatternPrefix
)

// String returns the kind name.
func (k PatternKind) String() string {
	switch k {
	case PatternExact:
		return "exact"
	case PatternPrefix:
		return "prefix"
	default:
		return "unknown"
	}
}

// Pattern is a family pattern resolved once so repeated matching does not
// re-derive its kind or recompile its expression.
type Pattern struct {
	Kind  PatternKind
	Value string

	re *regexp.Regexp
}

// ParsePattern resolves raw into a Pattern. One trailing "*" is stripped; a
// remaining "." makes the pattern exact, otherwise it is a family prefix.
func ParsePattern(raw string) Pattern {
	clean := strings.TrimSuffix(raw, "*")
	if strings.Contains(clean, ".") {
		return Pattern{Kind: PatternExact, Value: clean}
	}
	return Pattern{
		Kind:  PatternPrefix,
		Value: clean,
		re:    regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(clean) + `[a-z0-9]*\.`),
	}
}

// Match reports whether the instance name matches p. An empty name never
// matches.
func (p Pattern) Match(name string) bool {
	if name == "" {
		return false
	}
	if p.Kind == PatternExact {
		return strings.EqualFold(name, p.Value)
	}
	if p.re == nil {
		// zero Pattern or a literal built without ParsePattern
		return ParsePattern(p.Value).Match(name)
	}
	return p.re.MatchString(name)
}

// String renders the pattern in its canonical written form.
func (p Pattern) String() string {
	if p.Kind == PatternPrefix {
		return p.Value + "*"
	}
	return p.Value
}

// CompilePatterns parses every raw pattern once. A nil input yields nil so
// callers can keep the "no constraint" meaning of a nil pattern list.
func CompilePatterns(raw []string) []Pattern {
	if raw == nil {
		return nil
	}
	out := make([]Pattern, 0, len(raw))
	for _, r := range raw {
		out = append(out, ParsePattern(r))
	}
	return out
}

// MatchesFamilyPattern reports whether name matches the single family
// pattern:
//
//	"r7", "r7*"  -> r7i.large, r7a.xlarge, r7g.medium (not r6i.large)
//	"r7a*"       -> r7a variants only
//	"r7a.large"  -> that exact instance, case-insensitively
func MatchesFamilyPattern(name, pattern string) bool {
	if name == "" {
		return false
	}
	return ParsePattern(pattern).Match(name)
}

// MatchesAnyPattern reports whether name matches at least one pattern. An
// empty pattern list matches nothing.
func MatchesAnyPattern(name string, patterns []string) bool {
	for _, p := range patterns {
		if MatchesFamilyPattern(name, p) {
			return true
		}
	}
	return false
}

func matchesAny(name string, patterns []Pattern) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}
