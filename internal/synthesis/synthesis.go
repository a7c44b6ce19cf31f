// Package synthesis compresses a selected set of instances into a short list
// of family globs ("m7*", "r7gd*") and literal names that a runner
// configuration can use to select the same instances.
//
// The search is greedy and fixed-depth. Each selected instance is first
// grouped under a 2-character prefix glob; a group whose glob breaks a
// constraint is split by full family variant, and a variant that still
// breaks a constraint is emitted as literal instance names.
package synthesis

import (
	"sort"
	"strings"

	"github.com/pankaj-dahiya-devops/runson/internal/inference"
	"github.com/pankaj-dahiya-devops/runson/internal/matching"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// Options are the constraints every emitted glob must honour.
type Options struct {
	// Budget caps the on-demand price of every selected instance a glob
	// matches. Nil disables the check.
	Budget *float64

	// NVMe, when true, requires that a glob matches no instance without
	// local NVMe anywhere in the universe. Nil and false disable the check.
	NVMe *bool
}

// Level is one granularity of the refinement search.
type Level int

const (
	// LevelPrefix groups by category and generation ("m7").
	LevelPrefix Level = iota
	// LevelVariant groups by the full family ("m7gd").
	LevelVariant
	// LevelLiteral emits the instance name itself.
	LevelLiteral
)

// Levels lists the refinement levels from coarsest to finest.
var Levels = []Level{LevelPrefix, LevelVariant, LevelLiteral}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelPrefix:
		return "prefix"
	case LevelVariant:
		return "variant"
	case LevelLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Key returns the group key of name at this level.
func (l Level) Key(name string) string {
	switch l {
	case LevelPrefix:
		family := inference.FamilyPrefix(name)
		if len(family) < 2 {
			return family
		}
		return family[:2]
	case LevelVariant:
		return inference.FamilyPrefix(name)
	default:
		return name
	}
}

// Glob returns the pattern emitted for a group key at this level. Literal
// keys are emitted unchanged.
func (l Level) Glob(key string) string {
	if l == LevelLiteral {
		return key
	}
	return key + "*"
}

// synthesizer carries the inputs shared by the validity checks.
type synthesizer struct {
	selected []models.Instance
	universe []models.Instance
	opts     Options
}

// maxSelectedPrice returns the highest known price among selected instances
// that glob matches, or 0 when none is priced.
func (s synthesizer) maxSelectedPrice(glob string) float64 {
	p := matching.ParsePattern(glob)
	max := 0.0
	for _, inst := range s.selected {
		if inst.Price != nil && p.Match(inst.APIName) && *inst.Price > max {
			max = *inst.Price
		}
	}
	return max
}

// matchesNonNVMe reports whether glob matches any universe instance without
// local NVMe storage.
func (s synthesizer) matchesNonNVMe(glob string) bool {
	p := matching.ParsePattern(glob)
	for _, inst := range s.universe {
		if !inst.NVMe && p.Match(inst.APIName) {
			return true
		}
	}
	return false
}

// valid reports whether glob satisfies the budget against the selection and
// the NVMe guarantee against the universe.
func (s synthesizer) valid(glob string) bool {
	if s.opts.Budget != nil && s.maxSelectedPrice(glob) > *s.opts.Budget {
		return false
	}
	if s.opts.NVMe != nil && *s.opts.NVMe && s.matchesNonNVMe(glob) {
		return false
	}
	return true
}

// refine emits globs for group at levels[0], descending to the next level
// for any subgroup whose glob is invalid. The last level is always emitted.
func (s synthesizer) refine(group []models.Instance, levels []Level) []string {
	level := levels[0]
	keys, byKey := groupBy(group, level)

	var out []string
	for _, key := range keys {
		glob := level.Glob(key)
		if len(levels) == 1 || s.valid(glob) {
			out = append(out, glob)
			continue
		}
		out = append(out, s.refine(byKey[key], levels[1:])...)
	}
	return out
}

// groupBy partitions instances by level key. Keys are returned sorted; each
// group keeps input order.
func groupBy(instances []models.Instance, level Level) ([]string, map[string][]models.Instance) {
	byKey := make(map[string][]models.Instance)
	var keys []string
	for _, inst := range instances {
		k := level.Key(inst.APIName)
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], inst)
	}
	sort.Strings(keys)
	return keys, byKey
}

// Synthesize returns the sorted, de-duplicated globs and literal names that
// cover every instance in selected while honouring opts. universe is the
// reference set for the NVMe guarantee; pass selected again when no wider
// set applies.
func Synthesize(selected, universe []models.Instance, opts Options) []string {
	if len(selected) == 0 {
		return []string{}
	}
	s := synthesizer{selected: selected, universe: universe, opts: opts}
	return RemoveSubsumed(s.refine(selected, Levels))
}

// Subsumes reports whether the wildcard broader already matches everything
// narrower could. Literal instance names are never subsumed, and only
// patterns ending in "*" can subsume.
//
//	Subsumes("m5d*", "m5dn*") == true
//	Subsumes("m5d*", "m5d*")  == false
//	Subsumes("m5*", "m5d.large") == false
func Subsumes(broader, narrower string) bool {
	if !strings.HasSuffix(broader, "*") {
		return false
	}
	if strings.Contains(narrower, ".") && !strings.HasSuffix(narrower, "*") {
		return false
	}
	b := strings.TrimSuffix(broader, "*")
	n := strings.TrimSuffix(narrower, "*")
	return n != b && strings.HasPrefix(n, b)
}

// RemoveSubsumed de-duplicates patterns and drops every pattern subsumed by
// another one. The result is sorted.
func RemoveSubsumed(patterns []string) []string {
	unique := make([]string, 0, len(patterns))
	seen := make(map[string]struct{}, len(patterns))
	for _, p := range patterns {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	sort.Strings(unique)

	out := make([]string, 0, len(unique))
	for _, p := range unique {
		subsumed := false
		for _, other := range unique {
			if other != p && Subsumes(other, p) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, p)
		}
	}
	return out
}
