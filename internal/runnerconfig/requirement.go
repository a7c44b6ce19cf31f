package runnerconfig

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// ParseRequirement reads a cpu or ram value from YAML:
//
//	8        exact
//	[8]      exact
//	[8, 16]  inclusive range
//
// Any other shape, including non-numeric values, yields nil (no constraint).
func ParseRequirement(n *yaml.Node) *models.Requirement {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		v, ok := number(n)
		if !ok {
			return nil
		}
		r := models.Exact(v)
		return &r
	case yaml.SequenceNode:
		switch len(n.Content) {
		case 1:
			v, ok := number(n.Content[0])
			if !ok {
				return nil
			}
			r := models.Exact(v)
			return &r
		case 2:
			lo, okLo := number(n.Content[0])
			hi, okHi := number(n.Content[1])
			if !okLo || !okHi {
				return nil
			}
			r := models.Between(lo, hi)
			return &r
		}
	}
	return nil
}

// number decodes an !!int or !!float scalar.
func number(n *yaml.Node) (float64, bool) {
	if n.Kind != yaml.ScalarNode || (n.Tag != "!!int" && n.Tag != "!!float") {
		return 0, false
	}
	var v float64
	if err := n.Decode(&v); err != nil {
		return 0, false
	}
	return v, true
}

// ParseCLIRequirement parses a command-line requirement: "8" is exact and
// "8:16" is an inclusive range. Whitespace around either bound is ignored.
// An inverted range is rejected.
func ParseCLIRequirement(s string) (*models.Requirement, error) {
	if lo, hi, isRange := strings.Cut(s, ":"); isRange {
		lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
		if lo == "" || hi == "" {
			return nil, fmt.Errorf("invalid range format %q (use min:max)", s)
		}
		min, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid integer in %q", s)
		}
		max, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid integer in %q", s)
		}
		if max < min {
			return nil, fmt.Errorf("invalid range %q: max is below min", s)
		}
		r := models.Between(float64(min), float64(max))
		return &r, nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid integer in %q", s)
	}
	r := models.Exact(float64(v))
	return &r, nil
}
