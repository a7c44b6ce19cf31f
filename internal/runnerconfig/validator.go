package runnerconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Validate checks runner configuration YAML and returns every problem found.
// An empty slice means the document is valid.
//
// Checks performed:
//   - the document parses and "runners" is a mapping
//   - each runner is a mapping
//   - family is a string or a list of non-empty strings
//   - cpu and ram are a number, [n] or [min, max] with min <= max
//   - spot is a boolean or a strategy name
//   - each runner sets at least one of family, cpu or ram
//
// Validate never stops at the first error.
func Validate(data []byte) []error {
	runners, err := runnersNode(data)
	if err != nil {
		return []error{fmt.Errorf("parse: %w", err)}
	}
	if runners == nil {
		return nil
	}

	var errs []error
	for i := 0; i+1 < len(runners.Content); i += 2 {
		name := runners.Content[i].Value
		body := runners.Content[i+1]
		if body.Kind != yaml.MappingNode {
			errs = append(errs, fmt.Errorf("runners.%s: must be a mapping", name))
			continue
		}

		family := field(body, "family")
		errs = append(errs, validateFamily(name, family)...)

		cpu, ram := field(body, "cpu"), field(body, "ram")
		if err := validateRequirement(name, "cpu", cpu); err != nil {
			errs = append(errs, err)
		}
		if err := validateRequirement(name, "ram", ram); err != nil {
			errs = append(errs, err)
		}

		if spot := field(body, "spot"); spot != nil && spot.Kind != yaml.ScalarNode {
			errs = append(errs, fmt.Errorf("runners.%s.spot: must be true, false or a strategy name", name))
		}

		if len(parseFamilies(family)) == 0 && ParseRequirement(cpu) == nil && ParseRequirement(ram) == nil {
			errs = append(errs, fmt.Errorf("runners.%s: no family, cpu or ram; runner is ignored", name))
		}
	}
	return errs
}

func validateFamily(runner string, n *yaml.Node) []error {
	if n == nil || isNull(n) {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return nil
	case yaml.SequenceNode:
		var errs []error
		for i, item := range n.Content {
			if item.Kind != yaml.ScalarNode || isNull(item) {
				errs = append(errs, fmt.Errorf("runners.%s.family[%d]: must be a string", runner, i))
			}
		}
		return errs
	default:
		return []error{fmt.Errorf("runners.%s.family: must be a string or a list of strings", runner)}
	}
}

func validateRequirement(runner, key string, n *yaml.Node) error {
	if n == nil || isNull(n) {
		return nil
	}
	r := ParseRequirement(n)
	if r == nil {
		return fmt.Errorf("runners.%s.%s: invalid value; use a number, [n] or [min, max]", runner, key)
	}
	if !r.Valid() {
		return fmt.Errorf("runners.%s.%s: range %s has max below min and matches nothing", runner, key, r)
	}
	return nil
}
