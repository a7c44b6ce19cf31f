// Package runnerconfig reads runner definitions from a repository's
// .github/runs-on.yml.
//
//	runners:
//	  default:
//	    family: ["m7*", "c7"]
//	    cpu: [2, 8]
//	    ram: 16
//	    spot: price-capacity-optimized
//
// Runners keep their document order. Keys other than "runners" are ignored.
package runnerconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// FileName is the runner configuration path relative to the repository root.
const FileName = ".github/runs-on.yml"

// ErrRunnerNotFound is returned by Lookup for an unknown runner name.
var ErrRunnerNotFound = errors.New("runner not found")

// Load reads and parses the runner configuration at path.
func Load(path string) (models.RunnerSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes runner configuration YAML. Invalid requirement shapes are
// treated as "no constraint"; Validate reports them. A runner with no
// families and no cpu or ram requirement is dropped.
func Parse(data []byte) (models.RunnerSet, error) {
	runners, err := runnersNode(data)
	if err != nil {
		return nil, err
	}
	set := models.RunnerSet{}
	if runners == nil {
		return set, nil
	}

	for i := 0; i+1 < len(runners.Content); i += 2 {
		name := runners.Content[i].Value
		body := runners.Content[i+1]
		if body.Kind != yaml.MappingNode {
			continue
		}

		rc := models.RunnerConfig{
			Name:     name,
			Families: parseFamilies(field(body, "family")),
			CPU:      ParseRequirement(field(body, "cpu")),
			RAM:      ParseRequirement(field(body, "ram")),
			Spot:     parseSpot(field(body, "spot")),
		}
		if len(rc.Families) == 0 && rc.CPU == nil && rc.RAM == nil {
			continue
		}
		set = append(set, rc)
	}
	return set, nil
}

// Lookup returns the runner called name.
func Lookup(set models.RunnerSet, name string) (models.RunnerConfig, error) {
	rc, ok := set.Get(name)
	if !ok {
		return models.RunnerConfig{}, fmt.Errorf("%w: %q", ErrRunnerNotFound, name)
	}
	return rc, nil
}

// runnersNode returns the mapping under the top-level "runners" key, or nil
// when the document or the key is absent.
func runnersNode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping")
	}
	runners := field(root, "runners")
	if runners == nil || isNull(runners) {
		return nil, nil
	}
	if runners.Kind != yaml.MappingNode {
		return nil, errors.New("runners must be a mapping")
	}
	return runners, nil
}

// field returns the value node for key in a mapping node.
func field(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// parseFamilies accepts a list of patterns or a single pattern string.
// Entries are trimmed and empty entries dropped.
func parseFamilies(n *yaml.Node) []string {
	if n == nil {
		return nil
	}
	var raw []string
	switch n.Kind {
	case yaml.ScalarNode:
		if !isNull(n) {
			raw = []string{n.Value}
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind == yaml.ScalarNode && !isNull(item) {
				raw = append(raw, item.Value)
			}
		}
	}

	var families []string
	for _, f := range raw {
		if f = strings.TrimSpace(f); f != "" {
			families = append(families, f)
		}
	}
	return families
}

// parseSpot reads true, false or an allocation strategy name.
func parseSpot(n *yaml.Node) models.Spot {
	if n == nil || n.Kind != yaml.ScalarNode || isNull(n) {
		return models.DefaultSpot
	}
	if n.Tag == "!!bool" {
		var b bool
		if err := n.Decode(&b); err == nil {
			return models.Spot{Enabled: b}
		}
	}
	return ParseSpot(n.Value)
}

// ParseSpot interprets a spot value written as text, as in an inline label.
// "false", "no", "off" and "0" disable spot; "true", "yes", "on", "1" and an
// empty value enable it; anything else is a strategy name.
func ParseSpot(s string) models.Spot {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "no", "off", "0":
		return models.Spot{Enabled: false}
	case "", "true", "yes", "on", "1":
		return models.Spot{Enabled: true}
	default:
		return models.Spot{Enabled: true, Strategy: strings.TrimSpace(s)}
	}
}

// FindRepoRoot returns the nearest ancestor of start (start included) that
// contains a .github directory, or start itself when there is none.
func FindRepoRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	for dir := abs; ; {
		if info, err := os.Stat(filepath.Join(dir, ".github")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// DefaultPath returns the runner configuration path of the repository that
// contains start.
func DefaultPath(start string) string {
	return filepath.Join(FindRepoRoot(start), filepath.FromSlash(FileName))
}
