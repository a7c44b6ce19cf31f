package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pankaj-dahiya-devops/runson/internal/models"
	"github.com/pankaj-dahiya-devops/runson/internal/runnerconfig"
)

// runsOnPrefix marks a label addressed to runs-on.
const runsOnPrefix = "runs-on="

// Overrides are runner parameters given inline in a runs-on label, e.g.
// "runs-on=123/cpu=8+32/family=m7+c7/spot=false". Nil fields are not set.
type Overrides struct {
	Families []string
	CPU      *models.Requirement
	RAM      *models.Requirement
	Spot     *models.Spot
}

// Empty reports whether o sets nothing.
func (o Overrides) Empty() bool {
	return o.Families == nil && o.CPU == nil && o.RAM == nil && o.Spot == nil
}

// LabelRunner is the runner a job's labels ask for.
type LabelRunner struct {
	Kind models.RunnerKind

	// Name is the runs-on runner name from "runner=<name>", or the matching
	// label for GitHub-hosted runners.
	Name string

	// Overrides holds inline runs-on parameters; nil when there are none.
	Overrides *Overrides
}

var runnerNamePattern = regexp.MustCompile(`runner=([^/,]+)`)

// ParseInlineSpec extracts inline runner parameters from a runs-on label.
// It returns nil when label is not a runs-on label or sets no parameter.
// Values that fail to parse are ignored.
func ParseInlineSpec(label string) *Overrides {
	if !strings.HasPrefix(label, runsOnPrefix) {
		return nil
	}

	var o Overrides
	for _, part := range strings.FieldsFunc(label, func(r rune) bool { return r == '/' || r == ',' }) {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "cpu":
			if r, ok := parseInlineRequirement(value); ok {
				o.CPU = r
			}
		case "ram":
			if r, ok := parseInlineRequirement(value); ok {
				o.RAM = r
			}
		case "family":
			if fams := parseInlineFamilies(value); len(fams) > 0 {
				o.Families = fams
			}
		case "spot":
			s := runnerconfig.ParseSpot(value)
			o.Spot = &s
		}
	}
	if o.Empty() {
		return nil
	}
	return &o
}

// parseInlineRequirement parses "8" or "8+32".
func parseInlineRequirement(value string) (*models.Requirement, bool) {
	lo, hi, isRange := strings.Cut(value, "+")
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return nil, false
	}
	if !isRange {
		r := models.Exact(float64(min))
		return &r, true
	}
	max, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return nil, false
	}
	r := models.Between(float64(min), float64(max))
	return &r, true
}

// parseInlineFamilies splits "m7+c7+r7a.large". A bare family gains a
// trailing "*"; exact instance names are kept as written.
func parseInlineFamilies(value string) []string {
	var fams []string
	for _, f := range strings.Split(value, "+") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !strings.Contains(f, ".") && !strings.HasSuffix(f, "*") {
			f += "*"
		}
		fams = append(fams, f)
	}
	return fams
}

// hostedPrefixes are the label prefixes of GitHub-hosted runners.
var hostedPrefixes = []string{"ubuntu", "linux", "windows", "macos"}

// RunnerFromLabels identifies the runner a job ran on. The first runs-on
// label wins; otherwise the first GitHub-hosted label; otherwise the runner
// is unknown.
func RunnerFromLabels(labels []string) LabelRunner {
	for _, label := range labels {
		if !strings.HasPrefix(label, runsOnPrefix) {
			continue
		}
		lr := LabelRunner{Kind: models.RunnerKindRunsOn, Overrides: ParseInlineSpec(label)}
		if m := runnerNamePattern.FindStringSubmatch(label); m != nil {
			lr.Name = m[1]
		}
		return lr
	}

	for _, label := range labels {
		lower := strings.ToLower(label)
		for _, p := range hostedPrefixes {
			if strings.HasPrefix(lower, p) {
				return LabelRunner{Kind: models.RunnerKindGitHubHosted, Name: label}
			}
		}
	}
	return LabelRunner{Kind: models.RunnerKindUnknown}
}

// MergeRunner applies o on top of base. Families are replaced, not appended.
func MergeRunner(base models.RunnerConfig, o Overrides) models.RunnerConfig {
	merged := base
	if o.Families != nil {
		merged.Families = append([]string(nil), o.Families...)
	}
	if o.CPU != nil {
		merged.CPU = o.CPU
	}
	if o.RAM != nil {
		merged.RAM = o.RAM
	}
	if o.Spot != nil {
		merged.Spot = *o.Spot
	}
	return merged
}

// FormatInlineSpec renders o for display, e.g. "cpu=8-32/ram=16/family=m7*".
// More than three families are abbreviated.
func FormatInlineSpec(o Overrides) string {
	var parts []string
	if o.CPU != nil {
		parts = append(parts, "cpu="+formatInlineRequirement(*o.CPU))
	}
	if o.RAM != nil {
		parts = append(parts, "ram="+formatInlineRequirement(*o.RAM))
	}
	if len(o.Families) > 0 {
		if len(o.Families) <= 3 {
			parts = append(parts, "family="+strings.Join(o.Families, "+"))
		} else {
			parts = append(parts, "family="+strings.Join(o.Families[:2], "+")+"+...")
		}
	}
	if len(parts) == 0 {
		return "inline"
	}
	return strings.Join(parts, "/")
}

func formatInlineRequirement(r models.Requirement) string {
	return strings.Replace(r.String(), ":", "-", 1)
}
