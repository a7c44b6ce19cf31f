package models

import "strconv"

// Requirement is a numeric constraint on a measured attribute such as vCPU
// count or memory in GB.
//
// When Max is nil the requirement is exact (value == Min). Otherwise it is an
// inclusive range Min <= value <= Max. An inverted range (Max < Min) matches
// nothing; use Valid to detect it before evaluation.
type Requirement struct {
	Min float64  `json:"min"`
	Max *float64 `json:"max,omitempty"`
}

// Exact returns a requirement matching only v.
func Exact(v float64) Requirement {
	return Requirement{Min: v}
}

// Between returns an inclusive range requirement.
func Between(min, max float64) Requirement {
	return Requirement{Min: min, Max: &max}
}

// IsRange reports whether r is a range rather than an exact value.
func (r Requirement) IsRange() bool {
	return r.Max != nil
}

// Valid reports whether the range bounds are ordered. Exact requirements are
// always valid.
func (r Requirement) Valid() bool {
	return r.Max == nil || *r.Max >= r.Min
}

// Matches reports whether value satisfies r.
func (r Requirement) Matches(value float64) bool {
	if r.Max == nil {
		return value == r.Min
	}
	if !r.Valid() {
		return false
	}
	return r.Min <= value && value <= *r.Max
}

// String renders r as "8" or "8:16".
func (r Requirement) String() string {
	if r.Max == nil {
		return formatNumber(r.Min)
	}
	return formatNumber(r.Min) + ":" + formatNumber(*r.Max)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Spot describes whether a runner uses spot capacity and, optionally, which
// allocation strategy it asks for.
type Spot struct {
	Enabled  bool   `json:"enabled"`
	Strategy string `json:"strategy,omitempty"`
}

// DefaultSpot is used when a runner does not set spot explicitly.
var DefaultSpot = Spot{Enabled: true}

// String renders s the way it is written in configuration.
func (s Spot) String() string {
	if s.Strategy != "" {
		return s.Strategy
	}
	return strconv.FormatBool(s.Enabled)
}

// RunnerConfig is a named runner-selection rule from runs-on.yml or from an
// inline runs-on label.
type RunnerConfig struct {
	Name string `json:"name"`

	// Families is the ordered list of family patterns ("m7*", "c7", "r7a.large").
	Families []string `json:"families"`

	// CPU and RAM are nil when the runner places no constraint on them.
	CPU *Requirement `json:"cpu,omitempty"`
	RAM *Requirement `json:"ram,omitempty"`

	Spot Spot `json:"spot"`
}

// RunnerSet is an ordered collection of runner configurations. Order is the
// configuration document order and is preserved by every lookup.
type RunnerSet []RunnerConfig

// Get returns the runner called name.
func (s RunnerSet) Get(name string) (RunnerConfig, bool) {
	for _, rc := range s {
		if rc.Name == name {
			return rc, true
		}
	}
	return RunnerConfig{}, false
}

// Names returns runner names in configuration order.
func (s RunnerSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, rc := range s {
		names = append(names, rc.Name)
	}
	return names
}
