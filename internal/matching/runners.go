package matching

import (
	"sort"

	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// runnerAccepts reports whether inst satisfies the runner's families and its
// cpu/ram requirements.
func runnerAccepts(rc models.RunnerConfig, patterns []Pattern, inst models.Instance) bool {
	if !matchesAny(inst.APIName, patterns) {
		return false
	}
	if rc.CPU != nil && !rc.CPU.Matches(float64(inst.VCPUs)) {
		return false
	}
	if rc.RAM != nil && !rc.RAM.Matches(inst.MemoryGB) {
		return false
	}
	return true
}

// FindMatchingRunners returns the names of the runners that could launch
// inst, in configuration order.
func FindMatchingRunners(inst models.Instance, runners []models.RunnerConfig) []string {
	var names []string
	for _, rc := range runners {
		if runnerAccepts(rc, CompilePatterns(rc.Families), inst) {
			names = append(names, rc.Name)
		}
	}
	return names
}

// RunnerPriceRange returns the cheapest and most expensive priced instance
// that rc selects. ok is false when rc has no families or selects no
// instance with a known price. Ties keep input order.
func RunnerPriceRange(rc models.RunnerConfig, instances []models.Instance) (pr models.PriceRange, ok bool) {
	if len(rc.Families) == 0 {
		return models.PriceRange{}, false
	}

	patterns := CompilePatterns(rc.Families)
	var priced []models.Instance
	for _, inst := range instances {
		if inst.Price == nil {
			continue
		}
		if runnerAccepts(rc, patterns, inst) {
			priced = append(priced, inst)
		}
	}
	if len(priced) == 0 {
		return models.PriceRange{}, false
	}

	sort.SliceStable(priced, func(i, j int) bool {
		return *priced[i].Price < *priced[j].Price
	})
	cheapest, dearest := priced[0], priced[len(priced)-1]
	return models.PriceRange{
		Min:         *cheapest.Price,
		Max:         *dearest.Price,
		MinInstance: cheapest.APIName,
		MaxInstance: dearest.APIName,
	}, true
}

// InstancePrice returns the on-demand price of the instance named exactly
// name, or nil when it is absent or unpriced.
func InstancePrice(name string, instances []models.Instance) *float64 {
	for _, inst := range instances {
		if inst.APIName == name {
			return inst.Price
		}
	}
	return nil
}
