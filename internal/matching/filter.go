package matching

import "github.com/pankaj-dahiya-devops/runson/internal/models"

// Filter is a conjunction of instance constraints. A nil field places no
// constraint on the instance. Patterns is the exception worth noting: nil
// skips the family check, while a non-nil empty slice matches nothing.
type Filter struct {
	// Patterns are family patterns; the name must match at least one.
	Patterns []string

	CPU *models.Requirement
	RAM *models.Requirement

	// Arches restricts the architecture to one of the listed tags.
	Arches []models.Arch

	// MaxPrice requires a known on-demand price strictly below the value.
	MaxPrice *float64

	// EBSMin requires a known EBS baseline bandwidth of at least the value.
	EBSMin *int

	// NVMe requires the local NVMe flag to equal the value.
	NVMe *bool
}

// FilterInstances returns the instances that satisfy every constraint in f,
// in input order. The input slice is not modified.
func FilterInstances(instances []models.Instance, f Filter) []models.Instance {
	patterns := CompilePatterns(f.Patterns)

	var arches map[models.Arch]struct{}
	if f.Arches != nil {
		arches = make(map[models.Arch]struct{}, len(f.Arches))
		for _, a := range f.Arches {
			arches[a] = struct{}{}
		}
	}

	result := make([]models.Instance, 0, len(instances))
	for _, inst := range instances {
		if patterns != nil && !matchesAny(inst.APIName, patterns) {
			continue
		}
		if f.CPU != nil && !f.CPU.Matches(float64(inst.VCPUs)) {
			continue
		}
		if f.RAM != nil && !f.RAM.Matches(inst.MemoryGB) {
			continue
		}
		if arches != nil {
			if _, ok := arches[inst.Arch]; !ok {
				continue
			}
		}
		if f.MaxPrice != nil && (inst.Price == nil || *inst.Price >= *f.MaxPrice) {
			continue
		}
		if f.EBSMin != nil && (inst.EBSMbps == nil || *inst.EBSMbps < *f.EBSMin) {
			continue
		}
		if f.NVMe != nil && inst.NVMe != *f.NVMe {
			continue
		}
		result = append(result, inst)
	}
	return result
}
