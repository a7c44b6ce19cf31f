package catalog

import "github.com/pankaj-dahiya-devops/runson/internal/models"

// MergePrices returns hardware with on-demand and spot prices copied from
// the instance of the same name in priced. Instances missing from priced
// keep unknown prices. The inputs are not modified.
func MergePrices(hardware, priced []models.Instance) (merged []models.Instance, matched int) {
	prices := make(map[string]models.Instance, len(priced))
	for _, inst := range priced {
		prices[inst.APIName] = inst
	}

	merged = make([]models.Instance, 0, len(hardware))
	for _, inst := range hardware {
		if p, ok := prices[inst.APIName]; ok {
			inst.Price = p.Price
			inst.Spot = p.Spot
			matched++
		}
		merged = append(merged, inst)
	}
	return merged, matched
}
