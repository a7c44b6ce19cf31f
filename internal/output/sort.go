package output

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// ErrUnknownSortColumn is returned by SortInstances for an unknown column.
var ErrUnknownSortColumn = errors.New("unknown sort column")

// SortColumns lists the accepted sort columns in help order.
var SortColumns = []string{"price", "spot", "vcpus", "memory", "api_name", "arch", "ebs"}

// optionalLess orders known values ascending with unknown values last.
func optionalLess[T int | float64](a, b *T) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

var sortLess = map[string]func(a, b models.Instance) bool{
	"price":    func(a, b models.Instance) bool { return optionalLess(a.Price, b.Price) },
	"spot":     func(a, b models.Instance) bool { return optionalLess(a.Spot, b.Spot) },
	"vcpus":    func(a, b models.Instance) bool { return a.VCPUs < b.VCPUs },
	"memory":   func(a, b models.Instance) bool { return a.MemoryGB < b.MemoryGB },
	"api_name": func(a, b models.Instance) bool { return a.APIName < b.APIName },
	"arch":     func(a, b models.Instance) bool { return a.Arch < b.Arch },
	"ebs":      func(a, b models.Instance) bool { return optionalLess(a.EBSMbps, b.EBSMbps) },
}

// SortInstances returns a sorted copy of instances. The sort is stable so
// equal keys keep input order.
func SortInstances(instances []models.Instance, column string) ([]models.Instance, error) {
	less, ok := sortLess[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s. Valid options: %s", ErrUnknownSortColumn, column, strings.Join(SortColumns, ", "))
	}
	sorted := append([]models.Instance(nil), instances...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted, nil
}
