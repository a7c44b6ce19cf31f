package output

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/pankaj-dahiya-devops/runson/internal/inference"
	"github.com/pankaj-dahiya-devops/runson/internal/matching"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// globMatches returns the instances selected by a synthesized pattern: a
// family glob when it ends in "*", otherwise an exact name.
func globMatches(glob string, instances []models.Instance) []models.Instance {
	var out []models.Instance
	for _, inst := range instances {
		if strings.HasSuffix(glob, "*") {
			if matching.MatchesFamilyPattern(inst.APIName, glob) {
				out = append(out, inst)
			}
		} else if inst.APIName == glob {
			out = append(out, inst)
		}
	}
	return out
}

func minPrice(instances []models.Instance) float64 {
	lo := math.Inf(1)
	for _, inst := range instances {
		if inst.Price != nil {
			lo = math.Min(lo, *inst.Price)
		}
	}
	return lo
}

// RenderGlobs writes synthesized patterns as a YAML list annotated with the
// category, architectures, vCPU, memory and EBS ranges, and price range of
// the instances each pattern selects. Patterns are ordered by cheapest
// instance when sortBy is "price" and kept in input order otherwise.
func RenderGlobs(w io.Writer, globs []string, instances []models.Instance, sortBy string, p Palette) {
	if len(globs) == 0 {
		fmt.Fprintln(w, p.Yellow("No patterns to display."))
		return
	}

	ordered := append([]string(nil), globs...)
	if sortBy == "price" {
		sort.SliceStable(ordered, func(i, j int) bool {
			return minPrice(globMatches(ordered[i], instances)) < minPrice(globMatches(ordered[j], instances))
		})
	}

	width := 0
	for _, g := range ordered {
		width = max(width, len(g)+2)
	}

	for _, g := range ordered {
		col := pad(`"`+g+`"`, width)
		selected := globMatches(g, instances)
		if len(selected) == 0 {
			fmt.Fprintf(w, "- %s  # unknown\n", col)
			continue
		}
		fmt.Fprintf(w, "- %s  # %s\n", col, describe(selected))
	}
}

// describe summarises a non-empty instance group.
func describe(selected []models.Instance) string {
	archSet := map[models.Arch]bool{}
	var cpus, mems, ebs []int
	var prices []float64
	for _, inst := range selected {
		archSet[inst.Arch] = true
		cpus = append(cpus, inst.VCPUs)
		mems = append(mems, int(inst.MemoryGB))
		if inst.EBSMbps != nil {
			ebs = append(ebs, *inst.EBSMbps)
		}
		if inst.Price != nil {
			prices = append(prices, *inst.Price)
		}
	}

	arches := make([]string, 0, len(archSet))
	for a := range archSet {
		arches = append(arches, string(a))
	}
	sort.Strings(arches)

	price := "N/A"
	if len(prices) > 0 {
		lo, hi := prices[0], prices[0]
		for _, v := range prices[1:] {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		if lo == hi {
			price = fmt.Sprintf("$%.2f/hr", lo)
		} else {
			price = fmt.Sprintf("$%.2f-$%.2f/hr", lo, hi)
		}
	}

	return strings.Join([]string{
		inference.InstanceCategory(selected[0].APIName),
		strings.Join(arches, "/"),
		FormatRange(cpus, " CPU"),
		FormatRange(mems, "GB"),
		FormatRange(ebs, " Mbps"),
		price,
	}, ", ")
}
