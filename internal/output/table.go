package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/runson/internal/inference"
	"github.com/pankaj-dahiya-devops/runson/internal/matching"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// TableOptions controls RenderInstanceTable.
type TableOptions struct {
	// Runners annotate each row with the runners that could launch it.
	Runners []models.RunnerConfig

	Palette Palette
}

// Shorten truncates s to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func Shorten(s string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// pad pads text to width before colour is applied so ANSI codes never
// disturb column alignment. A negative width right-aligns.
func pad(text string, width int) string {
	if width < 0 {
		return fmt.Sprintf("%*s", -width, text)
	}
	return fmt.Sprintf("%-*s", width, text)
}

// RenderInstanceTable writes instances as an aligned table in input order.
//
// Column order:
//
//	API NAME  PRICE  SPOT  ARCH  MEMORY  VCPUS  EBS MBPS  NVME  MATCHED BY
func RenderInstanceTable(w io.Writer, instances []models.Instance, opts TableOptions) {
	p := opts.Palette
	if len(instances) == 0 {
		fmt.Fprintln(w, p.Yellow("No matching instances found."))
		return
	}

	wName := 8
	for _, inst := range instances {
		wName = max(wName, len(inst.APIName))
	}
	const (
		wPrice  = -9
		wArch   = 7
		wMemory = -8
		wVCPUs  = -5
		wEBS    = -10
		wNVMe   = -8
	)

	header := strings.Join([]string{
		pad("API Name", wName),
		pad("Price", wPrice),
		pad("Spot", wPrice),
		pad("Arch", wArch),
		pad("Memory", wMemory),
		pad("vCPUs", wVCPUs),
		pad("EBS Mbps", wEBS),
		pad("NVMe", wNVMe),
		"Matched By",
	}, "  ")
	fmt.Fprintln(w, p.Bold(header))
	fmt.Fprintln(w, p.Dim(strings.Repeat("-", len(header)+20)))

	matched := 0
	for _, inst := range instances {
		runners := matching.FindMatchingRunners(inst, opts.Runners)
		style := p.Dim
		if len(runners) > 0 {
			style = p.Green
			matched++
		}

		cells := []string{
			style(pad(inst.APIName, wName)),
			style(pad(formatHourly(inst.Price), wPrice)),
			pad(formatHourly(inst.Spot), wPrice),
			pad(string(inst.Arch), wArch),
			pad(fmt.Sprintf("%.0fGB", inst.MemoryGB), wMemory),
			pad(fmt.Sprint(inst.VCPUs), wVCPUs),
			pad(formatMbps(inst.EBSMbps), wEBS),
			pad(formatStorage(inst.NVMe, inst.NVMeGB), wNVMe),
			p.Cyan(strings.Join(runners, ", ")),
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Dim(fmt.Sprintf("Total: %d instances (%d matched by configured runners)", len(instances), matched)))
}

// RenderInstanceYAML writes instances as a YAML list ready to paste into a
// runner's family key, one commented line per instance.
func RenderInstanceYAML(w io.Writer, instances []models.Instance, p Palette) {
	if len(instances) == 0 {
		fmt.Fprintln(w, p.Yellow("No matching instances found."))
		return
	}

	width := 0
	for _, inst := range instances {
		width = max(width, len(inst.APIName)+2)
	}
	for _, inst := range instances {
		ebs := "N/A"
		if inst.EBSMbps != nil && *inst.EBSMbps != 0 {
			ebs = fmt.Sprintf("%d Mbps", *inst.EBSMbps)
		}
		fmt.Fprintf(w, "- %s  # %s, %s, %.0fGB, %d CPU, %s, %s/hr\n",
			pad(`"`+inst.APIName+`"`, width),
			inference.InstanceCategory(inst.APIName),
			inst.Arch,
			inst.MemoryGB,
			inst.VCPUs,
			ebs,
			formatHourly(inst.Price),
		)
	}
}

// RenderInstanceJSON writes instances as an indented JSON array.
func RenderInstanceJSON(w io.Writer, instances []models.Instance) error {
	if instances == nil {
		instances = []models.Instance{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(instances)
}
