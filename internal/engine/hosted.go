package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Per-minute rates for standard GitHub-hosted runners, in USD.
// https://docs.github.com/en/billing/reference/actions-runner-pricing
var standardRates = map[string]float64{
	"linux":   0.008,
	"windows": 0.016,
	"macos":   0.08,
}

type osArch struct {
	os   string
	arch string
}

// largerRates maps (os, arch) to per-minute rates by core count.
var largerRates = map[osArch]map[int]float64{
	{"linux", "x64"}:     {2: 0.008, 4: 0.016, 8: 0.032, 16: 0.064, 32: 0.128, 64: 0.256, 96: 0.384},
	{"linux", "arm64"}:   {2: 0.005, 4: 0.010, 8: 0.020, 16: 0.040, 32: 0.080, 64: 0.160},
	{"windows", "x64"}:   {4: 0.032, 8: 0.064, 16: 0.128, 32: 0.256, 64: 0.512, 96: 0.768},
	{"windows", "arm64"}: {2: 0.010, 4: 0.020, 8: 0.040, 16: 0.080, 32: 0.160, 64: 0.320},
	{"macos", "x64"}:     {12: 0.120},
	{"macos", "arm64"}:   {5: 0.160},
}

// LargerRunner is a GitHub larger runner parsed from its label.
type LargerRunner struct {
	OS    string
	Arch  string
	Cores int
}

var (
	// Linux_x64_8Core_32gbRam_300gbSSD, Windows_arm64_16Core
	largerNamedPattern = regexp.MustCompile(`^(linux|windows|macos)[_-](x64|arm64)[_-](\d+)core`)

	// ubuntu-24.04-arm64-4-core, windows-2022-16-cores
	largerImagePattern = regexp.MustCompile(`^(ubuntu|windows|macos)[^-]*-.*?-?(arm64|x64)?-?(\d+)-?cores?`)

	// ubuntu-latest-16-cores
	largerLinuxPattern = regexp.MustCompile(`^(ubuntu|linux)[^-]*-.*?(\d+)-?cores?`)
)

// ParseLargerRunnerLabel recognises GitHub larger-runner labels. Labels
// without an architecture default to x64.
func ParseLargerRunnerLabel(label string) (LargerRunner, bool) {
	lower := strings.ToLower(label)

	if m := largerNamedPattern.FindStringSubmatch(lower); m != nil {
		cores, _ := strconv.Atoi(m[3])
		return LargerRunner{OS: m[1], Arch: m[2], Cores: cores}, true
	}
	if m := largerImagePattern.FindStringSubmatch(lower); m != nil {
		os := m[1]
		if os == "ubuntu" {
			os = "linux"
		}
		arch := m[2]
		if arch == "" {
			arch = "x64"
		}
		cores, _ := strconv.Atoi(m[3])
		return LargerRunner{OS: os, Arch: arch, Cores: cores}, true
	}
	if m := largerLinuxPattern.FindStringSubmatch(lower); m != nil {
		cores, _ := strconv.Atoi(m[2])
		return LargerRunner{OS: "linux", Arch: "x64", Cores: cores}, true
	}
	return LargerRunner{}, false
}

// HostedCost prices minutes on the GitHub-hosted runner named by label and
// describes how the price was derived. Larger runners whose core count is
// not listed use the closest listed size; anything unrecognised uses the
// standard Linux rate.
func HostedCost(label string, minutes float64) (cost float64, detail string) {
	if lr, ok := ParseLargerRunnerLabel(label); ok && lr.Cores > 0 {
		if table := largerRates[osArch{lr.OS, lr.Arch}]; len(table) > 0 {
			if rate, ok := table[lr.Cores]; ok {
				return minutes * rate, fmt.Sprintf("%d-core %s @ $%.3f/min", lr.Cores, lr.Arch, rate)
			}
			closest := closestCores(table, lr.Cores)
			rate := table[closest]
			return minutes * rate, fmt.Sprintf("%d-core %s (~%d-core @ $%.3f/min)", lr.Cores, lr.Arch, closest, rate)
		}
	}

	lower := strings.ToLower(label)
	rate := standardRates["linux"]
	switch {
	case strings.Contains(lower, "ubuntu"), strings.Contains(lower, "linux"):
	case strings.Contains(lower, "windows"):
		rate = standardRates["windows"]
	case strings.Contains(lower, "macos"):
		rate = standardRates["macos"]
	}
	return minutes * rate, "GitHub-hosted"
}

// closestCores returns the listed core count nearest to cores, preferring
// the smaller one on ties.
func closestCores(table map[int]float64, cores int) int {
	sizes := make([]int, 0, len(table))
	for c := range table {
		sizes = append(sizes, c)
	}
	sort.Ints(sizes)

	best := sizes[0]
	for _, c := range sizes[1:] {
		if abs(c-cores) < abs(best-cores) {
			best = c
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
