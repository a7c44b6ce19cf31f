package engine

import (
	"math"
	"testing"
)

func TestParseLargerRunnerLabel(t *testing.T) {
	cases := []struct {
		label string
		want  LargerRunner
	}{
		{"Linux_x64_8Core_32gbRam_300gbSSD", LargerRunner{"linux", "x64", 8}},
		{"Windows_x64_16Core_64gbRam", LargerRunner{"windows", "x64", 16}},
		{"linux-arm64-4core", LargerRunner{"linux", "arm64", 4}},
		{"ubuntu-24.04-arm64-4-core", LargerRunner{"linux", "arm64", 4}},
		{"ubuntu-latest-16-cores", LargerRunner{"linux", "x64", 16}},
		{"windows-2022-8-cores", LargerRunner{"windows", "x64", 8}},
	}
	for _, tc := range cases {
		got, ok := ParseLargerRunnerLabel(tc.label)
		if !ok || got != tc.want {
			t.Errorf("ParseLargerRunnerLabel(%q) = %+v, %v; want %+v", tc.label, got, ok, tc.want)
		}
	}

	for _, label := range []string{"ubuntu-latest", "ubuntu-22.04", "windows-latest", "macos-14", "self-hosted"} {
		if got, ok := ParseLargerRunnerLabel(label); ok {
			t.Errorf("ParseLargerRunnerLabel(%q) = %+v; want no match", label, got)
		}
	}
}

func TestHostedCost(t *testing.T) {
	cases := []struct {
		label   string
		minutes float64
		cost    float64
		detail  string
	}{
		{"ubuntu-latest", 10, 0.08, "GitHub-hosted"},
		{"windows-latest", 10, 0.16, "GitHub-hosted"},
		{"macos-14", 10, 0.8, "GitHub-hosted"},
		{"ubuntu-24.04-arm64-4-core", 10, 0.10, "4-core arm64 @ $0.010/min"},
		{"Linux_x64_16Core_64gbRam", 2, 0.128, "16-core x64 @ $0.064/min"},
		{"Linux_x64_12Core", 10, 0.32, "12-core x64 (~8-core @ $0.032/min)"},
		{"Windows_x64_2Core", 1, 0.032, "2-core x64 (~4-core @ $0.032/min)"},
		{"macos-arm64-6core", 1, 0.16, "6-core arm64 (~5-core @ $0.160/min)"},
	}
	for _, tc := range cases {
		cost, detail := HostedCost(tc.label, tc.minutes)
		if math.Abs(cost-tc.cost) > 1e-9 || detail != tc.detail {
			t.Errorf("HostedCost(%q, %v) = %v, %q; want %v, %q", tc.label, tc.minutes, cost, detail, tc.cost, tc.detail)
		}
	}
}

func TestClosestCores_PrefersSmallerOnTie(t *testing.T) {
	table := map[int]float64{8: 1, 16: 2}
	if got := closestCores(table, 12); got != 8 {
		t.Errorf("closestCores(12) = %d; want 8", got)
	}
	if got := closestCores(table, 100); got != 16 {
		t.Errorf("closestCores(100) = %d; want 16", got)
	}
}
