package catalog

import "testing"

func TestParseVCPUs(t *testing.T) {
	valid := map[string]int{
		"8 vCPUs":   8,
		"16 vCPUs":  16,
		"192 vCPUs": 192,
		"1 vCPU":    1,
		"4vCPUs":    4,
		"8 VCPUS":   8,
	}
	for in, want := range valid {
		got, ok := ParseVCPUs(in)
		if !ok || got != want {
			t.Errorf("ParseVCPUs(%q) = %d, %v; want %d, true", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "no cpus here", "8 cores"} {
		if _, ok := ParseVCPUs(in); ok {
			t.Errorf("ParseVCPUs(%q) should fail", in)
		}
	}
}

func TestParseMemoryGB(t *testing.T) {
	valid := map[string]float64{
		"32 GiB":   32,
		"8 GB":     8,
		"2048 GiB": 2048,
		"0.5 GiB":  0.5,
		"16GiB":    16,
		"32 gib":   32,
	}
	for in, want := range valid {
		got, ok := ParseMemoryGB(in)
		if !ok || got != want {
			t.Errorf("ParseMemoryGB(%q) = %v, %v; want %v, true", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "no memory here", "32 MiB"} {
		if _, ok := ParseMemoryGB(in); ok {
			t.Errorf("ParseMemoryGB(%q) should fail", in)
		}
	}
}

func TestParseHourlyCost(t *testing.T) {
	valid := map[string]float64{
		"$0.204 hourly": 0.204,
		"$1.50 hourly":  1.5,
		"$98.32 hourly": 98.32,
		"$0.008 hourly": 0.008,
		"$0.204 Hourly": 0.204,
	}
	for in, want := range valid {
		got := ParseHourlyCost(in)
		if got == nil || *got != want {
			t.Errorf("ParseHourlyCost(%q) = %v; want %v", in, got, want)
		}
	}
	for _, in := range []string{"", "0.204 hourly", "$0.204", "unavailable"} {
		if got := ParseHourlyCost(in); got != nil {
			t.Errorf("ParseHourlyCost(%q) = %v; want nil", in, *got)
		}
	}
}

func TestParseEBSBandwidth(t *testing.T) {
	valid := map[string]int{
		"10000 Mbps": 10000,
		"5000 Mbps":  5000,
		"80000 Mbps": 80000,
		"10000Mbps":  10000,
		"10000 mbps": 10000,
	}
	for in, want := range valid {
		got := ParseEBSBandwidth(in)
		if got == nil || *got != want {
			t.Errorf("ParseEBSBandwidth(%q) = %v; want %d", in, got, want)
		}
	}
	for _, in := range []string{"", "10 Gbps", "no bandwidth"} {
		if got := ParseEBSBandwidth(in); got != nil {
			t.Errorf("ParseEBSBandwidth(%q) = %d; want nil", in, *got)
		}
	}
}

func TestParseLocalStorage(t *testing.T) {
	cases := []struct {
		in   string
		nvme bool
		gb   int // 0 means nil
	}{
		{"EBS only", false, 0},
		{"", false, 0},
		{"118 GB NVMe SSD", true, 118},
		{"237 GB NVMe SSD", true, 237},
		{"8x3800 GB NVMe SSD", true, 30400},
		{"2 x 1900 GB NVMe SSD", true, 3800},
		{"NVMe SSD", true, 0},
	}
	for _, tc := range cases {
		if got := ParseHasLocalNVMe(tc.in); got != tc.nvme {
			t.Errorf("ParseHasLocalNVMe(%q) = %v; want %v", tc.in, got, tc.nvme)
		}
		got := ParseLocalStorageGB(tc.in)
		switch {
		case tc.gb == 0 && got != nil:
			t.Errorf("ParseLocalStorageGB(%q) = %d; want nil", tc.in, *got)
		case tc.gb != 0 && (got == nil || *got != tc.gb):
			t.Errorf("ParseLocalStorageGB(%q) = %v; want %d", tc.in, got, tc.gb)
		}
	}
}
