package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	vcpuRe       = regexp.MustCompile(`(?i)(\d+)\s*vCPUs?`)
	memoryRe     = regexp.MustCompile(`(?i)([\d.]+)\s*(?:GiB|GB)`)
	hourlyRe     = regexp.MustCompile(`(?i)\$([\d.]+)\s*hourly`)
	bandwidthRe  = regexp.MustCompile(`(?i)(\d+)\s*Mbps`)
	localDisksRe = regexp.MustCompile(`(?i)(?:(\d+)\s*x\s*)?(\d+)\s*GB`)
)

// ParseVCPUs parses "8 vCPUs". ok is false when s holds no vCPU count.
func ParseVCPUs(s string) (n int, ok bool) {
	m := vcpuRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// ParseMemoryGB parses "32 GiB" or "16 GB".
func ParseMemoryGB(s string) (gb float64, ok bool) {
	m := memoryRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	gb, err := strconv.ParseFloat(m[1], 64)
	return gb, err == nil
}

// ParseHourlyCost parses "$0.204 hourly". A bare number or a value without
// the "hourly" unit is not a price.
func ParseHourlyCost(s string) *float64 {
	m := hourlyRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseEBSBandwidth parses "10000 Mbps".
func ParseEBSBandwidth(s string) *int {
	m := bandwidthRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

// ParseHasLocalNVMe reports whether the instance storage column describes
// local NVMe disks ("118 GB NVMe SSD").
func ParseHasLocalNVMe(s string) bool {
	return strings.Contains(strings.ToLower(s), "nvme")
}

// ParseLocalStorageGB returns the total local disk size: "118 GB NVMe SSD"
// is 118 and "8x3800 GB NVMe SSD" is 30400. "EBS only" and empty values
// yield nil.
func ParseLocalStorageGB(s string) *int {
	m := localDisksRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	size, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	if m[1] != "" {
		count, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		size *= count
	}
	return &size
}
