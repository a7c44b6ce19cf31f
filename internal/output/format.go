package output

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDuration renders d as "42s", "3m 07s" or "1h 05m".
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.0fs", secs)
	}
	total := int(math.Floor(secs))
	minutes, s := total/60, total%60
	if minutes < 60 {
		return fmt.Sprintf("%dm %02ds", minutes, s)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// FormatRange renders values as "N/A", a single value or "min-max", with
// suffix appended.
func FormatRange[T int | float64](values []T, suffix string) string {
	if len(values) == 0 {
		return "N/A"
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo == hi {
		return fmt.Sprintf("%v%s", lo, suffix)
	}
	return fmt.Sprintf("%v-%v%s", lo, hi, suffix)
}

// formatHourly renders an optional hourly price.
func formatHourly(v *float64) string {
	if v == nil || *v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("$%.4f", *v)
}

// formatMbps renders an optional bandwidth with thousands separators.
func formatMbps(v *int) string {
	if v == nil || *v == 0 {
		return "N/A"
	}
	return humanize.Comma(int64(*v))
}

// formatStorage renders local NVMe capacity, e.g. "118 GB".
func formatStorage(nvme bool, gb *int) string {
	switch {
	case !nvme:
		return "-"
	case gb == nil:
		return "yes"
	default:
		return humanize.Bytes(uint64(*gb) * 1000 * 1000 * 1000)
	}
}
