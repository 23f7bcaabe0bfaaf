package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Millisecond unit boundaries.
const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// FormatDuration renders a millisecond quantity using the largest time unit
// whose value is at least 1. Day-scale durations also show the hour total,
// since "1.0 days" alone reads ambiguously in usage reports.
func FormatDuration(ms float64) string {
	switch {
	case ms >= msPerDay:
		days := ms / msPerDay
		hours := ms / msPerHour
		return fmt.Sprintf("%.1f days (%.1f hours)", days, hours)
	case ms >= msPerHour:
		return formatUnit(ms/msPerHour, "hour")
	case ms >= msPerMinute:
		return formatUnit(ms/msPerMinute, "minute")
	case ms >= msPerSecond:
		return formatUnit(ms/msPerSecond, "second")
	default:
		return fmt.Sprintf("%.0f ms", ms)
	}
}

// formatUnit prints whole quantities without a decimal and pluralizes.
func formatUnit(v float64, unit string) string {
	if v == float64(int64(v)) {
		n := int64(v)
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%.1f %ss", v, unit)
}

// FormatBytes renders a byte quantity with binary-prefix scaling.
func FormatBytes(n float64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	i := 0
	for n >= 1024 && i < len(units)-1 {
		n /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%.0f B", n)
	}
	return fmt.Sprintf("%.1f %s", n, units[i])
}

// FormatCount renders a number with thousands separators. Fractional values
// keep two decimal places.
func FormatCount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	whole := int64(v)
	frac := v - float64(whole)

	s := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String()
	if frac > 0.005 {
		out += fmt.Sprintf(".%02d", int(frac*100+0.5))
	}
	if neg {
		out = "-" + out
	}
	return out
}

var durationKeywords = []string{"duration", "time", "_ms", "czas"}
var byteKeywords = []string{"byte", "bajt"}

// FormatMetric renders one named key metric. Duration-indicating names are
// treated as millisecond quantities, byte-indicating names as byte counts,
// everything else as plain numbers.
func FormatMetric(name string, value float64) string {
	lower := strings.ToLower(name)
	for _, kw := range durationKeywords {
		if strings.Contains(lower, kw) {
			return FormatDuration(value)
		}
	}
	for _, kw := range byteKeywords {
		if strings.Contains(lower, kw) {
			return FormatBytes(value)
		}
	}
	return FormatCount(value)
}
