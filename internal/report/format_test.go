package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{3_600_000, "1 hour"},
		{90_000_000, "1.0 days (25.0 hours)"},
		{7_200_000, "2 hours"},
		{5_400_000, "1.5 hours"},
		{60_000, "1 minute"},
		{90_000, "1.5 minutes"},
		{1_000, "1 second"},
		{45_000, "45 seconds"},
		{500, "500 ms"},
		{0, "0 ms"},
		{172_800_000, "2.0 days (48.0 hours)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.ms), "ms=%v", tt.ms)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    float64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{1_572_864, "1.5 MB"},
		{1073741824, "1.0 GB"},
		{1099511627776, "1.0 TB"},
		{0, "0 B"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.n), "n=%v", tt.n)
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,000", FormatCount(1000))
	assert.Equal(t, "-12,500", FormatCount(-12500))
	assert.Equal(t, "3.14", FormatCount(3.14))
}

func TestFormatMetricDispatch(t *testing.T) {
	assert.Equal(t, "1 hour", FormatMetric("total_duration", 3_600_000))
	assert.Equal(t, "1 hour", FormatMetric("czas_total", 3_600_000))
	assert.Equal(t, "2.0 KB", FormatMetric("sent_bytes", 2048))
	assert.Equal(t, "2,048", FormatMetric("session_count", 2048))
}
