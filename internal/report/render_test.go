package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trafficlens/trafficlens/internal/config"
	"github.com/trafficlens/trafficlens/internal/pipeline"
)

func sampleAnalysis() *pipeline.AnalysisResult {
	return &pipeline.AnalysisResult{
		Insights: []pipeline.Insight{
			{Category: "usage_patterns", Title: "Heavy social media usage by jkowalski-pc", Description: "Over 25 hours in the period.", Confidence: "high", Impact: "high"},
			{Category: "security", Title: "High-risk application traffic", Confidence: "medium", Impact: "medium"},
			{Category: "custom", Title: "Uncategorized finding", Description: "misc"},
		},
		Trends: []pipeline.Trend{
			{Metric: "social media usage", Direction: "increasing", Magnitude: 12.5, TimePeriod: "analyzed period", Significance: "high"},
		},
		Statistics: pipeline.Statistics{
			TotalRecords:     15000,
			DateRangeStart:   "2024-03-01",
			DateRangeEnd:     "2024-03-07",
			DataQualityScore: 0.9,
			KeyMetrics: map[string]float64{
				"total_duration": 90_000_000,
				"total_rcvdbyte": 1_572_864,
				"session_count":  15000,
			},
		},
		Recommendations: []pipeline.Recommendation{
			{Priority: "high", Title: "Restrict social media during work hours", Description: "Apply a policy.", EstimatedImpact: "high", ImplementationEffort: "low"},
			{Priority: "low", Title: "Review shaper configuration"},
		},
		OverallConfidence: "high",
	}
}

func TestRenderSections(t *testing.T) {
	out := Render(sampleAnalysis(), time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"# Data Analysis Report",
		"## Executive Summary",
		"Key finding: Heavy social media usage by jkowalski-pc.",
		"### Usage Patterns",
		"### Security Insights",
		"### Other Findings",
		"## Trends & Patterns",
		"increasing by 12.5%",
		"### Priority: High",
		"### Priority: Low",
		"- **Total Records**: 15,000",
		"- **total_duration**: 1.0 days (25.0 hours)",
		"- **total_rcvdbyte**: 1.5 MB",
		"- **session_count**: 15,000",
		"**Report Generated**: 2024-03-08 12:00:00",
	} {
		assert.Contains(t, out, want)
	}

	// Priority order is critical, high, medium, low.
	assert.Less(t, strings.Index(out, "Priority: High"), strings.Index(out, "Priority: Low"))
}

func TestRenderEmptyAnalysis(t *testing.T) {
	out := Render(&pipeline.AnalysisResult{}, time.Now())
	assert.Contains(t, out, "No significant insights identified")
	assert.Contains(t, out, "No clear trends identified")
	assert.Contains(t, out, "No specific recommendations")
}

func TestLimitedAnalysis(t *testing.T) {
	out := LimitedAnalysis()
	assert.Contains(t, out, "Limited Analysis Available")
}

func TestErrorReport(t *testing.T) {
	results := []pipeline.QueryResult{
		{Status: pipeline.StatusSuccess},
		{Status: pipeline.StatusError},
	}
	out := ErrorReport(errors.New("boom"), results, time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "Report Generation Error")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "2024-03-08 12:00:00")
	assert.Contains(t, out, "1 of 2 queries succeeded")
}

func TestCostBreakdown(t *testing.T) {
	rates := config.Rates{
		HourlyPLN: 150, USD: 4.05, EUR: 4.30,
		GoldGramPLN: 280, BTCPLN: 180000, CoffeePLN: 15, NetflixPLN: 60,
	}
	c := Cost(7_200_000, rates) // 2 hours

	assert.InDelta(t, 2.0, c.Hours, 1e-9)
	assert.InDelta(t, 300.0, c.PLN, 1e-9)
	assert.InDelta(t, 300.0/4.05, c.USD, 1e-9)
	assert.InDelta(t, 20.0, c.CoffeeCups, 1e-9)
	assert.InDelta(t, 5.0, c.NetflixMonths, 1e-9)

	out := c.Render()
	assert.Contains(t, out, "2 hours")
	assert.Contains(t, out, "300 PLN")
}
