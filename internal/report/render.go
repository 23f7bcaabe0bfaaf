// Package report renders structured analysis output into the final sectioned
// document. Rendering never fails: missing sections degrade to placeholder
// text so the pipeline always has something to return to the user.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/trafficlens/trafficlens/internal/pipeline"
)

// Insight categories, in render order.
var insightSections = []struct {
	category string
	title    string
}{
	{"usage_patterns", "Usage Patterns"},
	{"performance", "Performance Analysis"},
	{"security", "Security Insights"},
	{"trends", "Trend Analysis"},
}

// Recommendation priorities, in render order.
var priorityOrder = []string{"critical", "high", "medium", "low"}

// Render assembles the full report from an analysis. Each section formats
// independently, so a malformed section never takes down the whole document.
func Render(a *pipeline.AnalysisResult, now time.Time) string {
	sections := []string{
		"# Data Analysis Report",
		executiveSummary(a),
		insightsSection(a.Insights),
		trendsSection(a.Trends),
		recommendationsSection(a.Recommendations),
		supportingData(a.Statistics),
		footer(now),
	}
	return strings.Join(sections, "\n\n")
}

// LimitedAnalysis is the fallback document used when no structured analysis
// is available at report time.
func LimitedAnalysis() string {
	return strings.Join([]string{
		"# Data Analysis Report",
		"## Limited Analysis Available",
		"The analysis data was not available in the expected structured format.",
		"Review the data analysis pipeline before relying on this report.",
	}, "\n\n")
}

// ErrorReport produces a structured document for a failure during assembly.
// It restates what data was on hand so the report is still useful.
func ErrorReport(err error, sqlResults []pipeline.QueryResult, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Data Analysis Report\n\n")
	b.WriteString("## Report Generation Error\n\n")
	fmt.Fprintf(&b, "- **Error type**: report assembly failure\n")
	fmt.Fprintf(&b, "- **Message**: %v\n", err)
	fmt.Fprintf(&b, "- **Timestamp**: %s\n\n", now.Format("2006-01-02 15:04:05"))

	succeeded := 0
	for _, r := range sqlResults {
		if r.Status == pipeline.StatusSuccess {
			succeeded++
		}
	}
	fmt.Fprintf(&b, "Data available at failure time: %d of %d queries succeeded.\n",
		succeeded, len(sqlResults))
	return b.String()
}

func executiveSummary(a *pipeline.AnalysisResult) string {
	out := "## Executive Summary\n\n"
	if len(a.Insights) == 0 {
		return out + "Analysis completed. No significant findings were identified in the dataset."
	}
	top := a.Insights[0]
	out += fmt.Sprintf("Key finding: %s.", strings.TrimSuffix(top.Title, "."))
	if a.OverallConfidence != "" {
		out += fmt.Sprintf(" Overall confidence: %s.", a.OverallConfidence)
	}
	return out
}

func insightsSection(insights []pipeline.Insight) string {
	if len(insights) == 0 {
		return "## Key Findings\n\nNo significant insights identified."
	}
	var b strings.Builder
	b.WriteString("## Key Findings\n")
	for _, sec := range insightSections {
		var matched []pipeline.Insight
		for _, in := range insights {
			if in.Category == sec.category {
				matched = append(matched, in)
			}
		}
		if len(matched) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n\n", sec.title)
		for _, in := range matched {
			fmt.Fprintf(&b, "- **%s** (confidence: %s, impact: %s)\n", in.Title, orDefault(in.Confidence, "medium"), orDefault(in.Impact, "medium"))
			if in.Description != "" {
				fmt.Fprintf(&b, "  %s\n", in.Description)
			}
		}
	}
	// Insights with unknown categories still get listed.
	var stray []pipeline.Insight
	for _, in := range insights {
		if !knownCategory(in.Category) {
			stray = append(stray, in)
		}
	}
	if len(stray) > 0 {
		b.WriteString("\n### Other Findings\n\n")
		for _, in := range stray {
			fmt.Fprintf(&b, "- **%s**: %s\n", in.Title, in.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func knownCategory(c string) bool {
	for _, sec := range insightSections {
		if sec.category == c {
			return true
		}
	}
	return false
}

func trendsSection(trends []pipeline.Trend) string {
	if len(trends) == 0 {
		return "## Trends & Patterns\n\nNo clear trends identified in the analyzed period."
	}
	var b strings.Builder
	b.WriteString("## Trends & Patterns\n\n")
	for _, t := range trends {
		fmt.Fprintf(&b, "- **%s**: %s", t.Metric, t.Direction)
		if t.Magnitude != 0 {
			fmt.Fprintf(&b, " by %.1f%%", t.Magnitude)
		}
		if t.TimePeriod != "" {
			fmt.Fprintf(&b, " over %s", t.TimePeriod)
		}
		if t.Significance != "" {
			fmt.Fprintf(&b, " (%s)", t.Significance)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func recommendationsSection(recs []pipeline.Recommendation) string {
	if len(recs) == 0 {
		return "## Recommendations\n\nNo specific recommendations at this time."
	}
	var b strings.Builder
	b.WriteString("## Recommendations\n")
	for _, prio := range priorityOrder {
		var matched []pipeline.Recommendation
		for _, r := range recs {
			if r.Priority == prio {
				matched = append(matched, r)
			}
		}
		if len(matched) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### Priority: %s\n\n", capitalize(prio))
		for _, r := range matched {
			fmt.Fprintf(&b, "- **%s**\n", r.Title)
			if r.Description != "" {
				fmt.Fprintf(&b, "  %s\n", r.Description)
			}
			if r.EstimatedImpact != "" {
				fmt.Fprintf(&b, "  Estimated impact: %s.", r.EstimatedImpact)
				if r.ImplementationEffort != "" {
					fmt.Fprintf(&b, " Effort: %s.", r.ImplementationEffort)
				}
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func supportingData(stats pipeline.Statistics) string {
	var b strings.Builder
	b.WriteString("## Supporting Data\n\n")
	b.WriteString("### Dataset Overview\n\n")
	fmt.Fprintf(&b, "- **Total Records**: %s\n", FormatCount(float64(stats.TotalRecords)))
	if stats.DateRangeStart != "" && stats.DateRangeEnd != "" {
		fmt.Fprintf(&b, "- **Date Range**: %s to %s\n", stats.DateRangeStart, stats.DateRangeEnd)
	}
	fmt.Fprintf(&b, "- **Data Quality Score**: %.0f%%\n", stats.DataQualityScore*100)

	if len(stats.KeyMetrics) > 0 {
		b.WriteString("\n### Key Metrics\n\n")
		for _, name := range sortedKeys(stats.KeyMetrics) {
			fmt.Fprintf(&b, "- **%s**: %s\n", name, FormatMetric(name, stats.KeyMetrics[name]))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func footer(now time.Time) string {
	return fmt.Sprintf("---\n**Report Generated**: %s", now.Format("2006-01-02 15:04:05"))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
