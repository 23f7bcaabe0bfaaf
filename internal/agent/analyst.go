package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/trafficlens/trafficlens/internal/llm"
	"github.com/trafficlens/trafficlens/internal/pipeline"
	"github.com/trafficlens/trafficlens/internal/prompt"
)

// AnalystStage turns raw SQL results into a structured analysis. A parse
// failure never propagates; the stage synthesizes a low-confidence result
// instead.
type AnalystStage struct {
	client      llm.Client
	templateDir string
	logger      *slog.Logger
}

// NewAnalystStage builds the analyst stage. client may be nil, in which case
// every run produces the synthesized fallback analysis.
func NewAnalystStage(client llm.Client, templateDir string, logger *slog.Logger) *AnalystStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalystStage{client: client, templateDir: templateDir, logger: logger}
}

// Run analyzes the accumulated SQL results.
func (a *AnalystStage) Run(ctx context.Context, state *pipeline.State) (*pipeline.Outcome, error) {
	if len(state.SQLResults) == 0 {
		return &pipeline.Outcome{
			From:      pipeline.StageAnalyst,
			Messages:  []string{"No data to analyze yet. Routing back to the SQL stage."},
			NextStage: pipeline.StageSQL,
		}, nil
	}
	if latest := state.LatestSQLResult(); latest.Status == pipeline.StatusError {
		return &pipeline.Outcome{
			From:      pipeline.StageAnalyst,
			Messages:  []string{fmt.Sprintf("The last data query failed (%s); analysis is not possible.", latest.ErrorDetail)},
			NextStage: pipeline.StageSupervisor,
		}, nil
	}

	focus := deriveFocus(state)
	analysis := a.analyze(ctx, state, focus)
	analysis.GeneratedAt = time.Now()

	return &pipeline.Outcome{
		From:      pipeline.StageAnalyst,
		Messages:  []string{summarize(analysis, focus)},
		NextStage: pipeline.StageReportWriter,
		Analysis:  analysis,
	}, nil
}

// focusKeywords map conversation stems to an analysis-focus directive.
var focusKeywords = []struct {
	stems []string
	focus string
}{
	{[]string{"trend", "wzrost", "spad"}, "trend"},
	{[]string{"użytkown", "user", "kto"}, "user"},
	{[]string{"aplikacj", "application", "app"}, "application"},
	{[]string{"czas", "time", "godzin", "hour"}, "time"},
}

func deriveFocus(state *pipeline.State) string {
	var text strings.Builder
	for _, m := range state.Conversation {
		text.WriteString(strings.ToLower(m.Content))
		text.WriteString(" ")
	}
	joined := text.String()
	for _, fk := range focusKeywords {
		if containsAny(joined, fk.stems) {
			return fk.focus
		}
	}
	return "general"
}

func (a *AnalystStage) analyze(ctx context.Context, state *pipeline.State, focus string) *pipeline.AnalysisResult {
	if a.client == nil {
		return fallbackAnalysis(state, "no language model configured")
	}

	serialized, err := json.MarshalIndent(state.SQLResults, "", "  ")
	if err != nil {
		return fallbackAnalysis(state, fmt.Sprintf("could not serialize results: %v", err))
	}
	tmpl, err := prompt.Load("analyst-system.md", a.templateDir)
	if err != nil {
		return fallbackAnalysis(state, fmt.Sprintf("analysis prompt unavailable: %v", err))
	}
	system, err := prompt.Render(tmpl, prompt.Vars{
		"focus":       focus,
		"sql_results": string(serialized),
	})
	if err != nil {
		return fallbackAnalysis(state, fmt.Sprintf("analysis prompt render failed: %v", err))
	}

	response, err := a.client.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: state.Question},
	})
	if err != nil {
		a.logger.Warn("analysis generation failed", "error", err)
		return fallbackAnalysis(state, fmt.Sprintf("model call failed: %v", err))
	}

	result, err := ParseAnalysis(response)
	if err != nil {
		a.logger.Warn("analysis parse failed, synthesizing fallback", "error", err)
		return fallbackAnalysis(state, err.Error())
	}
	return result
}

// ParseAnalysis extracts the JSON object between the first "{" and the last
// "}" of a model response and requires all four content keys to be present.
func ParseAnalysis(response string) (*pipeline.AnalysisResult, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	raw := response[start : end+1]

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}
	for _, required := range []string{"insights", "trends", "statistics", "recommendations"} {
		if _, ok := keys[required]; !ok {
			return nil, fmt.Errorf("analysis JSON missing %q", required)
		}
	}

	var result pipeline.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decode analysis JSON: %w", err)
	}
	return &result, nil
}

// rawOutputLimit caps how much query output is embedded in the fallback
// analysis.
const rawOutputLimit = 2000

// fallbackAnalysis synthesizes a minimal structured result so downstream
// stages always have all four content keys to work with. The latest query
// output is carried along so the rendered report still shows the data.
func fallbackAnalysis(state *pipeline.State, reason string) *pipeline.AnalysisResult {
	successes := 0
	for _, r := range state.SQLResults {
		if r.Status == pipeline.StatusSuccess {
			successes++
		}
	}
	insights := []pipeline.Insight{{
		Category:    "usage_patterns",
		Title:       "Automated analysis unavailable",
		Description: fmt.Sprintf("Structured analysis could not be produced (%s). The raw query output is listed under Other Findings.", reason),
		Confidence:  "low",
		Impact:      "low",
	}}
	if latest := state.LatestSQLResult(); latest != nil && latest.Status == pipeline.StatusSuccess && latest.Output != "" {
		insights = append(insights, pipeline.Insight{
			Category:    "raw_data",
			Title:       "Raw Query Output",
			Description: clip(latest.Output, rawOutputLimit),
			Confidence:  "high",
			Impact:      "low",
		})
	}
	return &pipeline.AnalysisResult{
		Insights: insights,
		Trends: []pipeline.Trend{},
		Statistics: pipeline.Statistics{
			KeyMetrics: map[string]float64{
				"queries_succeeded": float64(successes),
				"queries_total":     float64(len(state.SQLResults)),
			},
		},
		Recommendations: []pipeline.Recommendation{{
			Priority:    "medium",
			Title:       "Review the raw query output",
			Description: "Verify the fetched data manually before acting on this report.",
		}},
		OverallConfidence: "low",
	}
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + " [truncated]"
}

func summarize(a *pipeline.AnalysisResult, focus string) string {
	return fmt.Sprintf(
		"Analysis complete (focus: %s): %d insights, %d trends, %d recommendations. Handing off to the report writer.",
		focus, len(a.Insights), len(a.Trends), len(a.Recommendations),
	)
}
