package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficlens/trafficlens/internal/pipeline"
	"github.com/trafficlens/trafficlens/internal/report"
)

func stateWithData(question string) *pipeline.State {
	state := pipeline.New(question)
	state.SQLResults = []pipeline.QueryResult{{
		Query:  "SELECT srcname, SUM(duration) AS total_ms FROM logs GROUP BY srcname",
		Status: pipeline.StatusSuccess,
		Output: "jkowalski-pc | 90000000",
	}}
	return state
}

const validAnalysisJSON = `Here is the analysis you asked for:
{
  "insights": [
    {"category": "usage_patterns", "title": "Heavy usage by jkowalski-pc", "description": "25 hours total", "confidence": "high", "impact": "high"}
  ],
  "trends": [
    {"metric": "usage", "direction": "increasing", "magnitude": 10.5, "time_period": "week", "significance": "high"}
  ],
  "statistics": {"total_records": 1500, "date_range_start": "2024-03-01", "date_range_end": "2024-03-07", "data_quality_score": 0.95},
  "recommendations": [
    {"priority": "high", "title": "Limit social media", "description": "Apply policy"}
  ]
}
Hope that helps!`

func TestAnalystParsesWrappedJSON(t *testing.T) {
	client := &scriptedClient{responses: []string{validAnalysisJSON}}
	stage := NewAnalystStage(client, "", nil)

	out, err := stage.Run(context.Background(), stateWithData("analiza użycia"))
	require.NoError(t, err)

	require.NotNil(t, out.Analysis)
	assert.Equal(t, pipeline.StageReportWriter, out.NextStage)
	require.Len(t, out.Analysis.Insights, 1)
	assert.Equal(t, "Heavy usage by jkowalski-pc", out.Analysis.Insights[0].Title)
	assert.Equal(t, 1500, out.Analysis.Statistics.TotalRecords)
	assert.InDelta(t, 10.5, out.Analysis.Trends[0].Magnitude, 1e-9)
}

func TestAnalystRejectsEmptyResults(t *testing.T) {
	stage := NewAnalystStage(nil, "", nil)

	out, err := stage.Run(context.Background(), pipeline.New("analiza"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageSQL, out.NextStage)
	assert.Nil(t, out.Analysis)
}

func TestAnalystRejectsFailedQuery(t *testing.T) {
	stage := NewAnalystStage(nil, "", nil)
	state := pipeline.New("analiza")
	state.SQLResults = []pipeline.QueryResult{{
		Status: pipeline.StatusError, ErrorDetail: "no such column",
	}}

	out, err := stage.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageSupervisor, out.NextStage)
	assert.Contains(t, out.Messages[0], "no such column")
}

func TestAnalystParseFailureSynthesizesFallback(t *testing.T) {
	for _, response := range []string{
		"I could not produce JSON, sorry.",
		`{"insights": [truncated`,
		`{"insights": [], "trends": []}`, // missing keys
	} {
		client := &scriptedClient{responses: []string{response}}
		stage := NewAnalystStage(client, "", nil)

		out, err := stage.Run(context.Background(), stateWithData("analiza"))
		require.NoError(t, err, response)

		require.NotNil(t, out.Analysis, response)
		assert.False(t, out.Analysis.Empty())
		require.Len(t, out.Analysis.Insights, 2)
		assert.Equal(t, "low", out.Analysis.Insights[0].Confidence)
		assert.Contains(t, out.Analysis.Insights[1].Description, "jkowalski-pc")
		assert.NotNil(t, out.Analysis.Trends)
		assert.NotEmpty(t, out.Analysis.Recommendations)
		assert.Equal(t, pipeline.StageReportWriter, out.NextStage)
	}
}

func TestAnalystWithoutModelUsesFallback(t *testing.T) {
	stage := NewAnalystStage(nil, "", nil)

	out, err := stage.Run(context.Background(), stateWithData("analiza"))
	require.NoError(t, err)
	require.NotNil(t, out.Analysis)
	assert.Equal(t, "low", out.Analysis.OverallConfidence)
	assert.InDelta(t, 1, out.Analysis.Statistics.KeyMetrics["queries_succeeded"], 1e-9)
}

func TestFallbackAnalysisRendersRawOutput(t *testing.T) {
	stage := NewAnalystStage(nil, "", nil)

	out, err := stage.Run(context.Background(), stateWithData("analiza"))
	require.NoError(t, err)
	require.NotNil(t, out.Analysis)

	doc := report.Render(out.Analysis, time.Now())
	assert.Contains(t, doc, "Other Findings")
	assert.Contains(t, doc, "jkowalski-pc | 90000000")
}

func TestClipLongOutput(t *testing.T) {
	long := strings.Repeat("x", rawOutputLimit+100)
	clipped := clip(long, rawOutputLimit)
	assert.Len(t, clipped, rawOutputLimit+len(" [truncated]"))
	assert.Equal(t, "short", clip("short", rawOutputLimit))
}

func TestDeriveFocus(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"jaki jest trend użycia?", "trend"},
		{"kto najwięcej gra?", "user"},
		{"która aplikacja dominuje?", "application"},
		{"ile czasu spędzono?", "time"},
		{"co ciekawego w logach?", "general"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deriveFocus(pipeline.New(tt.question)), tt.question)
	}
}

func TestParseAnalysisBraceMatching(t *testing.T) {
	// Text before and after the object must not break parsing.
	result, err := ParseAnalysis("noise " + `{"insights":[],"trends":[],"statistics":{"total_records":3},"recommendations":[]}` + " trailing")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Statistics.TotalRecords)

	_, err = ParseAnalysis("no braces at all")
	assert.Error(t, err)
}
