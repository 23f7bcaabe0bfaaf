package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficlens/trafficlens/internal/pipeline"
)

func TestReportStageRendersFullReport(t *testing.T) {
	stage := NewReportStage(nil)
	state := stateWithData("raport")
	state.Analysis = &pipeline.AnalysisResult{
		Insights: []pipeline.Insight{{
			Category: "usage_patterns", Title: "Heavy usage by jkowalski-pc",
			Description: "25 hours of social media", Confidence: "high", Impact: "high",
		}},
		Statistics: pipeline.Statistics{
			TotalRecords: 1500,
			KeyMetrics:   map[string]float64{"total_duration": 90_000_000},
		},
	}

	out, err := stage.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, pipeline.StageEnd, out.NextStage)
	require.Len(t, out.Messages, 1)
	doc := out.Messages[0]
	assert.Contains(t, doc, "jkowalski-pc")
	assert.Contains(t, doc, "1.0 days (25.0 hours)")
	assert.Contains(t, doc, "Executive Summary")
}

func TestReportStageLimitedAnalysisFallback(t *testing.T) {
	stage := NewReportStage(nil)

	for _, analysis := range []*pipeline.AnalysisResult{nil, {}} {
		state := stateWithData("raport")
		state.Analysis = analysis

		out, err := stage.Run(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, pipeline.StageEnd, out.NextStage)
		assert.Contains(t, out.Messages[0], "Limited Analysis Available")
	}
}

func TestReportStageRecoversFromPanic(t *testing.T) {
	stage := NewReportStage(nil)
	stage.now = func() time.Time { panic("clock exploded") }

	state := stateWithData("raport")
	state.Analysis = &pipeline.AnalysisResult{
		Insights: []pipeline.Insight{{Title: "x"}},
	}

	out, err := stage.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Contains(t, out.Messages[0], "Report Generation Error")
	assert.Contains(t, out.Messages[0], "clock exploded")
	assert.Equal(t, pipeline.StageEnd, out.NextStage)
}
