package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficlens/trafficlens/internal/pipeline"
)

func TestSupervisorRoutesDataQuestionToSQL(t *testing.T) {
	s := NewSupervisor(nil, nil, "", nil)

	for _, q := range []string{
		"Przygotuj raport wykorzystania aplikacji",
		"pokaż aktywność użytkowników",
		"show me the usage statistics",
	} {
		state := pipeline.New(q)
		out, err := s.Run(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, pipeline.StageSQL, out.NextStage, q)
		require.Len(t, out.Messages, 1)
	}
}

func TestSupervisorRoutesFetchedDataToAnalyst(t *testing.T) {
	s := NewSupervisor(nil, nil, "", nil)
	state := pipeline.New("raport")
	state.SQLResults = []pipeline.QueryResult{{Status: pipeline.StatusSuccess}}

	out, err := s.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageAnalyst, out.NextStage)
}

func TestSupervisorRoutesAnalyzedDataToReportWriter(t *testing.T) {
	s := NewSupervisor(nil, nil, "", nil)
	state := pipeline.New("raport")
	state.SQLResults = []pipeline.QueryResult{{Status: pipeline.StatusSuccess}}
	state.Analysis = &pipeline.AnalysisResult{
		Insights: []pipeline.Insight{{Title: "x"}},
	}

	out, err := s.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageReportWriter, out.NextStage)
}

func TestSupervisorEndsAfterReportWriter(t *testing.T) {
	s := NewSupervisor(nil, nil, "", nil)
	state := pipeline.New("dziękuję")
	state.CurrentStage = pipeline.StageReportWriter

	out, err := s.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageEnd, out.NextStage)
}

func TestSupervisorFallbackClassification(t *testing.T) {
	s := NewSupervisor(nil, nil, "", nil)

	// An utterance with no data keywords, but a prior stage message that
	// mentions the database.
	state := pipeline.New("hm")
	state.Conversation = append(state.Conversation, pipeline.Message{
		Stage: pipeline.StageSupervisor, Content: "potrzebne są dane z bazy",
	})
	out, err := s.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageSQL, out.NextStage)

	// Nothing matches anywhere: resolve to end, never error.
	state = pipeline.New("hm")
	out, err = s.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageEnd, out.NextStage)
}

func TestSupervisorAlwaysAppendsOneMessage(t *testing.T) {
	s := NewSupervisor(nil, nil, "", nil)
	for _, q := range []string{"raport", "hm", ""} {
		out, err := s.Run(context.Background(), pipeline.New(q))
		require.NoError(t, err)
		assert.Len(t, out.Messages, 1)
		assert.Equal(t, pipeline.StageSupervisor, out.From)
	}
}

func TestSupervisorRoutingNoteGuidesFallback(t *testing.T) {
	// Deterministic rules cannot place "hm"; the model's note can.
	client := &scriptedClient{responses: []string{"Najpierw pobierz dane z bazy logów."}}
	s := NewSupervisor(nil, client, "", nil)

	out, err := s.Run(context.Background(), pipeline.New("hm"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageSQL, out.NextStage)
	assert.Equal(t, 1, client.calls)
}

func TestSupervisorRoutesWithoutModelOnError(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("rate limited")}}
	s := NewSupervisor(nil, client, "", nil)

	out, err := s.Run(context.Background(), pipeline.New("hm"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageEnd, out.NextStage)
}

func TestKeywordClassifier(t *testing.T) {
	c := KeywordClassifier{}

	assert.True(t, c.DataRequest("chcę raport za marzec"))
	assert.True(t, c.DataRequest("application usage please"))
	assert.False(t, c.DataRequest("dzień dobry"))

	assert.Equal(t, IntentData, c.Classify("pobierz dane z bazy"))
	assert.Equal(t, IntentAnalysis, c.Classify("potrzebna analiza"))
	assert.Equal(t, IntentReport, c.Classify("podsumowanie gotowe"))
	assert.Equal(t, IntentNone, c.Classify("hello there"))
}
