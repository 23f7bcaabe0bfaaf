package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/trafficlens/trafficlens/internal/llm"
	"github.com/trafficlens/trafficlens/internal/pipeline"
	"github.com/trafficlens/trafficlens/internal/prompt"
)

// Supervisor decides which stage runs next. Routing is fully deterministic:
// rules are evaluated in priority order and unmatched input resolves to the
// terminal stage rather than erroring, so the pipeline always makes progress.
// When a language model is available its routing note feeds the final
// free-text classification; the model is never allowed to fail the run.
type Supervisor struct {
	classifier  Classifier
	client      llm.Client // nil disables the model-backed routing note
	templateDir string
	logger      *slog.Logger
}

// NewSupervisor builds a supervisor. A nil classifier falls back to the
// default keyword classifier; a nil client skips the routing note.
func NewSupervisor(classifier Classifier, client llm.Client, templateDir string, logger *slog.Logger) *Supervisor {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		classifier:  classifier,
		client:      client,
		templateDir: templateDir,
		logger:      logger,
	}
}

// Run picks the next stage and appends one explanatory message. It never
// returns an error.
func (s *Supervisor) Run(ctx context.Context, state *pipeline.State) (*pipeline.Outcome, error) {
	next, message := s.decide(ctx, state)
	s.logger.Debug("supervisor routed", "run_id", state.RunID, "next", next)
	return &pipeline.Outcome{
		From:      pipeline.StageSupervisor,
		Messages:  []string{message},
		NextStage: next,
	}, nil
}

func (s *Supervisor) decide(ctx context.Context, state *pipeline.State) (pipeline.Stage, string) {
	utterance := state.LastUserUtterance()
	hasSQL := len(state.SQLResults) > 0
	hasAnalysis := !state.Analysis.Empty()

	switch {
	case !hasSQL && s.classifier.DataRequest(utterance):
		return pipeline.StageSQL,
			"The question needs data from the log database. Handing it to the SQL stage."
	case hasSQL && !hasAnalysis:
		return pipeline.StageAnalyst,
			"Data has been fetched. Handing it to the analyst for interpretation."
	case hasSQL && hasAnalysis:
		return pipeline.StageReportWriter,
			"Data is fetched and analyzed. Handing off to the report writer."
	case state.CurrentStage == pipeline.StageReportWriter:
		return pipeline.StageEnd, "The report is complete. Ending the run."
	}

	// Free-text fallback: classify the model's routing note when one is
	// available, the most recent non-user turn otherwise.
	text := lastNonUserContent(state)
	if note := s.routingNote(ctx, state); note != "" {
		text = note
	}
	switch s.classifier.Classify(text) {
	case IntentData:
		return pipeline.StageSQL, "Fetching the requested data first."
	case IntentAnalysis:
		return pipeline.StageAnalyst, "Routing to the analyst."
	case IntentReport:
		if !hasSQL {
			return pipeline.StageSQL,
				"A report needs data first. Handing it to the SQL stage."
		}
		return pipeline.StageReportWriter, "Routing to the report writer."
	default:
		return pipeline.StageEnd, "No further work identified. Ending the run."
	}
}

// routingNote asks the model where the pipeline should go next. Any failure
// degrades to an empty note; routing never depends on the model succeeding.
func (s *Supervisor) routingNote(ctx context.Context, state *pipeline.State) string {
	if s.client == nil {
		return ""
	}
	tmpl, err := prompt.Load("supervisor-system.md", s.templateDir)
	if err != nil {
		return ""
	}
	system, err := prompt.Render(tmpl, prompt.Vars{"context": lastNonUserContent(state)})
	if err != nil {
		return ""
	}
	note, err := s.client.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: state.Question},
	})
	if err != nil {
		s.logger.Warn("routing note unavailable", "error", err)
		return ""
	}
	return strings.TrimSpace(note)
}

func lastNonUserContent(state *pipeline.State) string {
	for i := len(state.Conversation) - 1; i >= 0; i-- {
		if state.Conversation[i].Stage != pipeline.StageUser {
			return state.Conversation[i].Content
		}
	}
	return ""
}
