package pipeline

import "time"

// Outcome is the contract every stage returns to the orchestrator: messages
// to append, partial state updates, and the proposed next stage. Stages never
// mutate State directly; the orchestrator merges the outcome.
type Outcome struct {
	From      Stage
	Messages  []string
	NextStage Stage
	// SQLResult, when non-nil, is appended to State.SQLResults.
	SQLResult *QueryResult
	// Analysis, when non-nil and non-empty, replaces State.Analysis.
	Analysis *AnalysisResult
}

// Apply merges an outcome into the state. The merge preserves the state
// invariants: the conversation is append-only, query results are additive,
// and a non-empty analysis is only ever replaced by another non-empty one.
// The iteration counter increases by exactly one per applied outcome.
func Apply(s *State, o *Outcome) {
	now := time.Now()
	for _, m := range o.Messages {
		s.Conversation = append(s.Conversation, Message{
			Stage:     o.From,
			Content:   m,
			Timestamp: now,
		})
	}
	if o.SQLResult != nil {
		s.SQLResults = append(s.SQLResults, *o.SQLResult)
	}
	if o.Analysis != nil && !o.Analysis.Empty() {
		s.Analysis = o.Analysis
	}
	s.CurrentStage = o.From
	s.NextStage = o.NextStage
	s.Iterations++
	s.Visited = append(s.Visited, o.From)
}
