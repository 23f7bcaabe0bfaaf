// Package orchestrator drives one question through the stage graph until a
// terminal stage or the iteration cap, whichever comes first.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trafficlens/trafficlens/internal/agent"
	"github.com/trafficlens/trafficlens/internal/pipeline"
	"github.com/trafficlens/trafficlens/internal/report"
)

// EventLogger records dispatch events for post-hoc inspection. Logging
// failures are never allowed to affect the pipeline.
type EventLogger interface {
	LogPipelineEvent(runID, stage, event, detail string) error
}

// Orchestrator owns the stage graph and the shared state for one question at
// a time. Stages run strictly sequentially; each runs to completion before
// the next dispatch.
type Orchestrator struct {
	stages        map[pipeline.Stage]agent.Stage
	events        EventLogger // may be nil
	maxIterations int
	logger        *slog.Logger
}

// Deps carries the orchestrator's dependencies.
type Deps struct {
	Supervisor   agent.Stage
	SQL          agent.Stage
	Analyst      agent.Stage
	ReportWriter agent.Stage
	Events       EventLogger
	// MaxIterations bounds stage dispatches per question. Values below 1
	// fall back to 10.
	MaxIterations int
	Logger        *slog.Logger
}

// New wires the stage graph.
func New(d Deps) *Orchestrator {
	if d.MaxIterations < 1 {
		d.MaxIterations = 10
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Orchestrator{
		stages: map[pipeline.Stage]agent.Stage{
			pipeline.StageSupervisor:   d.Supervisor,
			pipeline.StageSQL:          d.SQL,
			pipeline.StageAnalyst:      d.Analyst,
			pipeline.StageReportWriter: d.ReportWriter,
		},
		events:        d.Events,
		maxIterations: d.MaxIterations,
		logger:        d.Logger,
	}
}

// Result is the outcome of one question run.
type Result struct {
	State *pipeline.State
	// Report is the final user-facing text. Never empty.
	Report string
	// LimitReached is set when the iteration cap terminated the run.
	LimitReached bool
}

// Ask runs the pipeline for one question. Every failure mode, including a
// panicking stage, is converted into state content; the caller always
// receives a well-formed result.
func (o *Orchestrator) Ask(ctx context.Context, question string) *Result {
	state := pipeline.New(question)
	o.logEvent(state, "run", "started", question)

	for state.NextStage != pipeline.StageEnd {
		if state.Iterations >= o.maxIterations {
			msg := fmt.Sprintf(
				"Iteration limit reached (%d stage dispatches). Returning the results accumulated so far.",
				o.maxIterations,
			)
			state.Conversation = append(state.Conversation, pipeline.Message{
				Stage:     pipeline.StageSupervisor,
				Content:   msg,
				Timestamp: time.Now(),
			})
			o.logEvent(state, "run", "iteration_limit", "")
			return &Result{State: state, Report: finalReport(state), LimitReached: true}
		}

		stage, ok := o.stages[state.NextStage]
		if !ok || stage == nil {
			o.terminate(state, fmt.Errorf("no stage registered for %q", state.NextStage))
			break
		}

		current := state.NextStage
		outcome, err := o.dispatch(ctx, stage, current, state)
		if err != nil {
			o.terminate(state, err)
			break
		}
		pipeline.Apply(state, outcome)
		o.logEvent(state, string(current), "dispatched", string(outcome.NextStage))
	}

	o.logEvent(state, "run", "finished", "")
	return &Result{State: state, Report: finalReport(state)}
}

// dispatch runs one stage, converting a panic into an error.
func (o *Orchestrator) dispatch(ctx context.Context, stage agent.Stage, name pipeline.Stage, state *pipeline.State) (out *pipeline.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("stage panicked", "run_id", state.RunID, "stage", name, "panic", rec)
			out, err = nil, fmt.Errorf("stage %s panicked: %v", name, rec)
		}
	}()
	o.logger.Debug("dispatching stage", "run_id", state.RunID, "stage", name, "iteration", state.Iterations)
	return stage.Run(ctx, state)
}

// terminate converts an unrecovered error into terminal state content.
func (o *Orchestrator) terminate(state *pipeline.State, err error) {
	o.logger.Error("pipeline terminated", "run_id", state.RunID, "error", err)
	state.Conversation = append(state.Conversation, pipeline.Message{
		Stage:     pipeline.StageEnd,
		Content:   report.ErrorReport(err, state.SQLResults, time.Now()),
		Timestamp: time.Now(),
	})
	state.NextStage = pipeline.StageEnd
	o.logEvent(state, "run", "failed", err.Error())
}

// finalReport extracts the user-facing text: the last report-writer turn if
// one exists, otherwise the last non-user turn, otherwise the question echo.
func finalReport(state *pipeline.State) string {
	for i := len(state.Conversation) - 1; i >= 0; i-- {
		if state.Conversation[i].Stage == pipeline.StageReportWriter {
			return state.Conversation[i].Content
		}
	}
	for i := len(state.Conversation) - 1; i >= 0; i-- {
		if state.Conversation[i].Stage != pipeline.StageUser {
			return state.Conversation[i].Content
		}
	}
	return fmt.Sprintf("No report could be produced for: %s", state.Question)
}

func (o *Orchestrator) logEvent(state *pipeline.State, stage, event, detail string) {
	if o.events == nil {
		return
	}
	if err := o.events.LogPipelineEvent(state.RunID, stage, event, detail); err != nil {
		o.logger.Warn("event logging failed", "error", err)
	}
}
