package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trafficlens/trafficlens/internal/pipeline"
	"github.com/trafficlens/trafficlens/internal/report"
)

// ReportStage renders the analysis into the final document. It always returns
// a renderable report: validation failures produce a limited-analysis
// fallback and assembly panics are converted to a structured error report.
type ReportStage struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewReportStage builds the report-writer stage.
func NewReportStage(logger *slog.Logger) *ReportStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportStage{logger: logger, now: time.Now}
}

// Run assembles the report and ends the pipeline.
func (r *ReportStage) Run(_ context.Context, state *pipeline.State) (*pipeline.Outcome, error) {
	if state.Analysis.Empty() {
		return &pipeline.Outcome{
			From:      pipeline.StageReportWriter,
			Messages:  []string{report.LimitedAnalysis()},
			NextStage: pipeline.StageEnd,
		}, nil
	}

	doc := r.assemble(state)
	return &pipeline.Outcome{
		From:      pipeline.StageReportWriter,
		Messages:  []string{doc},
		NextStage: pipeline.StageEnd,
	}, nil
}

// assemble renders the report, converting any panic into an error report so
// the stage always has something to show.
func (r *ReportStage) assemble(state *pipeline.State) (doc string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("report assembly panicked", "run_id", state.RunID, "panic", rec)
			doc = report.ErrorReport(fmt.Errorf("%v", rec), state.SQLResults, time.Now())
		}
	}()
	return report.Render(state.Analysis, r.now())
}
