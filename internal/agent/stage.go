// Package agent implements the pipeline stages: supervisor routing, SQL
// generation and execution, analysis, and report writing. Each stage consumes
// the shared state read-only and returns an outcome for the orchestrator to
// merge.
package agent

import (
	"context"

	"github.com/trafficlens/trafficlens/internal/pipeline"
)

// Stage is one unit of pipeline work. Run must not mutate the state; all
// updates travel through the returned outcome. An error return is reserved
// for truly unexpected failures; expected failures (bad query, unparsable
// analysis) are encoded in the outcome instead.
type Stage interface {
	Run(ctx context.Context, state *pipeline.State) (*pipeline.Outcome, error)
}
