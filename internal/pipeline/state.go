package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Stage identifies one unit of pipeline work.
type Stage string

const (
	StageUser         Stage = "user"
	StageSupervisor   Stage = "supervisor"
	StageSQL          Stage = "sql"
	StageAnalyst      Stage = "analyst"
	StageReportWriter Stage = "report_writer"
	// StageEnd is the terminal sentinel; it never executes.
	StageEnd Stage = "end"
)

// Message is one turn of the conversation, tagged with the stage that
// produced it at append time rather than inferred afterwards.
type Message struct {
	Stage     Stage     `json:"stage"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// QueryResult records one query outcome produced by the SQL stage.
type QueryResult struct {
	Query       string     `json:"query"`
	Status      string     `json:"status"` // "success" or "error"
	Output      string     `json:"output"`
	Rows        []RowSet   `json:"rows,omitempty"`
	ErrorDetail string     `json:"error_detail,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// RowSet is one tabular result: column names plus stringified row values.
type RowSet struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Insight is a single analyst finding.
type Insight struct {
	Category       string            `json:"category"` // usage_patterns, performance, security, trends
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Confidence     string            `json:"confidence"` // high, medium, low
	Impact         string            `json:"impact"`     // high, medium, low
	SupportingData map[string]string `json:"supporting_data,omitempty"`
}

// Trend describes the movement of one metric over the analyzed period.
type Trend struct {
	Metric       string  `json:"metric"`
	Direction    string  `json:"direction"` // increasing, decreasing, stable, volatile
	Magnitude    float64 `json:"magnitude"` // signed percentage
	TimePeriod   string  `json:"time_period"`
	Significance string  `json:"significance"`
}

// Statistics summarizes the analyzed dataset.
type Statistics struct {
	TotalRecords     int                `json:"total_records"`
	DateRangeStart   string             `json:"date_range_start"`
	DateRangeEnd     string             `json:"date_range_end"`
	KeyMetrics       map[string]float64 `json:"key_metrics"`
	DataQualityScore float64            `json:"data_quality_score"` // in [0,1]
}

// Recommendation is one actionable suggestion from the analyst.
type Recommendation struct {
	Priority             string   `json:"priority"` // critical, high, medium, low
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	EstimatedImpact      string   `json:"estimated_impact"`
	ImplementationEffort string   `json:"implementation_effort"`
	SuccessMetrics       []string `json:"success_metrics,omitempty"`
}

// AnalysisResult is the analyst stage's structured output. All four content
// fields are always present after a successful (or fallback) analysis.
type AnalysisResult struct {
	Insights          []Insight        `json:"insights"`
	Trends            []Trend          `json:"trends"`
	Statistics        Statistics       `json:"statistics"`
	Recommendations   []Recommendation `json:"recommendations"`
	OverallConfidence string           `json:"overall_confidence"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// Empty reports whether the analysis carries no content at all.
func (a *AnalysisResult) Empty() bool {
	if a == nil {
		return true
	}
	return len(a.Insights) == 0 && len(a.Trends) == 0 &&
		len(a.Recommendations) == 0 && a.Statistics.TotalRecords == 0
}

// State is the context threaded through all stages for one user question.
// It is created fresh per question, exclusively owned by the orchestrator
// for the duration of the run, and discarded afterwards.
type State struct {
	RunID        string
	Question     string
	Conversation []Message
	CurrentStage Stage
	NextStage    Stage
	SQLResults   []QueryResult
	Analysis     *AnalysisResult
	Iterations   int
	// Visited records the dispatch order for post-hoc loop diagnosis.
	Visited []Stage
}

// New builds the initial state for a question. The question itself is the
// first conversation turn.
func New(question string) *State {
	return &State{
		RunID:        uuid.NewString(),
		Question:     question,
		CurrentStage: StageSupervisor,
		NextStage:    StageSupervisor,
		Conversation: []Message{{
			Stage:     StageUser,
			Content:   question,
			Timestamp: time.Now(),
		}},
	}
}

// LastUserUtterance returns the most recent user-authored turn, or the empty
// string if none exists.
func (s *State) LastUserUtterance() string {
	for i := len(s.Conversation) - 1; i >= 0; i-- {
		if s.Conversation[i].Stage == StageUser {
			return s.Conversation[i].Content
		}
	}
	return ""
}

// LatestSQLResult returns the most recent query outcome, or nil.
func (s *State) LatestSQLResult() *QueryResult {
	if len(s.SQLResults) == 0 {
		return nil
	}
	return &s.SQLResults[len(s.SQLResults)-1]
}

// HasSuccessfulSQL reports whether any query outcome succeeded.
func (s *State) HasSuccessfulSQL() bool {
	for _, r := range s.SQLResults {
		if r.Status == StatusSuccess {
			return true
		}
	}
	return false
}

// Query outcome statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
