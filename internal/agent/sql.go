package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/trafficlens/trafficlens/internal/llm"
	"github.com/trafficlens/trafficlens/internal/logstore"
	"github.com/trafficlens/trafficlens/internal/pipeline"
	"github.com/trafficlens/trafficlens/internal/prompt"
)

// QueryExecutor runs read-only SQL and returns tabular results.
type QueryExecutor interface {
	Query(query string) (*logstore.ResultSet, error)
}

// cannedQuery is one deterministic fallback mapping from utterance keywords
// to a pre-written query.
type cannedQuery struct {
	keywords []string
	query    string
	note     string
}

var cannedQueries = []cannedQuery{
	{
		keywords: []string{"social media", "social.media"},
		query: `SELECT srcname, SUM(duration) AS total_ms, COUNT(*) AS sessions
FROM logs WHERE appcat = 'Social.Media'
GROUP BY srcname ORDER BY total_ms DESC LIMIT 10`,
		note: "highest social-media usage per user",
	},
	{
		keywords: []string{"gra", "game", "gam"},
		query: `SELECT srcname, SUM(duration) AS total_ms, COUNT(*) AS sessions
FROM logs WHERE appcat = 'Game'
GROUP BY srcname ORDER BY total_ms DESC LIMIT 10`,
		note: "gaming time per user",
	},
	{
		keywords: []string{"aplikacj", "application", "top app"},
		query: `SELECT app, appcat, SUM(duration) AS total_ms, SUM(sentbyte + rcvdbyte) AS total_bytes
FROM logs GROUP BY app, appcat ORDER BY total_ms DESC LIMIT 10`,
		note: "top applications by time spent",
	},
	{
		keywords: []string{"transfer", "bajt", "byte", "pobra"},
		query: `SELECT srcname, SUM(sentbyte) AS sent, SUM(rcvdbyte) AS received
FROM logs GROUP BY srcname ORDER BY received DESC LIMIT 10`,
		note: "transfer volume per user",
	},
	{
		keywords: []string{"użytkown", "user", "kto"},
		query: `SELECT srcname, SUM(duration) AS total_ms, COUNT(DISTINCT app) AS apps
FROM logs GROUP BY srcname ORDER BY total_ms DESC LIMIT 10`,
		note: "most active users",
	},
}

// SQLStage obtains data relevant to the question, via the language model when
// one is available and a deterministic keyword fallback otherwise.
type SQLStage struct {
	client      llm.Client // nil disables the primary path
	executor    QueryExecutor
	templateDir string
	rowLimit    int
	logger      *slog.Logger
}

// NewSQLStage builds the SQL stage. client may be nil, in which case only the
// deterministic fallback path runs.
func NewSQLStage(client llm.Client, executor QueryExecutor, templateDir string, rowLimit int, logger *slog.Logger) *SQLStage {
	if rowLimit <= 0 {
		rowLimit = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStage{
		client:      client,
		executor:    executor,
		templateDir: templateDir,
		rowLimit:    rowLimit,
		logger:      logger,
	}
}

// Run executes the query path for the latest user utterance. Failures are
// encoded in the outcome; the error return stays nil for all expected paths.
func (s *SQLStage) Run(ctx context.Context, state *pipeline.State) (*pipeline.Outcome, error) {
	utterance := state.LastUserUtterance()
	if utterance == "" {
		utterance = "fetch application usage data"
	}

	result := s.primary(ctx, utterance)
	if result == nil {
		result = s.fallback(utterance)
	}
	result.Timestamp = time.Now()

	out := &pipeline.Outcome{
		From:      pipeline.StageSQL,
		SQLResult: result,
	}
	if result.Status == pipeline.StatusSuccess {
		out.NextStage = pipeline.StageAnalyst
		out.Messages = []string{fmt.Sprintf("Fetched data from the database:\n%s\n\nHanding off for analysis.", result.Output)}
	} else {
		out.NextStage = pipeline.StageSupervisor
		out.Messages = []string{fmt.Sprintf("The data query failed: %s", result.ErrorDetail)}
	}
	return out, nil
}

// primary asks the model for a query and executes it. A nil return means the
// primary path is unavailable or produced nothing usable.
func (s *SQLStage) primary(ctx context.Context, utterance string) *pipeline.QueryResult {
	if s.client == nil {
		return nil
	}

	system, err := s.systemPrompt()
	if err != nil {
		s.logger.Warn("sql system prompt unavailable", "error", err)
		return nil
	}
	response, err := s.client.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: utterance},
	})
	if err != nil {
		s.logger.Warn("sql generation failed, using fallback", "error", err)
		return nil
	}

	cleaned := CleanSQL(response)
	if !strings.HasPrefix(strings.ToUpper(cleaned), "SELECT") {
		// The model answered in prose. Accept it only if it is non-empty
		// and does not itself report an error.
		if !usableText(response) {
			return nil
		}
		return &pipeline.QueryResult{
			Query:  utterance,
			Status: pipeline.StatusSuccess,
			Output: strings.TrimSpace(response),
		}
	}

	rs, err := s.executor.Query(cleaned)
	if err != nil {
		s.logger.Warn("generated query failed, using fallback", "error", err)
		return nil
	}
	return resultFromRows(cleaned, rs)
}

// fallback maps the utterance to a canned query, or runs the safe default.
func (s *SQLStage) fallback(utterance string) *pipeline.QueryResult {
	lower := strings.ToLower(utterance)

	query := fmt.Sprintf("SELECT * FROM logs LIMIT %d", s.rowLimit)
	for _, cq := range cannedQueries {
		if containsAny(lower, cq.keywords) {
			query = cq.query
			s.logger.Debug("fallback matched canned intent", "note", cq.note)
			break
		}
	}

	rs, err := s.executor.Query(query)
	if err != nil {
		return &pipeline.QueryResult{
			Query:       query,
			Status:      pipeline.StatusError,
			ErrorDetail: err.Error(),
		}
	}
	return resultFromRows(query, rs)
}

func (s *SQLStage) systemPrompt() (string, error) {
	tmpl, err := prompt.Load("sql-system.md", s.templateDir)
	if err != nil {
		return "", err
	}
	return prompt.Render(tmpl, prompt.Vars{"question": ""})
}

func resultFromRows(query string, rs *logstore.ResultSet) *pipeline.QueryResult {
	return &pipeline.QueryResult{
		Query:  query,
		Status: pipeline.StatusSuccess,
		Output: renderRows(rs),
		Rows: []pipeline.RowSet{{
			Columns: rs.Columns,
			Rows:    rs.Rows,
		}},
	}
}

// renderRows prints a result set as an aligned text table.
func renderRows(rs *logstore.ResultSet) string {
	if len(rs.Rows) == 0 {
		return "(no rows)"
	}
	var b strings.Builder
	b.WriteString(strings.Join(rs.Columns, " | "))
	b.WriteString("\n")
	for _, row := range rs.Rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// CleanSQL strips markdown fences and common prefixes from a generated query.
func CleanSQL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"SQLQuery:", "SQL:", "Query:"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
	}
	return strings.TrimSuffix(strings.TrimSpace(s), ";")
}

// usableText reports whether a prose response can stand in as query output.
func usableText(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range []string{"error", "błąd", "cannot", "nie mogę"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
