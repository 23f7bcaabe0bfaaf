package logstore

import (
	"database/sql"
	"fmt"
	"strings"
)

// LogRecord represents one row in the logs table. Duration is in milliseconds,
// byte counters are raw byte counts.
type LogRecord struct {
	Date           string
	Time           string
	EventTime      string
	LogID          string
	SrcIP          string
	SrcName        string
	SrcPort        int
	DstIP          string
	DstPort        int
	Proto          int
	Action         string
	PolicyName     string
	Service        string
	Transport      string
	AppID          int
	App            string
	AppCat         string
	AppRisk        string
	Duration       int64
	SentByte       int64
	RcvdByte       int64
	SentPkt        int64
	RcvdPkt        int64
	ShaperSentName string
	OSName         string
	MasterSrcMac   string
}

// ResultSet is one tabular query result with stringified values, ready for
// prompt building and rendering.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// Stats summarizes the stored dataset.
type Stats struct {
	TotalRecords int64
	UniqueUsers  int64
	UniqueApps   int64
	DateStart    string
	DateEnd      string
	Categories   map[string]int64
}

const insertLogSQL = `INSERT INTO logs (
	date, time, eventtime, logid, srcip, srcname, srcport, dstip, dstport,
	proto, action, policyname, service, transport, appid, app, appcat,
	apprisk, duration, sentbyte, rcvdbyte, sentpkt, rcvdpkt,
	shapersentname, osname, mastersrcmac
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertBatch inserts a batch of log records in a single transaction.
func (s *Store) InsertBatch(records []LogRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertLogSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.Date, r.Time, r.EventTime, r.LogID, r.SrcIP, r.SrcName, r.SrcPort,
			r.DstIP, r.DstPort, r.Proto, r.Action, r.PolicyName, r.Service,
			r.Transport, r.AppID, r.App, r.AppCat, r.AppRisk, r.Duration,
			r.SentByte, r.RcvdByte, r.SentPkt, r.RcvdPkt,
			r.ShaperSentName, r.OSName, r.MasterSrcMac,
		)
		if err != nil {
			return fmt.Errorf("insert log record: %w", err)
		}
	}
	return tx.Commit()
}

// Query runs a read-only SQL statement and returns the result as strings.
// Only SELECT statements are accepted; everything else is rejected before it
// reaches the database.
func (s *Store) Query(query string) (*ResultSet, error) {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return nil, fmt.Errorf("only SELECT statements are allowed, got %q", firstWord(trimmed))
	}

	rows, err := s.conn.Query(trimmed)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	rs := &ResultSet{Columns: cols}
	values := make([]sql.NullString, len(cols))
	scan := make([]any, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rs, nil
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " \t\n"); i > 0 {
		return s[:i]
	}
	return s
}

// CountRecords returns the number of rows in the logs table.
func (s *Store) CountRecords() (int64, error) {
	var n int64
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM logs").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// DatasetStats returns record count, date range and per-category counts.
func (s *Store) DatasetStats() (*Stats, error) {
	st := &Stats{Categories: map[string]int64{}}

	var start, end sql.NullString
	err := s.conn.QueryRow(
		"SELECT COUNT(*), COUNT(DISTINCT srcname), COUNT(DISTINCT app), MIN(date), MAX(date) FROM logs").
		Scan(&st.TotalRecords, &st.UniqueUsers, &st.UniqueApps, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("dataset stats: %w", err)
	}
	st.DateStart = start.String
	st.DateEnd = end.String

	rows, err := s.conn.Query("SELECT appcat, COUNT(*) FROM logs GROUP BY appcat ORDER BY COUNT(*) DESC")
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat sql.NullString
		var n int64
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		st.Categories[cat.String] = n
	}
	return st, rows.Err()
}

// LogPipelineEvent records one pipeline event for a run.
func (s *Store) LogPipelineEvent(runID, stage, event, detail string) error {
	_, err := s.conn.Exec(
		`INSERT INTO pipeline_events (run_id, stage, event, detail) VALUES (?, ?, ?, ?)`,
		runID, stage, event, detail,
	)
	if err != nil {
		return fmt.Errorf("log pipeline event: %w", err)
	}
	return nil
}

// RunEvents returns the recorded events for a run in chronological order.
func (s *Store) RunEvents(runID string) ([]string, error) {
	rows, err := s.conn.Query(
		`SELECT stage, event, detail FROM pipeline_events WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("run events: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var stage, event string
		var detail sql.NullString
		if err := rows.Scan(&stage, &event, &detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		line := stage + ": " + event
		if detail.String != "" {
			line += " (" + detail.String + ")"
		}
		out = append(out, line)
	}
	return out, rows.Err()
}
