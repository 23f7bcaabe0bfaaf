package logstore

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite log database connection. All duration values in the
// logs table are stored in milliseconds.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates the log database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &Store{conn: conn, path: path}, nil
}

// OpenExisting opens the first existing database from the candidate paths.
// Unlike Open it never creates a new file, because a freshly created empty
// database would silently answer every question with zero records.
func OpenExisting(candidates []string) (*Store, error) {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			s, err := Open(path)
			if err != nil {
				return nil, err
			}
			if err := s.Migrate(); err != nil {
				s.Close()
				return nil, err
			}
			return s, nil
		}
	}
	return nil, fmt.Errorf("no log database found (looked in %v); run the ingest command first", candidates)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying *sql.DB for advanced queries.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// Path returns the filesystem path of the opened database.
func (s *Store) Path() string {
	return s.path
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS logs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    date           TEXT,
    time           TEXT,
    eventtime      TEXT,
    logid          TEXT,
    srcip          TEXT,
    srcname        TEXT,
    srcport        INTEGER,
    dstip          TEXT,
    dstport        INTEGER,
    proto          INTEGER,
    action         TEXT,
    policyname     TEXT,
    service        TEXT,
    transport      TEXT,
    appid          INTEGER,
    app            TEXT,
    appcat         TEXT,
    apprisk        TEXT,
    duration       INTEGER,
    sentbyte       INTEGER,
    rcvdbyte       INTEGER,
    sentpkt        INTEGER,
    rcvdpkt        INTEGER,
    shapersentname TEXT,
    osname         TEXT,
    mastersrcmac   TEXT
);
CREATE INDEX IF NOT EXISTS idx_logs_appcat ON logs(appcat);
CREATE INDEX IF NOT EXISTS idx_logs_srcname ON logs(srcname);
CREATE INDEX IF NOT EXISTS idx_logs_date ON logs(date);

CREATE TABLE IF NOT EXISTS pipeline_events (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id    TEXT NOT NULL,
    stage     TEXT NOT NULL,
    event     TEXT NOT NULL,
    detail    TEXT,
    timestamp TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_pipeline_run ON pipeline_events(run_id, timestamp DESC);
`

// Migrate applies the database schema.
func (s *Store) Migrate() error {
	var count int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = 1").Scan(&count)
	if err == nil && count > 0 {
		return nil
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaV1); err != nil {
		return fmt.Errorf("apply schema v1: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Reset drops all tables and re-applies the schema.
func (s *Store) Reset() error {
	tables := []string{"pipeline_events", "logs", "schema_version"}
	for _, t := range tables {
		if _, err := s.conn.Exec("DROP TABLE IF EXISTS " + t); err != nil {
			return fmt.Errorf("drop table %s: %w", t, err)
		}
	}
	return s.Migrate()
}
