package ingest

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/trafficlens/trafficlens/internal/logstore"
)

// batchSize is how many lines are parsed per worker submission.
const batchSize = 1000

// Result summarizes one ingestion run.
type Result struct {
	LinesRead int
	Inserted  int
	Skipped   int
}

// Loader parses raw firewall log files and fills the log store.
type Loader struct {
	store  *logstore.Store
	logger *slog.Logger
	// Workers bounds concurrent parse batches. Zero means one worker.
	Workers int
}

// NewLoader builds a loader writing to the given store.
func NewLoader(store *logstore.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, logger: logger, Workers: runtime.GOMAXPROCS(0)}
}

// LoadFile reads a log file line by line, parses lines in concurrent batches
// and inserts the surviving records. Parsing is parallel; inserts are
// serialized because the store holds a single SQLite connection.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	res := &Result{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	workers := l.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	process := func(batch []string) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records := make([]logstore.LogRecord, 0, len(batch))
			for _, line := range batch {
				if rec, ok := ParseLine(line); ok {
					records = append(records, rec)
				}
			}

			mu.Lock()
			defer mu.Unlock()
			if err := l.store.InsertBatch(records); err != nil {
				return err
			}
			res.Inserted += len(records)
			res.Skipped += len(batch) - len(records)
			return nil
		})
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	batch := make([]string, 0, batchSize)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		res.LinesRead++
		batch = append(batch, line)
		if len(batch) >= batchSize {
			process(batch)
			batch = make([]string, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		process(batch)
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	l.logger.Info("ingest complete",
		"path", path,
		"lines", res.LinesRead,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
	)
	return res, nil
}
