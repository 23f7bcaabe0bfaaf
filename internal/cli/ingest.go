package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/ingest"
	"github.com/trafficlens/trafficlens/internal/logstore"
)

var ingestDBPath string
var ingestWorkers int

var ingestCmd = &cobra.Command{
	Use:   "ingest [logfile...]",
	Short: "Parse raw firewall log files into the database",
	Long: `Parses key=value firewall log lines, keeps only records whose application
category is in the allow set (Social.Media, Video.Audio, Game, Adult) and
bulk-inserts them. Creates the database if it does not exist.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := ingestDBPath
		if path == "" {
			path = cfg.Database.Path
		}
		if path == "" {
			path = cfg.Database.SearchPaths[0]
		}

		store, err := logstore.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(); err != nil {
			return err
		}

		loader := ingest.NewLoader(store, slog.Default())
		if ingestWorkers > 0 {
			loader.Workers = ingestWorkers
		}

		var inserted, skipped int
		for _, file := range args {
			res, err := loader.LoadFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			inserted += res.Inserted
			skipped += res.Skipped
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d records into %s (%d lines skipped)\n",
			inserted, path, skipped)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDBPath, "db", "", "database path (default: configured path)")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "concurrent parse batches (default: number of CPUs)")
}
