package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/config"
	"github.com/trafficlens/trafficlens/internal/logstore"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "trafficlens",
	Short: "Natural-language analysis of network traffic logs",
	Long: `trafficlens ingests firewall logs into SQLite and answers questions about
application usage (time spent, cost equivalents, productivity patterns)
through a supervisor-directed pipeline of SQL, analysis and report stages.

Configuration is read from ./trafficlens.yaml or ~/.trafficlens/config.yaml;
the OpenAI API key comes from the environment (OPENAI_API_KEY by default).`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(productivityCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(dbCmd)
}

// loadConfig loads and validates the settings, and configures logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	setupLogger(cfg.LogLevel)
	return cfg, nil
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// openStore opens an existing log database using the configured path or the
// search order.
func openStore(cfg *config.Config) (*logstore.Store, error) {
	if cfg.Database.Path != "" {
		s, err := logstore.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	s, err := logstore.OpenExisting(cfg.Database.SearchPaths)
	if err != nil {
		return nil, fmt.Errorf("open log store: %w", err)
	}
	return s, nil
}
