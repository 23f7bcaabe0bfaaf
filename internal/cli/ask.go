package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/agent"
	"github.com/trafficlens/trafficlens/internal/config"
	"github.com/trafficlens/trafficlens/internal/llm"
	"github.com/trafficlens/trafficlens/internal/logstore"
	"github.com/trafficlens/trafficlens/internal/orchestrator"
)

var askShowConversation bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a natural-language question about the logs",
	Long: `Runs the analysis pipeline for one question and prints the final report.

Without an API key the pipeline still works: the SQL stage falls back to
deterministic canned queries and the analysis is synthesized from the raw
data.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		orch := buildOrchestrator(cfg, store)
		question := strings.Join(args, " ")

		res := orch.Ask(cmd.Context(), question)
		out := cmd.OutOrStdout()
		if askShowConversation {
			for _, m := range res.State.Conversation {
				fmt.Fprintf(out, "[%s] %s\n\n", m.Stage, m.Content)
			}
		}
		fmt.Fprintln(out, res.Report)
		if res.LimitReached {
			slog.Warn("pipeline stopped at the iteration limit", "iterations", res.State.Iterations)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askShowConversation, "show-conversation", false,
		"print every stage message before the report")
}

// buildOrchestrator wires the full stage graph. A missing API key disables
// the model-backed paths but not the pipeline itself.
func buildOrchestrator(cfg *config.Config, store *logstore.Store) *orchestrator.Orchestrator {
	logger := slog.Default()

	var client llm.Client
	if key := cfg.APIKey(); key != "" {
		c, err := llm.NewOpenAIClient(key, cfg.LLM.Model, cfg.LLM.Temperature, logger)
		if err == nil {
			client = c
		} else {
			logger.Warn("language model unavailable, using deterministic fallbacks", "error", err)
		}
	} else {
		logger.Warn("no API key configured, using deterministic fallbacks",
			"env", cfg.LLM.APIKeyEnv)
	}

	tmplDir := cfg.Pipeline.TemplateDir
	return orchestrator.New(orchestrator.Deps{
		Supervisor:    agent.NewSupervisor(agent.KeywordClassifier{}, client, tmplDir, logger),
		SQL:           agent.NewSQLStage(client, store, tmplDir, cfg.Pipeline.FallbackRowLimit, logger),
		Analyst:       agent.NewAnalystStage(client, tmplDir, logger),
		ReportWriter:  agent.NewReportStage(logger),
		Events:        store,
		MaxIterations: cfg.Pipeline.MaxIterations,
		Logger:        logger,
	})
}
