package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for problems and returns them all at once,
// so the user can fix everything in one pass.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.LLM.Model == "" {
		problems = append(problems, "llm.model must not be empty")
	}
	if cfg.Pipeline.MaxIterations < 1 {
		problems = append(problems, fmt.Sprintf("pipeline.max_iterations must be >= 1 (got %d)", cfg.Pipeline.MaxIterations))
	}
	if cfg.Pipeline.MaxIterations > 100 {
		problems = append(problems, fmt.Sprintf("pipeline.max_iterations %d is unreasonably large (max 100)", cfg.Pipeline.MaxIterations))
	}
	if cfg.Pipeline.FallbackRowLimit < 1 {
		problems = append(problems, fmt.Sprintf("pipeline.fallback_row_limit must be >= 1 (got %d)", cfg.Pipeline.FallbackRowLimit))
	}
	if cfg.Database.Path == "" && len(cfg.Database.SearchPaths) == 0 {
		problems = append(problems, "database.path or database.search_paths must be set")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", cfg.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
