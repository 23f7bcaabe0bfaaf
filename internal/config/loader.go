package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a configuration from the given YAML file path.
// After parsing, it applies defaults for any values the file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a settings file in standard locations and loads the
// first one found. Search order: ./trafficlens.yaml, ~/.trafficlens/config.yaml.
// When no file exists, a pure-default config is returned so the CLI still works
// with environment variables alone.
func LoadDefault() (*Config, error) {
	candidates := []string{"trafficlens.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".trafficlens", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := &Config{}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// applyDefaults fills in values for fields the settings file omits.
func applyDefaults(cfg *Config) {
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if len(cfg.Database.SearchPaths) == 0 {
		cfg.Database.SearchPaths = []string{
			"./logs.db",
			"./parser/logs.db",
			"./data/logs.db",
		}
	}
	if cfg.Pipeline.MaxIterations <= 0 {
		cfg.Pipeline.MaxIterations = 10
	}
	if cfg.Pipeline.FallbackRowLimit <= 0 {
		cfg.Pipeline.FallbackRowLimit = 10
	}
	if cfg.Rates.HourlyPLN <= 0 {
		cfg.Rates.HourlyPLN = 150
	}
	if cfg.Rates.USD <= 0 {
		cfg.Rates.USD = 4.05
	}
	if cfg.Rates.EUR <= 0 {
		cfg.Rates.EUR = 4.30
	}
	if cfg.Rates.GoldGramPLN <= 0 {
		cfg.Rates.GoldGramPLN = 280
	}
	if cfg.Rates.BTCPLN <= 0 {
		cfg.Rates.BTCPLN = 180000
	}
	if cfg.Rates.CoffeePLN <= 0 {
		cfg.Rates.CoffeePLN = 15
	}
	if cfg.Rates.NetflixPLN <= 0 {
		cfg.Rates.NetflixPLN = 60
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// applyEnv applies environment overrides that take precedence over the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TRAFFICLENS_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRAFFICLENS_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
}

// APIKey resolves the collaborator API key from the configured environment
// variable. An empty return means no key is available.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}
