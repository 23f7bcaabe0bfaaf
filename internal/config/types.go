package config

// Config is the top-level configuration structure parsed from the settings YAML.
// It is constructed once at process start and passed by reference into the
// orchestrator; there is no module-level mutable state.
type Config struct {
	LLM      LLM      `yaml:"llm"`
	Database Database `yaml:"database"`
	Pipeline Pipeline `yaml:"pipeline"`
	Rates    Rates    `yaml:"rates"`
	LogLevel string   `yaml:"log_level"`
}

// LLM configures the text-generation collaborator.
type LLM struct {
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// Database configures the log store location.
type Database struct {
	// Path, when set, is used directly. Otherwise SearchPaths are probed in order.
	Path        string   `yaml:"path"`
	SearchPaths []string `yaml:"search_paths"`
}

// Pipeline holds orchestration tuning.
type Pipeline struct {
	// MaxIterations is the hard cap on stage dispatches per question.
	MaxIterations int `yaml:"max_iterations"`
	// FallbackRowLimit bounds the safe default query used when no canned
	// intent matches.
	FallbackRowLimit int `yaml:"fallback_row_limit"`
	// TemplateDir optionally overrides the built-in agent prompt templates.
	TemplateDir string `yaml:"template_dir"`
}

// Rates holds the cost-equivalence table used for time-loss breakdowns.
type Rates struct {
	HourlyPLN   float64 `yaml:"hourly_pln"`
	USD         float64 `yaml:"usd"`
	EUR         float64 `yaml:"eur"`
	GoldGramPLN float64 `yaml:"gold_gram_pln"`
	BTCPLN      float64 `yaml:"btc_pln"`
	CoffeePLN   float64 `yaml:"coffee_pln"`
	NetflixPLN  float64 `yaml:"netflix_pln"`
}
