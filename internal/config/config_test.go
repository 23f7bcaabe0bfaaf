package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trafficlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: gpt-4o\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 10, cfg.Pipeline.MaxIterations)
	assert.Equal(t, 10, cfg.Pipeline.FallbackRowLimit)
	assert.Equal(t, []string{"./logs.db", "./parser/logs.db", "./data/logs.db"}, cfg.Database.SearchPaths)
	assert.Equal(t, 150.0, cfg.Rates.HourlyPLN)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRAFFICLENS_DB", "/tmp/override.db")
	t.Setenv("TRAFFICLENS_MODEL", "gpt-4.1")

	path := filepath.Join(t.TempDir(), "trafficlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: ./file.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "gpt-4.1", cfg.LLM.Model)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	assert.NoError(t, Validate(cfg))

	cfg.Pipeline.MaxIterations = 0
	cfg.LLM.Model = ""
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.model")
	assert.Contains(t, err.Error(), "max_iterations")
}

func TestAPIKey(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-test")
	cfg := &Config{}
	cfg.LLM.APIKeyEnv = "TEST_LLM_KEY"
	assert.Equal(t, "sk-test", cfg.APIKey())
}
