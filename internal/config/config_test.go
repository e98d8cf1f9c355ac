package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := defaultConfig(t)

	assert.Equal(t, 3, cfg.Orchestrator.MaxRetries)
	assert.Equal(t, 20, cfg.Orchestrator.HistoryLimit)
	assert.Equal(t, 2*time.Second, cfg.Orchestrator.SettleDelay)
	assert.Equal(t, 3, cfg.Orchestrator.VerifierWindow)
	assert.Equal(t, 2, cfg.Orchestrator.ExecutorWindow)
	assert.Equal(t, 60*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 60.0, cfg.Model.RequestsPerMinute)
	assert.Equal(t, 15*time.Second, cfg.Runner.MaxDuration)
	assert.Equal(t, 5*time.Second, cfg.Runner.MaxSleep)
	assert.Equal(t, 64, cfg.Runner.MaxStatements)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.Actuator.DryRun)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AGENT_ORCHESTRATOR_MAX_RETRIES", "5")
	t.Setenv("AGENT_RUNNER_MAX_SLEEP", "1s")
	t.Setenv("AGENT_ACTUATOR_DRY_RUN", "true")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("SHOW_HISTORY", "1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Orchestrator.MaxRetries)
	assert.Equal(t, time.Second, cfg.Runner.MaxSleep)
	assert.True(t, cfg.Actuator.DryRun)
	assert.Equal(t, "sk-test", cfg.Model.APIKey)
	assert.True(t, cfg.History.Show)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestPrefixedKeyWins(t *testing.T) {
	t.Setenv("AGENT_MODEL_API_KEY", "sk-agent")
	t.Setenv("OPENROUTER_API_KEY", "sk-provider")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-agent", cfg.Model.APIKey)
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
orchestrator:
  history_limit: 8
  settle_delay: 500ms
browser:
  headless: true
  screenshot_dir: shots
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Orchestrator.HistoryLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Orchestrator.SettleDelay)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "shots", cfg.Browser.ScreenshotDir)
	assert.Equal(t, 3, cfg.Orchestrator.MaxRetries, "unset keys keep defaults")
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"retries", func(c *Config) { c.Orchestrator.MaxRetries = 0 }, "orchestrator.max_retries"},
		{"history", func(c *Config) { c.Orchestrator.HistoryLimit = -1 }, "orchestrator.history_limit"},
		{"window", func(c *Config) { c.Orchestrator.ExecutorWindow = -1 }, "context windows"},
		{"model", func(c *Config) { c.Model.Name = "" }, "model.name"},
		{"rpm", func(c *Config) { c.Model.RequestsPerMinute = 0 }, "model.requests_per_minute"},
		{"sleep", func(c *Config) { c.Runner.MaxSleep = time.Minute }, "runner.max_sleep"},
		{"search", func(c *Config) { c.Browser.SearchURL = "https://example.com" }, "browser.search_url"},
		{"level", func(c *Config) { c.Logger.Level = "loud" }, "logger.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRequireAPIKey(t *testing.T) {
	t.Setenv("AGENT_MODEL_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg := defaultConfig(t)
	assert.Error(t, cfg.RequireAPIKey())
}
