package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix namespaces environment overrides: orchestrator.max_retries is
// read from AGENT_ORCHESTRATOR_MAX_RETRIES.
const EnvPrefix = "AGENT"

type Config struct {
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator" yaml:"orchestrator"`
	Model        ModelConfig        `mapstructure:"model" yaml:"model"`
	Runner       RunnerConfig       `mapstructure:"runner" yaml:"runner"`
	Browser      BrowserConfig      `mapstructure:"browser" yaml:"browser"`
	Actuator     ActuatorConfig     `mapstructure:"actuator" yaml:"actuator"`
	Logger       LoggerConfig       `mapstructure:"logger" yaml:"logger"`
	Metrics      MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
	History      HistoryConfig      `mapstructure:"history" yaml:"history"`
}

type OrchestratorConfig struct {
	MaxRetries     int           `mapstructure:"max_retries" yaml:"max_retries"`
	HistoryLimit   int           `mapstructure:"history_limit" yaml:"history_limit"`
	SettleDelay    time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	VerifierWindow int           `mapstructure:"verifier_window" yaml:"verifier_window"`
	ExecutorWindow int           `mapstructure:"executor_window" yaml:"executor_window"`
}

type ModelConfig struct {
	Name              string        `mapstructure:"name" yaml:"name"`
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey            string        `mapstructure:"api_key" yaml:"-"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerMinute float64       `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	MaxConcurrent     int           `mapstructure:"max_concurrent" yaml:"max_concurrent"`
}

type RunnerConfig struct {
	MaxDuration      time.Duration `mapstructure:"max_duration" yaml:"max_duration"`
	MaxSleep         time.Duration `mapstructure:"max_sleep" yaml:"max_sleep"`
	MaxStatements    int           `mapstructure:"max_statements" yaml:"max_statements"`
	PrimitiveTimeout time.Duration `mapstructure:"primitive_timeout" yaml:"primitive_timeout"`
}

type BrowserConfig struct {
	Headless      bool   `mapstructure:"headless" yaml:"headless"`
	StartURL      string `mapstructure:"start_url" yaml:"start_url"`
	ScreenshotDir string `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
	SearchURL     string `mapstructure:"search_url" yaml:"search_url"`
}

type ActuatorConfig struct {
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

type LoggerConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Console bool   `mapstructure:"console" yaml:"console"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

type HistoryConfig struct {
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir"`
	Show      bool   `mapstructure:"show" yaml:"show"`
}

func SetDefaults(v *viper.Viper) {
	// -- Orchestrator --
	v.SetDefault("orchestrator.max_retries", 3)
	v.SetDefault("orchestrator.history_limit", 20)
	v.SetDefault("orchestrator.settle_delay", "2s")
	v.SetDefault("orchestrator.verifier_window", 3)
	v.SetDefault("orchestrator.executor_window", 2)

	// -- Model --
	v.SetDefault("model.name", "meta-llama/llama-4-scout")
	v.SetDefault("model.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.timeout", "60s")
	v.SetDefault("model.requests_per_minute", 60)
	v.SetDefault("model.max_concurrent", 4)

	// -- Runner --
	v.SetDefault("runner.max_duration", "15s")
	v.SetDefault("runner.max_sleep", "5s")
	v.SetDefault("runner.max_statements", 64)
	v.SetDefault("runner.primitive_timeout", "10s")

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.start_url", "about:blank")
	v.SetDefault("browser.screenshot_dir", "")
	v.SetDefault("browser.search_url", "https://www.google.com/search?q=%s")

	v.SetDefault("actuator.dry_run", false)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.console", false)
	v.SetDefault("logger.dir", "log")

	v.SetDefault("metrics.textfile", "")
	v.SetDefault("history.export_dir", "")
	v.SetDefault("history.show", false)
}

// NewViper returns a viper instance with defaults and AGENT_ environment
// overrides. When path is set the YAML file there is merged in as well.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}
	return v, nil
}

func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Provider-native variable names, kept for existing .env files.
	_ = v.BindEnv("model.api_key", EnvPrefix+"_MODEL_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("model.name", EnvPrefix+"_MODEL_NAME", "OPENROUTER_MODEL_NAME")
	_ = v.BindEnv("history.show", EnvPrefix+"_HISTORY_SHOW", "SHOW_HISTORY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load is NewViper followed by NewConfigFromViper.
func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return NewConfigFromViper(v)
}

// Validate checks ranges only; a missing API key is reported by RequireAPIKey
// so that dry runs against a local endpoint can still load.
func (c *Config) Validate() error {
	var errs []error

	if c.Orchestrator.MaxRetries <= 0 {
		errs = append(errs, errors.New("orchestrator.max_retries must be a positive integer"))
	}
	if c.Orchestrator.HistoryLimit <= 0 {
		errs = append(errs, errors.New("orchestrator.history_limit must be a positive integer"))
	}
	if c.Orchestrator.SettleDelay < 0 {
		errs = append(errs, errors.New("orchestrator.settle_delay must not be negative"))
	}
	if c.Orchestrator.VerifierWindow < 0 || c.Orchestrator.ExecutorWindow < 0 {
		errs = append(errs, errors.New("orchestrator context windows must not be negative"))
	}

	if c.Model.Name == "" {
		errs = append(errs, errors.New("model.name is required"))
	}
	if c.Model.BaseURL == "" {
		errs = append(errs, errors.New("model.base_url is required"))
	}
	if c.Model.Timeout <= 0 {
		errs = append(errs, errors.New("model.timeout must be positive"))
	}
	if c.Model.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("model.requests_per_minute must be positive"))
	}
	if c.Model.MaxConcurrent <= 0 {
		errs = append(errs, errors.New("model.max_concurrent must be a positive integer"))
	}

	if c.Runner.MaxDuration <= 0 {
		errs = append(errs, errors.New("runner.max_duration must be positive"))
	}
	if c.Runner.MaxSleep <= 0 || c.Runner.MaxSleep > c.Runner.MaxDuration {
		errs = append(errs, errors.New("runner.max_sleep must be positive and no larger than runner.max_duration"))
	}
	if c.Runner.MaxStatements <= 0 {
		errs = append(errs, errors.New("runner.max_statements must be a positive integer"))
	}
	if c.Runner.PrimitiveTimeout <= 0 {
		errs = append(errs, errors.New("runner.primitive_timeout must be positive"))
	}

	if c.Browser.SearchURL != "" && strings.Count(c.Browser.SearchURL, "%s") != 1 {
		errs = append(errs, errors.New("browser.search_url must contain exactly one %s"))
	}

	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		errs = append(errs, fmt.Errorf("logger.level: %w", err))
	}

	return errors.Join(errs...)
}

func (c *Config) RequireAPIKey() error {
	if c.Model.APIKey == "" {
		return errors.New("model.api_key is not set (AGENT_MODEL_API_KEY or OPENROUTER_API_KEY)")
	}
	return nil
}
