package di

import (
	"context"
	"fmt"

	"gui-agent/internal/adapter/primitive"
	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/application/service"
	"gui-agent/internal/config"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/actuator/dryrun"
	"gui-agent/internal/infrastructure/browser/rod"
	"gui-agent/internal/infrastructure/history"
	"gui-agent/internal/infrastructure/llm/openrouter"
	"gui-agent/internal/infrastructure/logger"
	"gui-agent/internal/infrastructure/metrics"
	"gui-agent/internal/infrastructure/userinteraction"
	"gui-agent/internal/usecase/actionrunner"
	"gui-agent/internal/usecase/matcher"
	"gui-agent/internal/usecase/orchestrator"
	"gui-agent/internal/usecase/roles"
)

type Container struct {
	Config       *config.Config
	Browser      *rod.BrowserAdapter
	Actuator     output.ActuatorPort
	LLM          *openrouter.RateLimitedLLM
	Logger       output.LoggerPort
	Primitives   output.PrimitiveRegistry
	Metrics      *metrics.Recorder
	History      output.HistoryExporterPort
	Console      *userinteraction.ConsoleUserInteraction
	TaskExecutor input.TaskExecutor
}

// NewContainer wires one run. taskName only names the log file.
func NewContainer(ctx context.Context, cfg *config.Config, taskName string) (*Container, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	logOpts := logger.DefaultOptions()
	logOpts.Dir = cfg.Logger.Dir
	logOpts.Level = cfg.Logger.Level
	logOpts.Console = cfg.Logger.Console
	log, err := logger.NewLoggerAdapter(taskName, logOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.Browser.Headless
	browserCfg.StartURL = cfg.Browser.StartURL
	browserCfg.ScreenshotDir = cfg.Browser.ScreenshotDir
	browserCfg.SearchURL = cfg.Browser.SearchURL
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg, log.WithField("component", "browser"))
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	var actuator output.ActuatorPort = browser
	if cfg.Actuator.DryRun {
		actuator = dryrun.New(log)
	}

	llmCfg := openrouter.DefaultConfig(cfg.Model.APIKey, cfg.Model.Name)
	llmCfg.BaseURL = cfg.Model.BaseURL
	llmCfg.Logger = log.WithField("component", "llm")
	llm := openrouter.NewRateLimitedLLM(
		openrouter.NewOpenRouterAdapter(llmCfg),
		openrouter.LimitConfig{
			RequestsPerMinute: cfg.Model.RequestsPerMinute,
			MaxConcurrent:     cfg.Model.MaxConcurrent,
		},
		log,
	)

	limits := primitive.DefaultLimits()
	limits.MaxSleep = cfg.Runner.MaxSleep
	primitives := service.NewPrimitiveRegistry()
	primitive.RegisterAll(primitives, actuator, limits, log.WithField("component", "primitive"))

	runnerCfg := actionrunner.DefaultConfig()
	runnerCfg.MaxDuration = cfg.Runner.MaxDuration
	runnerCfg.MaxStatements = cfg.Runner.MaxStatements
	runnerCfg.PrimitiveTimeout = cfg.Runner.PrimitiveTimeout
	runner := actionrunner.New(primitives, runnerCfg, log.WithField("component", string(entity.RoleRunner)))

	templates, err := roles.DefaultTemplates(primitives)
	if err != nil {
		browser.Close()
		log.Close()
		return nil, fmt.Errorf("failed to render role prompts: %w", err)
	}

	recorder := metrics.NewRecorder()
	console := userinteraction.NewConsoleUserInteraction()
	caller := roles.NewCaller(llm, cfg.Model.Timeout, log, recorder)

	uc := orchestrator.New(orchestrator.Deps{
		Matcher:         matcher.New(),
		Planner:         roles.NewPlanner(caller, templates.Planner, log),
		Executor:        roles.NewExecutor(caller, templates.Executor, log),
		Verifier:        roles.NewVerifier(caller, templates.Verifier, log),
		Runner:          runner,
		Perception:      browser,
		Logger:          log,
		UserInteraction: console,
		Metrics:         recorder,
	}, orchestrator.Config{
		MaxRetries:     cfg.Orchestrator.MaxRetries,
		HistoryLimit:   cfg.Orchestrator.HistoryLimit,
		SettleDelay:    cfg.Orchestrator.SettleDelay,
		VerifierWindow: cfg.Orchestrator.VerifierWindow,
		ExecutorWindow: cfg.Orchestrator.ExecutorWindow,
	})

	c := &Container{
		Config:       cfg,
		Browser:      browser,
		Actuator:     actuator,
		LLM:          llm,
		Logger:       log,
		Primitives:   primitives,
		Metrics:      recorder,
		Console:      console,
		TaskExecutor: uc,
	}
	if cfg.History.ExportDir != "" {
		c.History = history.NewExporter(cfg.History.ExportDir, log)
	}

	log.Info("Container ready",
		"model", cfg.Model.Name,
		"dry_run", cfg.Actuator.DryRun,
		"primitives", primitives.Names(),
	)
	return c, nil
}

// Finish publishes the run's diagnostics: the History export and the
// metrics textfile, when configured. Failures are logged, not returned.
func (c *Container) Finish(report *entity.RunReport) {
	if report == nil {
		return
	}
	if c.History != nil {
		if _, err := c.History.Export(report); err != nil {
			c.Logger.Warn("History export failed", "error", err)
		}
	}
	if path := c.Config.Metrics.Textfile; path != "" {
		if err := c.Metrics.WriteTextfile(path); err != nil {
			c.Logger.Warn("Metrics textfile write failed", "error", err)
		}
	}
	stats := c.LLM.Stats()
	c.Logger.Info("Model call stats",
		"allowed", stats.Allowed,
		"waited", stats.Waited,
		"rejected", stats.Rejected,
		"wait_time", stats.WaitTime,
	)
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
