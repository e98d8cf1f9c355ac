package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gui-agent/internal/config"
	"gui-agent/internal/di"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/env"
)

const runTimeout = 30 * time.Minute

var errEmptyTask = errors.New("no task given")

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"history":  "history.show",
	"dry-run":  "actuator.dry_run",
	"headless": "browser.headless",
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	exitCode := 0
	cmd := newRootCmd(stdin, &exitCode)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return entity.Failed(err.Error()).ExitCode()
	}
	return exitCode
}

func newRootCmd(stdin io.Reader, exitCode *int) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "agent [task...]",
		Short: "Carry out a desktop task by looking at the screen and typing.",
		Long: "Runs one task. The task is taken from the arguments, or read as one line\n" +
			"from stdin when none are given. Exit status: 0 completed, 1 failed, 2 safety stop.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			envService := env.NewEnvService()
			if cfgFile == "" {
				cfgFile = envService.Get("AGENT_CONFIG")
			}

			cfg, err := loadConfig(cmd, cfgFile)
			if err != nil {
				return err
			}

			task, err := readTask(args, stdin, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			code, err := runTask(cmd.Context(), cfg, task, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			*exitCode = code
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (default $AGENT_CONFIG)")
	cmd.Flags().Bool("history", false, "print the full run history when done")
	cmd.Flags().Bool("dry-run", false, "log input instead of sending it to the browser")
	cmd.Flags().Bool("headless", false, "run the browser without a window")
	return cmd
}

func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	v, err := config.NewViper(path)
	if err != nil {
		return nil, err
	}
	if err := bindChangedFlags(cmd, v); err != nil {
		return nil, err
	}
	return config.NewConfigFromViper(v)
}

// bindChangedFlags lets explicitly set flags win over file and environment
// without their zero defaults shadowing configured values.
func bindChangedFlags(cmd *cobra.Command, v *viper.Viper) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// readTask joins the arguments, or reads one line from stdin when there are
// none.
func readTask(args []string, stdin io.Reader, prompt io.Writer) (entity.TaskRequest, error) {
	if len(args) > 0 {
		task := entity.NewTaskRequest(strings.Join(args, " "))
		if task.Empty() {
			return "", errEmptyTask
		}
		return task, nil
	}

	fmt.Fprintln(prompt, "Enter a task for the agent:")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read task: %w", err)
	}
	task := entity.NewTaskRequest(line)
	if task.Empty() {
		return "", errEmptyTask
	}
	return task, nil
}

func runTask(parent context.Context, cfg *config.Config, task entity.TaskRequest, out io.Writer) (int, error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	container, err := di.NewContainer(ctx, cfg, task.String())
	if err != nil {
		return 0, fmt.Errorf("initialization failed: %w", err)
	}
	defer container.Close()

	container.Logger.Info("Task started", "task", task.String())

	report, err := container.TaskExecutor.Run(ctx, task)
	if err != nil {
		container.Logger.Error("Task rejected", "error", err)
		return 0, err
	}
	container.Finish(report)

	if cfg.History.Show {
		container.Console.ShowHistory(report)
	}
	fmt.Fprintln(out, report.Summary())

	container.Logger.Info("Task finished",
		"outcome", report.Outcome.Kind,
		"history", len(report.History),
		"retries", report.Retries,
	)
	return report.Outcome.ExitCode(), nil
}
