package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"openclaw/internal/cli"
	"openclaw/internal/config"
	applog "openclaw/internal/log"
	"openclaw/internal/runner"
)

const usageText = `usage: openclaw-runner --task TASK [--model MODEL]
       openclaw-runner dashboard [flags]

Run "openclaw-runner dashboard -h" for the dashboard flags.
`

func main() {
	cli.LoadEnvFile()

	ctx, stop := cli.SignalContext()
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run returns the process exit code: 0 on success, 1 on runtime failures and
// 2 on usage errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	logger := cli.SetupLogger(cfg, stderr)

	if err := cfg.ValidateCommon(); err != nil {
		logger.Error("Configuration validation failed",
			applog.NewFields().WithError(err, applog.ErrorTypeConfiguration).ToSlice()...)
		return 1
	}

	if len(args) > 0 && args[0] == "dashboard" {
		return runDashboard(ctx, cfg, args[1:], stdout, stderr, logger)
	}
	return runTask(ctx, cfg, args, stdout, stderr, logger)
}

func runTask(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer, logger *applog.Logger) int {
	fs := flag.NewFlagSet("openclaw-runner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}
	taskID := fs.String("task", "", "task identifier (required)")
	model := fs.String("model", cfg.DefaultModel, "model name")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "openclaw-runner: unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return 2
	}
	taskSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "task" {
			taskSet = true
		}
	})
	if !taskSet {
		fmt.Fprintln(stderr, "openclaw-runner: the following arguments are required: --task")
		fs.Usage()
		return 2
	}

	publishers, cleanup := cli.ResultPublishers(cfg, stdout, logger)
	defer cleanup()

	r := runner.New(logger, publishers...)
	if _, err := r.Run(ctx, runner.Task{ID: *taskID, Model: *model}); err != nil {
		logger.Error("Task failed", applog.FieldError, err)
		return 1
	}
	return 0
}
