package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/NivaraGame/adaptive-lms-sub001/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var app cli.CLI
	ctx := kong.Parse(&app,
		kong.Name("lmsprobe"),
		kong.Description("Interactive console for the adaptive LMS backend API."),
		kong.UsageOnError(),
	)

	log, cleanup, err := newLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	return ctx.Run(&cli.Context{
		Globals: app.Globals,
		Out:     os.Stdout,
		Log:     log,
	})
}

// newLogger returns a file-backed debug logger when LMSPROBE_DEBUG_LOG names
// a path, otherwise a no-op logger. Stdout and stderr belong to the TUI.
func newLogger() (*zap.Logger, func(), error) {
	path := os.Getenv("LMSPROBE_DEBUG_LOG")
	if path == "" {
		return zap.NewNop(), func() {}, nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	log, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return log, func() { _ = log.Sync() }, nil
}
