// Package main is the timelens CLI entrypoint.
package main

import (
	"log/slog"
	"os"

	"github.com/timelens/timelens/internal/cli"
)

func main() {
	level := slog.LevelWarn
	if os.Getenv("TIMELENS_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Command output already went through the formatter; the exit
		// code is the remaining signal.
		slog.Debug("command failed", "error", err)
		os.Exit(cli.GetExitCode(err))
	}
}
