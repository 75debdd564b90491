package main

import (
	"log/slog"
	"os"

	"chromashift/parallel"

	"github.com/alecthomas/kong"
)

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	var cli CLICmd
	kctx := kong.Parse(&cli,
		kong.Name("chromashift"),
		kong.Description("Shift the red, green and blue channels of an image apart."),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.Verbose)
	slog.SetDefault(logger)

	pool := parallel.Start(cli.Workers)
	err := kctx.Run(pool, logger)
	pool.Wait(true)

	if err != nil {
		logger.Error("could not shift image", "error", err)
		os.Exit(1)
	}
}
