package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"chromashift/imgfile"
	"chromashift/parallel"
	"chromashift/rgbimg"
	"chromashift/shift"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Input   string         `arg:"" help:"Source image"`
	Output  string         `arg:"" help:"Destination image. Format follows the extension (png, jpg, gif, bmp, tiff, qoi); a trailing .zst adds zstd compression"`
	Offset  uint           `short:"o" help:"Shift distance in pixels" default:"5"`
	Workers int            `short:"w" help:"Worker goroutines per stage, 0 for one per CPU" default:"0"`
	Quality int            `help:"JPEG output quality (1-100)" default:"100"`
	Verbose bool           `short:"v" help:"Enable debug logging" default:"false"`
	format  imgfile.Format `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	info, err := os.Stat(c.Input)
	if err == nil && !info.Mode().IsRegular() {
		err = fmt.Errorf("not a regular file: %s", info.Mode().String())
	}
	if err != nil {
		return fmt.Errorf("invalid input %q: %w", c.Input, err)
	}

	if c.format, err = imgfile.FormatFor(c.Output); err != nil {
		return fmt.Errorf("invalid output: %w", err)
	}

	switch {
	case c.Offset > math.MaxInt32:
		return fmt.Errorf("offset too large: %d", c.Offset)
	case c.Workers < 0:
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	case c.Quality < 1 || c.Quality > 100:
		return fmt.Errorf("invalid JPEG quality: %d", c.Quality)
	}

	return nil
}

func (c *CLICmd) Run(pool *parallel.Pool, logger *slog.Logger) error {
	img, format, err := imgfile.Load(c.Input)
	if err != nil {
		return err
	}
	logger.Info("loaded", "file", c.Input, "format", format,
		"width", img.Rect.Dx(), "height", img.Rect.Dy())

	shifted := shift.New(pool, logger).Aberrate(img, int(c.Offset))

	if err = imgfile.Save(c.Output, rgbimg.FromNRGBA(shifted), imgfile.Options{JPEGQuality: c.Quality}); err != nil {
		return err
	}
	logger.Info("saved", "file", c.Output, "format", c.format)

	return nil
}
