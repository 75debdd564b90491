package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"chromashift/imgfile"
	"chromashift/parallel"
	"chromashift/rgbimg"

	"github.com/alecthomas/kong"
)

func parse(t *testing.T, args ...string) (*CLICmd, *kong.Context, error) {
	t.Helper()
	var cli CLICmd
	parser, err := kong.New(&cli, kong.Name("chromashift"), kong.Exit(func(int) {}))
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	kctx, err := parser.Parse(args)
	return &cli, kctx, err
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := imgfile.Save(path, img, imgfile.Options{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	cli, kctx, err := parse(t, args...)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}

	pool := parallel.Start(cli.Workers)
	defer pool.Wait(true)
	return kctx.Run(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseDefaults(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.png")
	writeImage(t, in, rgbimg.New(image.Rect(0, 0, 1, 1)))

	cli, _, err := parse(t, in, "out.png")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cli.Offset != 5 {
		t.Errorf("offset = %d, want 5", cli.Offset)
	}
	if cli.Quality != 100 || cli.Workers != 0 || cli.Verbose {
		t.Errorf("unexpected defaults: %+v", cli)
	}

	cli, _, err = parse(t, "-o", "12", in, "out.jpg")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cli.Offset != 12 || cli.format != imgfile.JPEG {
		t.Errorf("offset = %d, format = %s", cli.Offset, cli.format)
	}
}

func TestParseErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeImage(t, in, rgbimg.New(image.Rect(0, 0, 1, 1)))

	for name, args := range map[string][]string{
		"missing output":     {in},
		"missing input file": {filepath.Join(dir, "nope.png"), "out.png"},
		"input is directory": {dir, "out.png"},
		"unknown extension":  {in, "out.xyz"},
		"negative offset":    {"--offset=-1", in, "out.png"},
		"bad quality":        {"--quality=0", in, "out.jpg"},
		"negative workers":   {"--workers=-2", in, "out.png"},
	} {
		if _, _, err := parse(t, args...); err == nil {
			t.Errorf("%s: parse succeeded", name)
		}
	}
}

func TestRunUniformImage(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:], []uint8{255, 0, 0, 255})
	}
	in, out := filepath.Join(dir, "red.png"), filepath.Join(dir, "out.png")
	writeImage(t, in, src)

	if err := run(t, "--offset=5", in, out); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, _, err := imgfile.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Fatal("uniform image changed")
	}

	// IHDR: bit depth 8, color type 2 (truecolor, no alpha)
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 26 {
		t.Fatalf("output too short: %d bytes", len(raw))
	}
	if depth, colorType := raw[24], raw[25]; depth != 8 || colorType != 2 {
		t.Errorf("png bit depth = %d, color type = %d, want 8 and 2", depth, colorType)
	}
}

func TestRunShiftsChannels(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			v := uint8(10*y + x)
			src.SetNRGBA(x, y, color.NRGBA{v, v + 100, v + 150, 255})
		}
	}
	in, out := filepath.Join(dir, "in.png"), filepath.Join(dir, "out.qoi.zst")
	writeImage(t, in, src)

	if err := run(t, "-o", "1", "-w", "3", in, out); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, format, err := imgfile.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if format != "qoi" {
		t.Errorf("format = %q, want qoi", format)
	}

	// red reads from the left, green from above, blue from the right
	if c, want := got.NRGBAAt(2, 2), (color.NRGBA{21, 112, 173, 255}); c != want {
		t.Errorf("pixel (2,2) = %v, want %v", c, want)
	}
	// corners with no in-bounds source keep their own channel values
	if c, want := got.NRGBAAt(0, 0), (color.NRGBA{0, 100, 151, 255}); c != want {
		t.Errorf("pixel (0,0) = %v, want %v", c, want)
	}
	if c, want := got.NRGBAAt(4, 0), (color.NRGBA{3, 104, 154, 255}); c != want {
		t.Errorf("pixel (4,0) = %v, want %v", c, want)
	}
}

func TestRunOffsetBeyondImage(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 7)
	}
	in, out := filepath.Join(dir, "in.png"), filepath.Join(dir, "out.bmp")
	writeImage(t, in, src)

	if err := run(t, "--offset=1000", in, out); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, _, err := imgfile.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := rgbimg.FromNRGBA(src)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c := got.NRGBAAt(x, y)
			if w := want.RGBAt(x, y); c.R != w.R || c.G != w.G || c.B != w.B || c.A != 0xff {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, c, w)
			}
		}
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(t, corrupt, filepath.Join(dir, "out.png")); !errors.Is(err, image.ErrFormat) {
		t.Errorf("corrupt input error = %v, want image.ErrFormat", err)
	}

	in := filepath.Join(dir, "in.png")
	writeImage(t, in, rgbimg.New(image.Rect(0, 0, 3, 3)))
	if err := run(t, in, filepath.Join(dir, "missing", "out.png")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unwritable output error = %v, want fs.ErrNotExist", err)
	}
}
