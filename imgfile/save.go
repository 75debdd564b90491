package imgfile

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type Options struct {
	// JPEGQuality ranges from 1 to 100. Zero means 100.
	JPEGQuality int
}

// Save encodes img to path in the format named by its extension. The image is
// written to a temporary file next to path and renamed into place once fully
// flushed, so a failed save leaves nothing behind.
func Save(path string, img image.Image, opts Options) (err error) {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	outFile, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination for %q: %w", path, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush destination %q: %w", path, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close destination %q: %w", path, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), path); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", path, defErr)
			}
		}

		if err != nil {
			if rmErr := os.Remove(outFile.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				slog.Error("could not remove temporary destination", "name", outFile.Name(), "error", rmErr)
			}
		}
	}()

	if err = outFile.Chmod(0o644); err != nil {
		return fmt.Errorf("could not set permissions on %q: %w", path, err)
	}

	bw := bufio.NewWriter(outFile)
	var w io.Writer = bw

	var zw *zstd.Encoder
	if IsCompressed(path) {
		if zw, err = zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedBetterCompression)); err != nil {
			return fmt.Errorf("could not open zstd stream %q: %w", path, err)
		}
		w = zw
	}

	if err = encode(w, img, format, opts); err != nil {
		return fmt.Errorf("could not encode %s destination %q: %w", format, path, err)
	}

	if zw != nil {
		if err = zw.Close(); err != nil {
			return fmt.Errorf("could not finish zstd stream %q: %w", path, err)
		}
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("could not write destination %q: %w", path, err)
	}

	canRename = true
	return nil
}

func encode(w io.Writer, img image.Image, format Format, opts Options) error {
	switch format {
	case GIF:
		return gif.Encode(w, img, nil)
	case JPEG:
		quality := opts.JPEGQuality
		if quality == 0 {
			quality = 100
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case PNG:
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		return enc.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case QOI:
		return qoi.Encode(w, img)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
