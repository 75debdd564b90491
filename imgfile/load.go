package imgfile

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/zstd"
	_ "github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

// Load decodes the image at path into a zero-origin NRGBA buffer, whatever
// its original color model. It also returns the name of the decoded format.
func Load(path string) (*image.NRGBA, string, error) {
	inFile, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer func() {
		if closeErr := inFile.Close(); closeErr != nil {
			slog.Error("could not close source file", "name", path, "error", closeErr)
		}
	}()

	var r io.Reader = bufio.NewReader(inFile)
	if IsCompressed(path) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, "", fmt.Errorf("could not open zstd stream %q: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}

	return toNRGBA(img), format, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}

	dest := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dest, dest.Bounds(), img, b.Min, draw.Src)
	return dest
}
