package imgfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	QOI  Format = "qoi"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

const zstdExt = ".zst"

var extFormats = map[string]Format{
	".png":  PNG,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".gif":  GIF,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
	".qoi":  QOI,
}

// IsCompressed reports whether path names a zstd framed file.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), zstdExt)
}

// FormatFor infers the output format from the extension of path, looking
// past a trailing .zst.
func FormatFor(path string) (Format, error) {
	name := path
	if IsCompressed(name) {
		name = name[:len(name)-len(zstdExt)]
	}

	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := extFormats[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}
