package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"photo-catalog/internal/filesystem"
	"photo-catalog/internal/media"
)

const (
	// DefaultSize is the edge of the box thumbnails are fitted into.
	DefaultSize = 240
	// Quality is the JPEG quality thumbnails are encoded with.
	Quality = 80
)

var (
	errRead   = errors.New("read source")
	errDecode = errors.New("decode source")
	errEncode = errors.New("encode thumbnail")
)

// LoadThumbnail renders the image at path into a width x height box,
// preserving its aspect ratio, turns it upright according to its EXIF
// orientation and returns it JPEG encoded.
func LoadThumbnail(path string, width, height int) ([]byte, error) {
	if _, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig()); err != nil {
		return nil, fmt.Errorf("%w: %w", errRead, err)
	}

	img, err := media.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errDecode, err)
	}

	thumb := imaging.Fit(img, width, height, imaging.Lanczos)
	upright := media.ApplyOrientation(thumb, media.Orientation(path))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, upright, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("%w: %w", errEncode, err)
	}
	return buf.Bytes(), nil
}

// status maps a LoadThumbnail error to its metrics label.
func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, errRead):
		return "error_read"
	case errors.Is(err, errDecode):
		return "error_decode"
	default:
		return "error_encode"
	}
}
