package media

import (
	"errors"
	"fmt"
	"image"

	// Decoders registered for image.Decode and imaging.Decode
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"photo-catalog/internal/filesystem"
	"photo-catalog/internal/logging"
)

const (
	// MaxImageDimension is the largest width or height kept after decoding
	// a full resolution picture.
	MaxImageDimension = 4096

	// MaxImagePixels bounds total pixels after decoding. A 20MP NRGBA image
	// holds about 80MB.
	MaxImagePixels = 20_000_000

	// MaxSourcePixels rejects a file before decoding when its header claims
	// more pixels than this.
	MaxSourcePixels = 250_000_000
)

// ErrTooLarge is returned by Decode for images above MaxSourcePixels.
var ErrTooLarge = errors.New("image too large to decode")

// ImageDimensions holds image width and height
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions returns image dimensions without fully decoding the image
func GetImageDimensions(path string) (*ImageDimensions, error) {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}

	return &ImageDimensions{
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// Decode decodes the image at path as stored, without applying EXIF orientation.
func Decode(path string) (image.Image, error) {
	return decode(path, MaxSourcePixels)
}

func decode(path string, maxPixels int) (image.Image, error) {
	dims, err := GetImageDimensions(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if dims.Width*dims.Height > maxPixels {
		return nil, fmt.Errorf("decode %s: %dx%d: %w", path, dims.Width, dims.Height, ErrTooLarge)
	}

	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	img, err := imaging.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// ApplyOrientation transforms img so that it displays upright for the given
// EXIF orientation. Values outside 1-8 are treated as 1.
func ApplyOrientation(img image.Image, orientation int) *image.NRGBA {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}

// ConstrainedSize returns the size an image of width x height is scaled to
// so that neither side exceeds maxDimension and the area stays within
// maxPixels. The aspect ratio is preserved.
func ConstrainedSize(width, height, maxDimension, maxPixels int) (int, int) {
	targetWidth, targetHeight := width, height

	if width > maxDimension || height > maxDimension {
		if width > height {
			targetWidth = maxDimension
			targetHeight = height * maxDimension / width
		} else {
			targetHeight = maxDimension
			targetWidth = width * maxDimension / height
		}
	}

	if targetPixels := targetWidth * targetHeight; targetPixels > maxPixels {
		scale := float64(maxPixels) / float64(targetPixels)
		targetWidth = int(float64(targetWidth) * scale)
		targetHeight = int(float64(targetHeight) * scale)
	}

	return max(targetWidth, 1), max(targetHeight, 1)
}

// LoadUpright decodes the image at path, downscales it to the given bounds
// if needed, and applies its EXIF orientation.
func LoadUpright(path string, maxDimension, maxPixels int) (*image.NRGBA, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := ConstrainedSize(b.Dx(), b.Dy(), maxDimension, maxPixels)
	if w != b.Dx() || h != b.Dy() {
		logging.Debug("Constraining large image %s from %dx%d to %dx%d", path, b.Dx(), b.Dy(), w, h)
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	return ApplyOrientation(img, Orientation(path)), nil
}
