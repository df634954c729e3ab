package media

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"photo-catalog/internal/filesystem"
	"photo-catalog/internal/logging"
)

// exifTimeLayout is the fixed DateTime format of the EXIF standard.
const exifTimeLayout = "2006:01:02 15:04:05"

// ErrNoCaptureTime is returned when none of the EXIF date tags is usable.
var ErrNoCaptureTime = errors.New("no capture time in EXIF data")

// Metadata holds the EXIF fields the catalog uses.
type Metadata struct {
	// CaptureTime is nil when no date tag could be parsed.
	CaptureTime *time.Time
	// Orientation is the EXIF orientation, 1-8. Defaults to 1.
	Orientation int
}

// captureTimeFields are tried in order; the first parseable value wins.
var captureTimeFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// ReadMetadata decodes the EXIF block of the file at path.
// An error is returned when the file cannot be opened or carries no EXIF data.
// A file with EXIF but no usable date returns Metadata with a nil CaptureTime.
func ReadMetadata(path string) (Metadata, error) {
	md := Metadata{Orientation: 1}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return md, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	x, err := exif.Decode(f)
	if err != nil {
		return md, fmt.Errorf("decode exif %s: %w", path, err)
	}

	if t, ok := captureTime(x); ok {
		md.CaptureTime = &t
	}
	md.Orientation = orientation(x)

	return md, nil
}

// CaptureTime returns the capture time recorded in the file at path.
func CaptureTime(path string) (time.Time, error) {
	md, err := ReadMetadata(path)
	if err != nil {
		return time.Time{}, err
	}
	if md.CaptureTime == nil {
		return time.Time{}, fmt.Errorf("%s: %w", path, ErrNoCaptureTime)
	}
	return *md.CaptureTime, nil
}

// Orientation returns the EXIF orientation of the file at path, or 1 when
// the file has none.
func Orientation(path string) int {
	md, err := ReadMetadata(path)
	if err != nil {
		logging.Debug("No orientation for %s: %v", path, err)
		return 1
	}
	return md.Orientation
}

func captureTime(x *exif.Exif) (time.Time, bool) {
	for _, field := range captureTimeFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		s = strings.TrimRight(s, "\x00 ")
		t, err := time.ParseInLocation(exifTimeLayout, s, time.Local)
		if err != nil {
			logging.Debug("Unparseable EXIF %s %q: %v", field, s, err)
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

func orientation(x *exif.Exif) int {
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}
