// Package mediatest writes synthetic JPEG files with hand-built EXIF blocks
// for tests.
package mediatest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Quadrant colors used by Quadrants. Each sits far from the others so
// they stay distinguishable after JPEG compression and resizing.
var (
	TopLeft     = color.NRGBA{R: 255, A: 255}
	TopRight    = color.NRGBA{G: 255, A: 255}
	BottomLeft  = color.NRGBA{B: 255, A: 255}
	BottomRight = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Options controls the file written by WriteJPEG.
type Options struct {
	Width, Height int
	// CaptureTime is written as DateTimeOriginal when non-zero.
	CaptureTime time.Time
	// Orientation is written to IFD0 when between 1 and 8.
	Orientation int
}

// Quadrants returns a width x height image split into four solid quadrants.
func Quadrants(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			switch {
			case x < width/2 && y < height/2:
				c = TopLeft
			case y < height/2:
				c = TopRight
			case x < width/2:
				c = BottomLeft
			default:
				c = BottomRight
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// JPEG returns the encoded bytes of a quadrant image carrying the EXIF
// fields set in opts.
func JPEG(tb testing.TB, opts Options) []byte {
	tb.Helper()

	if opts.Width == 0 {
		opts.Width = 64
	}
	if opts.Height == 0 {
		opts.Height = 32
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Quadrants(opts.Width, opts.Height), &jpeg.Options{Quality: 95}); err != nil {
		tb.Fatalf("encode jpeg: %v", err)
	}
	data := buf.Bytes()

	app1 := exifSegment(opts)
	if app1 == nil {
		return data
	}

	// Insert APP1 directly after the SOI marker.
	out := make([]byte, 0, len(data)+len(app1))
	out = append(out, data[:2]...)
	out = append(out, app1...)
	out = append(out, data[2:]...)
	return out
}

// WriteJPEG writes a synthetic JPEG to path, creating parent directories.
func WriteJPEG(tb testing.TB, path string, opts Options) {
	tb.Helper()
	WriteFile(tb, path, JPEG(tb, opts))
}

// WriteFile writes arbitrary content to path, creating parent directories.
func WriteFile(tb testing.TB, path string, content []byte) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}

const (
	tagOrientation      = 0x0112
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003

	typeASCII = 2
	typeShort = 3
	typeLong  = 4
)

type ifdEntry struct {
	tag, typ uint16
	count    uint32
	value    uint32
}

// exifSegment builds a little-endian TIFF structure wrapped in an APP1
// marker. It returns nil when opts carries no EXIF fields.
func exifSegment(opts Options) []byte {
	hasOrientation := opts.Orientation >= 1 && opts.Orientation <= 8
	hasDate := !opts.CaptureTime.IsZero()
	if !hasOrientation && !hasDate {
		return nil
	}

	le := binary.LittleEndian
	var ifd0 []ifdEntry
	if hasOrientation {
		ifd0 = append(ifd0, ifdEntry{tag: tagOrientation, typ: typeShort, count: 1, value: uint32(opts.Orientation)})
	}

	// Layout: header(8) | IFD0 | Exif IFD | date string
	ifd0Size := uint32(2 + 12*(len(ifd0)+boolInt(hasDate)) + 4)
	exifOffset := 8 + ifd0Size
	dateOffset := exifOffset + 2 + 12 + 4
	if hasDate {
		ifd0 = append(ifd0, ifdEntry{tag: tagExifIFDPointer, typ: typeLong, count: 1, value: exifOffset})
	}

	var tiff bytes.Buffer
	tiff.WriteString("II")
	_ = binary.Write(&tiff, le, uint16(42))
	_ = binary.Write(&tiff, le, uint32(8))
	writeIFD(&tiff, ifd0)

	if hasDate {
		date := opts.CaptureTime.Format("2006:01:02 15:04:05") + "\x00"
		writeIFD(&tiff, []ifdEntry{{tag: tagDateTimeOriginal, typ: typeASCII, count: uint32(len(date)), value: dateOffset}})
		tiff.WriteString(date)
	}

	var seg bytes.Buffer
	seg.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&seg, binary.BigEndian, uint16(2+6+tiff.Len()))
	seg.WriteString("Exif\x00\x00")
	seg.Write(tiff.Bytes())
	return seg.Bytes()
}

func writeIFD(buf *bytes.Buffer, entries []ifdEntry) {
	le := binary.LittleEndian
	_ = binary.Write(buf, le, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(buf, le, e.tag)
		_ = binary.Write(buf, le, e.typ)
		_ = binary.Write(buf, le, e.count)
		if e.typ == typeShort {
			_ = binary.Write(buf, le, uint16(e.value))
			_ = binary.Write(buf, le, uint16(0))
		} else {
			_ = binary.Write(buf, le, e.value)
		}
	}
	_ = binary.Write(buf, le, uint32(0))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
