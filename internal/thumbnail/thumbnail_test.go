package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"testing"

	"photo-catalog/internal/media/mediatest"
)

func quadrantsOf(img image.Image) [4]color.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	at := func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
	}
	return [4]color.NRGBA{
		at(w/4, h/4), at(3*w/4, h/4),
		at(w/4, 3*h/4), at(3*w/4, 3*h/4),
	}
}

func near(a, b color.NRGBA) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) < 48 && d(a.G, b.G) < 48 && d(a.B, b.B) < 48
}

func TestLoadThumbnail_Orientation(t *testing.T) {
	tl, tr, bl, br := mediatest.TopLeft, mediatest.TopRight, mediatest.BottomLeft, mediatest.BottomRight

	tests := []struct {
		orientation   int
		width, height int
		want          [4]color.NRGBA
	}{
		{1, 240, 120, [4]color.NRGBA{tl, tr, bl, br}},
		{2, 240, 120, [4]color.NRGBA{tr, tl, br, bl}},
		{3, 240, 120, [4]color.NRGBA{br, bl, tr, tl}},
		{4, 240, 120, [4]color.NRGBA{bl, br, tl, tr}},
		{5, 120, 240, [4]color.NRGBA{tl, bl, tr, br}},
		{6, 120, 240, [4]color.NRGBA{bl, tl, br, tr}},
		{7, 120, 240, [4]color.NRGBA{br, tr, bl, tl}},
		{8, 120, 240, [4]color.NRGBA{tr, br, tl, bl}},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		path := filepath.Join(dir, "o.jpg")
		mediatest.WriteJPEG(t, path, mediatest.Options{Width: 480, Height: 240, Orientation: tt.orientation})

		data, err := LoadThumbnail(path, DefaultSize, DefaultSize)
		if err != nil {
			t.Fatalf("orientation %d: LoadThumbnail() error = %v", tt.orientation, err)
		}
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("orientation %d: thumbnail is not a JPEG: %v", tt.orientation, err)
		}

		if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != tt.width || h != tt.height {
			t.Errorf("orientation %d: size %dx%d, want %dx%d", tt.orientation, w, h, tt.width, tt.height)
		}
		got := quadrantsOf(img)
		for i := range got {
			if !near(got[i], tt.want[i]) {
				t.Errorf("orientation %d: quadrant %d = %v, want %v", tt.orientation, i, got[i], tt.want[i])
			}
		}
	}
}

func TestLoadThumbnail_SmallImageIsNotEnlarged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.jpg")
	mediatest.WriteJPEG(t, path, mediatest.Options{Width: 64, Height: 32})

	data, err := LoadThumbnail(path, DefaultSize, DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Height != 32 {
		t.Errorf("size = %dx%d, want 64x32", cfg.Width, cfg.Height)
	}
}

func TestLoadThumbnail_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.jpg")
	mediatest.WriteFile(t, garbage, []byte("not an image"))

	tests := []struct {
		name   string
		path   string
		status string
	}{
		{"missing file", filepath.Join(dir, "missing.jpg"), "error_read"},
		{"undecodable file", garbage, "error_decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadThumbnail(tt.path, DefaultSize, DefaultSize)
			if err == nil {
				t.Fatal("LoadThumbnail() error = nil")
			}
			if got := status(err); got != tt.status {
				t.Errorf("status(%v) = %q, want %q", err, got, tt.status)
			}
		})
	}
}
