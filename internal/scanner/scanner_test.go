package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photo-catalog/internal/media"
	"photo-catalog/internal/media/mediatest"
)

// touch creates empty files under root.
func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		mediatest.WriteFile(t, filepath.Join(root, name), nil)
	}
}

func collect(t *testing.T, s *Scanner, root string) []Group {
	t.Helper()
	var groups []Group
	for g, err := range s.Groups(root) {
		if err != nil {
			t.Fatalf("Groups() error = %v", err)
		}
		groups = append(groups, g)
	}
	return groups
}

func TestGroups(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []Group
	}{
		{
			name:  "jpg with raw companion",
			files: []string{"a.jpg", "a.raw"},
			want:  []Group{{Primary: "a.jpg", Companion: "raw"}},
		},
		{
			name:  "raw sorts before jpg",
			files: []string{"a.RAW", "a.jpg"},
			want:  []Group{{Primary: "a.jpg", Companion: "RAW"}},
		},
		{
			name:  "uppercase raw before uppercase jpg",
			files: []string{"IMG_0001.CR2", "IMG_0001.JPG"},
			want:  []Group{{Primary: "IMG_0001.JPG", Companion: "CR2"}},
		},
		{
			name:  "jpg alone",
			files: []string{"b.jpg"},
			want:  []Group{{Primary: "b.jpg"}},
		},
		{
			name:  "raw only is dropped",
			files: []string{"c.NEF"},
			want:  nil,
		},
		{
			name:  "third member is rejected",
			files: []string{"d.ARW", "d.arw", "d.jpg"},
			want:  []Group{{Primary: "d.jpg", Companion: "ARW"}},
		},
		{
			name:  "two primaries keep the first",
			files: []string{"e.JPG", "e.jpg"},
			want:  []Group{{Primary: "e.JPG"}},
		},
		{
			name:  "unrelated extensions are ignored",
			files: []string{"f.jpg", "f.jpg.xmp", "f.png", "f.raf", "notes.txt"},
			want:  []Group{{Primary: "f.jpg", Companion: "raf"}},
		},
		{
			name:  "mixed case jpg is not a primary",
			files: []string{"g.Jpg", "g.dng"},
			want:  nil,
		},
		{
			name:  "hidden files are skipped",
			files: []string{".h.jpg", "h.jpg", ".cache/i.jpg"},
			want:  []Group{{Primary: "h.jpg"}},
		},
		{
			name:  "several groups in lexical order",
			files: []string{"b.jpg", "a.raw", "a.jpg", "sub/c.jpg", "sub/c.DNG"},
			want: []Group{
				{Primary: "a.jpg", Companion: "raw"},
				{Primary: "b.jpg"},
				{Primary: "sub/c.jpg", Companion: "DNG"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			touch(t, root, tt.files...)

			got := collect(t, New(), root)
			if len(got) != len(tt.want) {
				t.Fatalf("Groups() = %v, want %v", got, tt.want)
			}
			for i, w := range tt.want {
				w.Primary = filepath.Join(root, w.Primary)
				if got[i] != w {
					t.Errorf("group %d = %+v, want %+v", i, got[i], w)
				}
			}
		})
	}
}

func TestGroups_StopEarly(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.jpg", "c.jpg")

	count := 0
	for _, err := range New().Groups(root) {
		if err != nil {
			t.Fatal(err)
		}
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("consumed %d groups, want 2", count)
	}
}

func TestGroups_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	var errs []error
	for _, err := range New().Groups(root) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	var we *WalkError
	if !errors.As(errs[0], &we) || we.Path != root {
		t.Errorf("error = %v, want WalkError for root", errs[0])
	}
	if !errors.Is(errs[0], os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", errs[0])
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	captured := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.Local)
	mediatest.WriteJPEG(t, filepath.Join(root, "a.jpg"), mediatest.Options{CaptureTime: captured})
	mediatest.WriteFile(t, filepath.Join(root, "a.raw"), []byte("raw data"))
	mediatest.WriteJPEG(t, filepath.Join(root, "b.jpg"), mediatest.Options{})

	pictures, err := New().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(pictures) != 2 {
		t.Fatalf("Scan() returned %d pictures, want 2", len(pictures))
	}

	a, b := pictures[0], pictures[1]
	if a.Filename != "a.jpg" || a.Directory != root {
		t.Errorf("first picture = %s", a.Path())
	}
	if a.RawExtension == nil || *a.RawExtension != "raw" {
		t.Errorf("RawExtension = %v, want raw", a.RawExtension)
	}
	if a.CaptureTime == nil || !a.CaptureTime.Equal(captured) {
		t.Errorf("CaptureTime = %v, want %v", a.CaptureTime, captured)
	}

	// No EXIF: kept, but without a capture time.
	if b.Filename != "b.jpg" || b.CaptureTime != nil {
		t.Errorf("second picture = %s captured %v", b.Path(), b.CaptureTime)
	}

	if a.ID == b.ID {
		t.Error("pictures share an identifier")
	}
}

func TestScan_MetadataReaderCalledOncePerPicture(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "a.CR2", "b.jpg", "c.RAF")

	calls := map[string]int{}
	s := NewWithReader(func(path string) (media.Metadata, error) {
		calls[filepath.Base(path)]++
		return media.Metadata{Orientation: 1}, nil
	})

	pictures, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(pictures) != 2 {
		t.Fatalf("got %d pictures, want 2", len(pictures))
	}
	if calls["a.jpg"] != 1 || calls["b.jpg"] != 1 || len(calls) != 2 {
		t.Errorf("metadata reader calls = %v", calls)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := New().Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Scan() error = %v, want os.ErrNotExist", err)
	}
}

func TestScan_Canceled(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Scan(ctx, root); !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}
