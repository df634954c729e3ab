package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photo-catalog/internal/database"
	"photo-catalog/internal/handlers"
	"photo-catalog/internal/importer"
	"photo-catalog/internal/media/mediatest"
)

type testEnv struct {
	lib string
	db  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{lib: t.TempDir(), db: t.TempDir()}
	t.Setenv("LIBRARY_DIR", env.lib)
	t.Setenv("DATABASE_DIR", env.db)
	t.Setenv("TRANSFER_WORKERS", "2")
	t.Setenv("THUMBNAIL_WORKERS", "2")
	return env
}

func run(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.Bytes(), err
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return v
}

func (e *testEnv) openCatalog(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), database.Options{Path: filepath.Join(e.db, "catalog.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// writeCard lays out a source directory holding one jpg+raw pair.
func writeCard(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	mediatest.WriteJPEG(t, filepath.Join(src, "a.jpg"), mediatest.Options{
		Width: 64, Height: 32,
		CaptureTime: time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local),
	})
	mediatest.WriteFile(t, filepath.Join(src, "a.raw"), []byte("raw bytes"))
	return src
}

func TestImportDryRunThenImport(t *testing.T) {
	env := setupTestEnv(t)
	src := writeCard(t)
	want := filepath.Join(env.lib, "2024", "2024-03-01", "a.jpg")

	out, err := run(t, "import", src, "--dry-run", "-o", "json")
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	plan := decode[planOutput](t, out)
	if len(plan.Transfers) != 1 {
		t.Fatalf("transfers = %+v, want 1", plan.Transfers)
	}
	if plan.Transfers[0].Destination != want || !plan.Transfers[0].CreateParent {
		t.Errorf("transfer = %+v, want %s with a new directory", plan.Transfers[0], want)
	}
	if _, err := os.Stat(want); !os.IsNotExist(err) {
		t.Fatalf("dry run copied the file: %v", err)
	}

	out, err = run(t, "import", src, "-o", "json")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	resp := decode[handlers.ImportResponse](t, out)
	if resp.Copied != 1 || resp.Inserted != 1 {
		t.Errorf("response = %+v, want one copied and inserted", resp)
	}
	for _, name := range []string{"a.jpg", "a.raw"} {
		if _, err := os.Stat(filepath.Join(filepath.Dir(want), name)); err != nil {
			t.Errorf("%s not copied: %v", name, err)
		}
	}

	out, err = run(t, "import", src, "--dry-run", "-o", "json")
	if err != nil {
		t.Fatal(err)
	}
	plan = decode[planOutput](t, out)
	if len(plan.Transfers) != 0 || plan.Known != 1 {
		t.Errorf("second plan = %+v, want nothing to transfer and one known", plan)
	}

	out, err = run(t, "directories", "-o", "json")
	if err != nil {
		t.Fatal(err)
	}
	dirs := decode[[]string](t, out)
	if len(dirs) != 1 || dirs[0] != filepath.Dir(want) {
		t.Errorf("directories = %v, want [%s]", dirs, filepath.Dir(want))
	}
}

func TestImportTextOutput(t *testing.T) {
	setupTestEnv(t)
	src := writeCard(t)

	out, err := run(t, "import", src, "--dry-run", "-o", "text")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out, []byte("1 to transfer, 0 already catalogued, 0 excluded")) {
		t.Errorf("output = %q", out)
	}
	if !bytes.Contains(out, []byte("(new directory)")) {
		t.Errorf("output %q does not flag the new directory", out)
	}
}

func TestAddThumbnailsExport(t *testing.T) {
	env := setupTestEnv(t)
	src := writeCard(t)

	out, err := run(t, "add", src, "-o", "json")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if resp := decode[handlers.ImportResponse](t, out); resp.InPlace != 1 || resp.Inserted != 1 {
		t.Errorf("add response = %+v, want one in place", resp)
	}

	out, err = run(t, "thumbnails", "-o", "json")
	if err != nil {
		t.Fatalf("thumbnails: %v", err)
	}
	thumbs := decode[map[string]any](t, out)
	if thumbs["generated"] != float64(1) {
		t.Errorf("thumbnails = %v, want one generated", thumbs)
	}

	db := env.openCatalog(t)
	pictures, err := db.ListDirectoryPictures(context.Background(), src)
	if err != nil || len(pictures) != 1 {
		t.Fatalf("pictures = %v, %v", pictures, err)
	}
	if !pictures[0].HasThumbnail {
		t.Error("thumbnail not stored")
	}
	if err := db.UpdateField(context.Background(), pictures[0].ID, database.FieldSelection, database.SelectionPick); err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(t.TempDir(), "picks")
	out, err = run(t, "export", target, "--selection", "Pick", "-o", "json")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if resp := decode[handlers.ImportResponse](t, out); resp.Copied != 1 {
		t.Errorf("export response = %+v, want one copied", resp)
	}
	if _, err := os.Stat(filepath.Join(target, "a.raw")); err != nil {
		t.Errorf("companion not exported: %v", err)
	}
}

func TestCommandErrors(t *testing.T) {
	setupTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing argument", []string{"import"}},
		{"unknown output", []string{"directories", "-o", "yaml"}},
		{"bad selection", []string{"export", t.TempDir(), "--selection", "Maybe"}},
		{"bad log level", []string{"directories", "--log-level", "loud"}},
		{"missing config file", []string{"directories", "--config", filepath.Join(t.TempDir(), "none.yaml")}},
		{"missing source", []string{"import", filepath.Join(t.TempDir(), "gone")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Errorf("%v: expected an error", tt.args)
			}
		})
	}
}

func TestNewPrinter(t *testing.T) {
	var buf bytes.Buffer

	tests := []struct {
		format   string
		wantJSON bool
	}{
		{"auto", true},
		{"", true},
		{"json", true},
		{"text", false},
	}

	for _, tt := range tests {
		p, err := newPrinter(&buf, tt.format)
		if err != nil {
			t.Fatalf("newPrinter(%q): %v", tt.format, err)
		}
		if p.json != tt.wantJSON {
			t.Errorf("newPrinter(%q).json = %v, want %v", tt.format, p.json, tt.wantJSON)
		}
	}
}

func TestFailedTransfers(t *testing.T) {
	if err := failedTransfers(importer.Report{Copied: 3}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cause := errors.New("disk full")
	err := failedTransfers(importer.Report{Failed: 2, Err: cause})
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, want it to wrap %v", err, cause)
	}
}

func TestFinish(t *testing.T) {
	var buf bytes.Buffer
	out, err := newPrinter(&buf, "json")
	if err != nil {
		t.Fatal(err)
	}

	// An add interrupted part way reports failed in-place entries.
	cause := context.Canceled
	err = finish(out, importer.Report{InPlace: 1, Failed: 1, Err: cause})
	if !errors.Is(err, cause) {
		t.Errorf("finish() error = %v, want it to wrap %v", err, cause)
	}
	if buf.Len() == 0 {
		t.Error("finish() printed nothing before failing")
	}

	buf.Reset()
	if err := finish(out, importer.Report{InPlace: 2}); err != nil {
		t.Errorf("finish() error = %v for a clean report", err)
	}
}
