package importer

import (
	"context"
	"path/filepath"
	"testing"

	"photo-catalog/internal/database"
	"photo-catalog/internal/media/mediatest"
)

func TestExport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	lib := t.TempDir()
	target := t.TempDir()

	pick := database.NewPicture(filepath.Join(lib, "a.jpg"))
	raw := "dng"
	pick.RawExtension = &raw
	pick.Selection = database.SelectionPick
	taken := database.NewPicture(filepath.Join(lib, "b.jpg"))
	taken.Selection = database.SelectionPick
	ordinary := database.NewPicture(filepath.Join(lib, "c.jpg"))
	if err := db.InsertPictures(ctx, []database.Picture{pick, taken, ordinary}); err != nil {
		t.Fatal(err)
	}

	mediatest.WriteFile(t, filepath.Join(lib, "a.jpg"), []byte("a"))
	mediatest.WriteFile(t, filepath.Join(lib, "a.dng"), []byte("a raw"))
	mediatest.WriteFile(t, filepath.Join(lib, "b.jpg"), []byte("b"))
	mediatest.WriteFile(t, filepath.Join(lib, "c.jpg"), []byte("c"))
	mediatest.WriteFile(t, filepath.Join(target, "b.jpg"), []byte("already here"))

	report, err := Export(ctx, db, database.SelectionPick, target, 2)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if report.Copied != 1 || report.Conflicts != 1 {
		t.Errorf("Export() copied = %d, conflicts = %d, want 1 and 1", report.Copied, report.Conflicts)
	}
	if got := string(readFile(t, filepath.Join(target, "a.dng"))); got != "a raw" {
		t.Errorf("exported companion = %q", got)
	}
	if got := string(readFile(t, filepath.Join(target, "b.jpg"))); got != "already here" {
		t.Errorf("existing export target overwritten: %q", got)
	}
	if len(report.Inserted) != 0 {
		t.Errorf("Export() inserted %d pictures", len(report.Inserted))
	}
}
