package importer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"photo-catalog/internal/database"
)

func picture(path string, captured *time.Time) database.Picture {
	p := database.NewPicture(path)
	p.CaptureTime = captured
	return p
}

func TestDestination(t *testing.T) {
	tests := []struct {
		name     string
		captured time.Time
		want     string
	}{
		{"single digit month and day", time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local), "/lib/2024/2024-03-01/a.jpg"},
		{"end of year", time.Date(2023, 12, 31, 23, 59, 59, 0, time.Local), "/lib/2023/2023-12-31/a.jpg"},
		{"early year", time.Date(812, 7, 4, 0, 0, 0, 0, time.Local), "/lib/0812/0812-07-04/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Destination("/lib", picture("/src/a.jpg", &tt.captured))
			if err != nil {
				t.Fatalf("Destination() error = %v", err)
			}
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("Destination() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDestination_MissingCaptureTime(t *testing.T) {
	_, err := Destination("/lib", picture("/src/a.jpg", nil))
	if !errors.Is(err, ErrMissingCaptureTime) {
		t.Errorf("Destination() error = %v, want ErrMissingCaptureTime", err)
	}
}

func TestBuildPlan(t *testing.T) {
	captured := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	ix := NewExistenceIndex([]database.Picture{picture("/lib/2019/2019-01-01/known.jpg", nil)})

	pictures := []database.Picture{
		picture("/src/known.jpg", &captured),
		picture("/src/undated.jpg", nil),
		picture("/src/one/dup.jpg", &captured),
		picture("/src/two/dup.jpg", &captured),
		picture("/src/new.jpg", &captured),
	}

	plan := BuildPlan(ix, pictures, func(p database.Picture) (string, error) {
		return Destination("/lib", p)
	})

	if plan.Known != 1 {
		t.Errorf("Known = %d, want 1", plan.Known)
	}
	if len(plan.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(plan.Entries))
	}
	if plan.Entries[0].Source != "/src/one/dup.jpg" || plan.Entries[1].Source != "/src/new.jpg" {
		t.Errorf("entries = %s, %s", plan.Entries[0].Source, plan.Entries[1].Source)
	}
	if !plan.Entries[0].CreateParent {
		t.Error("CreateParent = false for a missing parent")
	}

	if len(plan.Excluded) != 2 {
		t.Fatalf("Excluded = %d, want 2", len(plan.Excluded))
	}
	if !errors.Is(plan.Excluded[0].Err, ErrMissingCaptureTime) {
		t.Errorf("first exclusion = %v, want ErrMissingCaptureTime", plan.Excluded[0].Err)
	}
	if !errors.Is(plan.Excluded[1].Err, ErrDuplicateDestination) {
		t.Errorf("second exclusion = %v, want ErrDuplicateDestination", plan.Excluded[1].Err)
	}
}

func TestPlanInPlace(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	if err := db.InsertPictures(ctx, []database.Picture{picture(filepath.Join(dir, "old.jpg"), nil)}); err != nil {
		t.Fatal(err)
	}

	plan, err := NewPlanner(db).PlanInPlace(ctx, dir, []database.Picture{
		picture(filepath.Join(dir, "old.jpg"), nil),
		picture(filepath.Join(dir, "new.jpg"), nil),
	})
	if err != nil {
		t.Fatalf("PlanInPlace() error = %v", err)
	}
	if plan.Known != 1 || len(plan.Entries) != 1 {
		t.Fatalf("PlanInPlace() known = %d, entries = %d, want 1 and 1", plan.Known, len(plan.Entries))
	}
	if e := plan.Entries[0]; !e.InPlace() || e.CreateParent {
		t.Errorf("entry = %+v, want in place with an existing parent", e)
	}
}

func TestPlanInPlace_SameFilenameInAnotherDirectory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	old := filepath.Join(dir, "2023", "DSC_0001.jpg")
	if err := db.InsertPictures(ctx, []database.Picture{picture(old, nil)}); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, "2024", "DSC_0001.jpg")
	plan, err := NewPlanner(db).PlanInPlace(ctx, dir, []database.Picture{
		picture(old, nil),
		picture(fresh, nil),
	})
	if err != nil {
		t.Fatalf("PlanInPlace() error = %v", err)
	}
	if plan.Known != 1 || len(plan.Entries) != 1 {
		t.Fatalf("PlanInPlace() known = %d, entries = %d, want 1 and 1", plan.Known, len(plan.Entries))
	}
	if got := plan.Entries[0].Source; got != fresh {
		t.Errorf("planned %s, want %s", got, fresh)
	}
}

func TestPathIndex(t *testing.T) {
	ix := NewPathIndex([]database.Picture{picture("/lib/a/x.jpg", nil)})

	tests := []struct {
		path string
		want bool
	}{
		{"/lib/a/x.jpg", true},
		{"/lib/b/x.jpg", false},
		{"/lib/a/y.jpg", false},
	}
	for _, tt := range tests {
		if _, got := ix.Lookup(picture(tt.path, nil)); got != tt.want {
			t.Errorf("Lookup(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExistenceIndex(t *testing.T) {
	ix := NewExistenceIndex([]database.Picture{
		picture("/lib/a/x.jpg", nil),
		picture("/lib/b/x.jpg", nil),
	})
	dirs, ok := ix.Lookup(picture("/src/x.jpg", nil))
	if !ok || len(dirs) != 2 {
		t.Errorf("Lookup(x.jpg) = %v, %v, want both directories", dirs, ok)
	}
	if _, ok := ix.Lookup(picture("/src/y.jpg", nil)); ok {
		t.Error("Lookup(y.jpg) = true")
	}
}
