package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"photo-catalog/internal/database"
	"photo-catalog/internal/filesystem"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/metrics"
)

var (
	// ErrMissingCaptureTime excludes a picture whose destination cannot be
	// derived because it has no capture time.
	ErrMissingCaptureTime = errors.New("picture has no capture time")
	// ErrDuplicateDestination excludes a picture whose destination was
	// already claimed by an earlier picture in the same run.
	ErrDuplicateDestination = errors.New("destination already planned")
)

// PictureLister lists the catalogued pictures under a directory prefix.
type PictureLister interface {
	ListPicturesUnder(ctx context.Context, prefix string) ([]database.Picture, error)
}

// Index reports whether a discovered picture is already catalogued and, if
// so, where.
type Index interface {
	Lookup(p database.Picture) ([]string, bool)
}

// ExistenceIndex maps a filename to every catalogued directory holding a
// file of that name. Dedup is by filename only: two different photographs
// that share a name count as the same picture.
type ExistenceIndex map[string][]string

// NewExistenceIndex indexes pictures by filename.
func NewExistenceIndex(pictures []database.Picture) ExistenceIndex {
	ix := make(ExistenceIndex, len(pictures))
	for _, p := range pictures {
		ix[p.Filename] = append(ix[p.Filename], p.Directory)
	}
	return ix
}

// Lookup returns the directories holding p's filename.
func (ix ExistenceIndex) Lookup(p database.Picture) ([]string, bool) {
	dirs := ix[p.Filename]
	return dirs, len(dirs) > 0
}

// PathIndex holds the full path of every catalogued picture. Pictures added
// in place are deduplicated on directory and filename together.
type PathIndex map[string]struct{}

// NewPathIndex indexes pictures by full path.
func NewPathIndex(pictures []database.Picture) PathIndex {
	ix := make(PathIndex, len(pictures))
	for _, p := range pictures {
		ix[filepath.Clean(p.Path())] = struct{}{}
	}
	return ix
}

// Lookup reports whether p's own path is catalogued.
func (ix PathIndex) Lookup(p database.Picture) ([]string, bool) {
	path := filepath.Clean(p.Path())
	if _, ok := ix[path]; !ok {
		return nil, false
	}
	return []string{filepath.Dir(path)}, true
}

// PlanEntry is one picture to transfer.
type PlanEntry struct {
	Source      string
	Destination string
	Picture     database.Picture
	// CreateParent is set when the destination directory did not exist at
	// planning time.
	CreateParent bool
}

// InPlace reports whether the picture is already at its destination.
func (e PlanEntry) InPlace() bool {
	return filepath.Clean(e.Source) == filepath.Clean(e.Destination)
}

// Exclusion records a picture left out of a plan and why.
type Exclusion struct {
	Picture database.Picture
	Err     error
}

// Plan is the outcome of planning one import run.
type Plan struct {
	Entries []PlanEntry
	// Known counts pictures skipped because they are already catalogued.
	Known    int
	Excluded []Exclusion
}

// Destination returns {root}/{YYYY}/{YYYY}-{MM}-{DD}/{filename} for p.
func Destination(libraryRoot string, p database.Picture) (string, error) {
	if p.CaptureTime == nil {
		return "", fmt.Errorf("%s: %w", p.Path(), ErrMissingCaptureTime)
	}
	t := *p.CaptureTime
	return filepath.Join(
		libraryRoot,
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day()),
		p.Filename,
	), nil
}

// Planner decides which discovered pictures an import should transfer and
// where to.
type Planner struct {
	catalog PictureLister
}

// NewPlanner creates a planner backed by catalog.
func NewPlanner(catalog PictureLister) *Planner {
	return &Planner{catalog: catalog}
}

// Plan drops pictures whose filename is already catalogued under
// libraryRoot and computes a date-based destination for the rest.
func (pl *Planner) Plan(ctx context.Context, libraryRoot string, pictures []database.Picture) (Plan, error) {
	existing, err := pl.existing(ctx, libraryRoot)
	if err != nil {
		return Plan{}, err
	}
	return BuildPlan(NewExistenceIndex(existing), pictures, func(p database.Picture) (string, error) {
		return Destination(libraryRoot, p)
	}), nil
}

// PlanInPlace catalogues pictures where they are. Pictures whose path is
// already catalogued are dropped; a catalogued file of the same name in
// another directory does not hide a new one.
func (pl *Planner) PlanInPlace(ctx context.Context, dir string, pictures []database.Picture) (Plan, error) {
	existing, err := pl.existing(ctx, dir)
	if err != nil {
		return Plan{}, err
	}
	return BuildPlan(NewPathIndex(existing), pictures, func(p database.Picture) (string, error) {
		return p.Path(), nil
	}), nil
}

func (pl *Planner) existing(ctx context.Context, root string) ([]database.Picture, error) {
	existing, err := pl.catalog.ListPicturesUnder(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list catalogued pictures under %s: %w", root, err)
	}
	logging.Debug("Existence index for %s: %d catalogued pictures", root, len(existing))
	return existing, nil
}

// BuildPlan filters pictures against ix and resolves a destination for each
// remaining picture. When two pictures resolve to the same destination the
// first keeps it.
func BuildPlan(ix Index, pictures []database.Picture, destination func(database.Picture) (string, error)) Plan {
	var plan Plan
	claimed := make(map[string]string, len(pictures))
	parents := make(map[string]bool)

	for _, p := range pictures {
		if where, ok := ix.Lookup(p); ok {
			logging.Debug("Skipping %s: already catalogued in %v", p.Path(), where)
			metrics.ImportPlanExcluded.WithLabelValues("known").Inc()
			plan.Known++
			continue
		}

		dest, err := destination(p)
		if err != nil {
			logging.Warn("Excluding %s from import: %v", p.Path(), err)
			metrics.ImportPlanExcluded.WithLabelValues("missing_capture_time").Inc()
			plan.Excluded = append(plan.Excluded, Exclusion{Picture: p, Err: err})
			continue
		}

		if first, ok := claimed[dest]; ok {
			err := fmt.Errorf("%s: %s is planned for %s: %w", p.Path(), dest, first, ErrDuplicateDestination)
			logging.Warn("Excluding %s from import: %v", p.Path(), err)
			metrics.ImportPlanExcluded.WithLabelValues("duplicate_destination").Inc()
			plan.Excluded = append(plan.Excluded, Exclusion{Picture: p, Err: err})
			continue
		}
		claimed[dest] = p.Path()

		parent := filepath.Dir(dest)
		create, seen := parents[parent]
		if !seen {
			create = !dirExists(parent)
			parents[parent] = create
		}

		plan.Entries = append(plan.Entries, PlanEntry{
			Source:       p.Path(),
			Destination:  dest,
			Picture:      p,
			CreateParent: create,
		})
	}

	return plan
}

func dirExists(path string) bool {
	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Debug("Cannot stat %s: %v", path, err)
		}
		return false
	}
	return info.IsDir()
}
