package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"photo-catalog/internal/database"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/metrics"
	"photo-catalog/internal/scanner"
)

// Catalog is the part of the catalog an import needs.
type Catalog interface {
	PictureLister
	Inserter
}

// RunRecorder stores the time of the last successful import. The catalog
// implements it; an importer without one just skips the bookkeeping.
type RunRecorder interface {
	SetLastRun(ctx context.Context, key string, t time.Time) error
}

// Importer scans a source tree, plans the transfer into the library and
// executes it.
type Importer struct {
	catalog     Catalog
	libraryRoot string
	scanner     *scanner.Scanner
	planner     *Planner
	executor    *Executor
}

// New creates an importer that files pictures under libraryRoot using at
// most concurrency parallel transfers.
func New(catalog Catalog, libraryRoot string, concurrency int) *Importer {
	return &Importer{
		catalog:     catalog,
		libraryRoot: filepath.Clean(libraryRoot),
		scanner:     scanner.New(),
		planner:     NewPlanner(catalog),
		executor:    NewExecutor(catalog, concurrency),
	}
}

// WithScanner replaces the scanner, mostly so tests can stub metadata.
func (im *Importer) WithScanner(s *scanner.Scanner) *Importer {
	im.scanner = s
	return im
}

// LibraryRoot returns the root pictures are imported into.
func (im *Importer) LibraryRoot() string {
	return im.libraryRoot
}

// Preview scans source and returns the plan an import would execute.
func (im *Importer) Preview(ctx context.Context, source string) (Plan, error) {
	pictures, err := im.scanner.Scan(ctx, source)
	if err != nil {
		return Plan{}, fmt.Errorf("scan %s: %w", source, err)
	}
	return im.planner.Plan(ctx, im.libraryRoot, pictures)
}

// Import copies every new picture found under source into the library and
// catalogs it.
func (im *Importer) Import(ctx context.Context, source string) (Report, error) {
	start := time.Now()
	logging.Info("Importing %s into %s", source, im.libraryRoot)

	plan, err := im.Preview(ctx, source)
	if err != nil {
		return Report{}, err
	}
	logging.Info("Import plan: %d to transfer, %d already catalogued, %d excluded",
		len(plan.Entries), plan.Known, len(plan.Excluded))

	report, err := im.executor.Execute(ctx, plan)
	if err != nil {
		return report, err
	}

	im.recordRun(ctx, start)
	logging.Info("Import of %s completed in %v", source, time.Since(start).Round(time.Millisecond))
	return report, nil
}

// AddDirectory catalogs the pictures under dir where they are, without
// copying anything.
func (im *Importer) AddDirectory(ctx context.Context, dir string) (Report, error) {
	dir = filepath.Clean(dir)
	logging.Info("Adding %s to the catalog in place", dir)

	pictures, err := im.scanner.Scan(ctx, dir)
	if err != nil {
		return Report{}, fmt.Errorf("scan %s: %w", dir, err)
	}
	plan, err := im.planner.PlanInPlace(ctx, dir, pictures)
	if err != nil {
		return Report{}, err
	}
	return im.executor.Execute(ctx, plan)
}

func (im *Importer) recordRun(ctx context.Context, start time.Time) {
	metrics.ImportLastRunTimestamp.Set(float64(start.Unix()))
	rec, ok := im.catalog.(RunRecorder)
	if !ok {
		return
	}
	if err := rec.SetLastRun(ctx, database.MetadataLastImport, start); err != nil {
		logging.Warn("Failed to record import time: %v", err)
	}
}
