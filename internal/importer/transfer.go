package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"photo-catalog/internal/database"
	"photo-catalog/internal/filesystem"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/metrics"
	"photo-catalog/internal/workers"
)

// Outcome is the result of transferring one plan entry.
type Outcome int

const (
	// OutcomeCopied means the primary and its companion were copied.
	OutcomeCopied Outcome = iota
	// OutcomeInPlace means source and destination are the same file.
	OutcomeInPlace
	// OutcomeConflict means the destination already existed and was left
	// untouched.
	OutcomeConflict
	// OutcomeFailed means the copy did not complete.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeInPlace:
		return "in_place"
	case OutcomeConflict:
		return "conflict"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes what happened to one entry.
type Result struct {
	Entry   PlanEntry
	Outcome Outcome
	Bytes   int64
	Err     error
}

// Report summarizes an executed plan.
type Report struct {
	Copied    int
	InPlace   int
	Conflicts int
	Failed    int
	Bytes     int64

	// Known and Excluded are carried over from the plan.
	Known    int
	Excluded []Exclusion

	Results  []Result
	Inserted []database.Picture

	// Err joins every per-entry failure. It does not abort the run.
	Err error
}

// Inserter writes imported pictures to the catalog.
type Inserter interface {
	InsertPictures(ctx context.Context, pictures []database.Picture) error
	ResolveOrCreateDirectory(ctx context.Context, path string) (uuid.UUID, error)
}

// Executor copies planned pictures with bounded concurrency and records the
// results in the catalog.
type Executor struct {
	catalog     Inserter
	concurrency int
	retry       filesystem.RetryConfig
	copy        func(PlanEntry) Result
}

// NewExecutor creates an executor running at most concurrency transfers at
// once. Non-positive values select workers.DefaultTransferConcurrency.
func NewExecutor(catalog Inserter, concurrency int) *Executor {
	e := &Executor{
		catalog:     catalog,
		concurrency: workers.Resolve(concurrency, workers.DefaultTransferConcurrency),
		retry:       filesystem.DefaultRetryConfig(),
	}
	e.copy = e.copyPair
	return e
}

// Concurrency returns the transfer cap.
func (e *Executor) Concurrency() int {
	return e.concurrency
}

// Execute transfers every entry of plan, then inserts all pictures that were
// not lost to a failure in a single catalog transaction. The returned error
// is non-nil only when the catalog write fails or ctx is done before the
// insert; per-entry failures are reported in Report.Err.
func (e *Executor) Execute(ctx context.Context, plan Plan) (Report, error) {
	results := e.Transfer(ctx, plan.Entries)

	report := summarize(results)
	report.Known = plan.Known
	report.Excluded = plan.Excluded

	var pictures []database.Picture
	dirIDs := make(map[string]uuid.UUID)
	for _, r := range results {
		if r.Outcome == OutcomeFailed {
			continue
		}
		p := r.Entry.Picture
		p.SetPath(r.Entry.Destination)

		id, ok := dirIDs[p.Directory]
		if !ok {
			var err error
			id, err = e.catalog.ResolveOrCreateDirectory(ctx, p.Directory)
			if err != nil {
				return report, fmt.Errorf("resolve directory %s: %w", p.Directory, err)
			}
			dirIDs[p.Directory] = id
		}
		p.DirectoryID = &id

		pictures = append(pictures, p)
	}

	if len(pictures) > 0 {
		if err := e.catalog.InsertPictures(ctx, pictures); err != nil {
			return report, fmt.Errorf("insert %d pictures: %w", len(pictures), err)
		}
	}
	report.Inserted = pictures

	logging.Info("Import finished: %d copied, %d in place, %d conflicts, %d failed, %d inserted",
		report.Copied, report.InPlace, report.Conflicts, report.Failed, len(pictures))

	return report, nil
}

// Transfer runs the copy step for every entry without touching the catalog.
// Results are returned in entry order. A failed entry never stops its
// siblings; entries not yet started when ctx is done fail with ctx's error.
func (e *Executor) Transfer(ctx context.Context, entries []PlanEntry) []Result {
	results := make([]Result, len(entries))

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Entry: entry, Outcome: OutcomeFailed, Err: err}
				metrics.ImportTransfersTotal.WithLabelValues(OutcomeFailed.String()).Inc()
				return nil
			}
			results[i] = e.transfer(entry)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Executor) transfer(entry PlanEntry) Result {
	metrics.ImportTransfersInFlight.Inc()
	start := time.Now()
	defer func() {
		metrics.ImportTransfersInFlight.Dec()
		metrics.ImportTransferDuration.Observe(time.Since(start).Seconds())
	}()

	r := e.copy(entry)
	metrics.ImportTransfersTotal.WithLabelValues(r.Outcome.String()).Inc()
	metrics.ImportBytesCopied.Add(float64(r.Bytes))

	switch r.Outcome {
	case OutcomeConflict:
		logging.Warn("Destination %s already exists, not copying %s", entry.Destination, entry.Source)
	case OutcomeFailed:
		logging.Warn("Failed to transfer %s: %v", entry.Source, r.Err)
	default:
		logging.Debug("Transferred %s -> %s (%s)", entry.Source, entry.Destination, r.Outcome)
	}
	return r
}

func (e *Executor) copyPair(entry PlanEntry) Result {
	r := Result{Entry: entry, Outcome: OutcomeCopied}

	if entry.InPlace() {
		r.Outcome = OutcomeInPlace
		return r
	}

	if err := os.MkdirAll(filepath.Dir(entry.Destination), 0o755); err != nil {
		r.Outcome = OutcomeFailed
		r.Err = fmt.Errorf("%s: create directory: %w", entry.Source, err)
		return r
	}

	exists, err := filesystem.Exists(entry.Destination, e.retry)
	if err != nil {
		r.Outcome = OutcomeFailed
		r.Err = fmt.Errorf("%s: check destination: %w", entry.Source, err)
		return r
	}
	if exists {
		r.Outcome = OutcomeConflict
	} else {
		n, err := filesystem.CopyFileExclusive(entry.Source, entry.Destination, e.retry)
		r.Bytes += n
		switch {
		case errors.Is(err, os.ErrExist):
			// Lost a race with another writer between the check and the create.
			r.Outcome = OutcomeConflict
		case err != nil:
			r.Outcome = OutcomeFailed
			r.Err = fmt.Errorf("%s: %w", entry.Source, err)
			return r
		}
	}

	// The companion is copied even when the primary was already there, so a
	// run interrupted between the two copies completes on the next import.
	if entry.Picture.RawExtension != nil {
		src := database.CompanionPathFor(entry.Source, *entry.Picture.RawExtension)
		dst := database.CompanionPathFor(entry.Destination, *entry.Picture.RawExtension)
		n, err := filesystem.CopyFileExclusive(src, dst, e.retry)
		r.Bytes += n
		if err != nil && !errors.Is(err, os.ErrExist) {
			r.Outcome = OutcomeFailed
			r.Err = fmt.Errorf("%s: companion: %w", entry.Source, err)
			return r
		}
	}

	return r
}

func summarize(results []Result) Report {
	report := Report{Results: results}
	var errs []error
	for _, r := range results {
		report.Bytes += r.Bytes
		switch r.Outcome {
		case OutcomeCopied:
			report.Copied++
		case OutcomeInPlace:
			report.InPlace++
		case OutcomeConflict:
			report.Conflicts++
		case OutcomeFailed:
			report.Failed++
			errs = append(errs, r.Err)
		}
	}
	report.Err = errors.Join(errs...)
	return report
}
