package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"photo-catalog/internal/database"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/memory"
	"photo-catalog/internal/metrics"
	"photo-catalog/internal/workers"
)

// Mode selects the pictures a sync regenerates.
type Mode int

const (
	// ModeMissing regenerates only pictures without a thumbnail.
	ModeMissing Mode = iota
	// ModeAll regenerates every picture.
	ModeAll
)

func (m Mode) String() string {
	if m == ModeAll {
		return "all"
	}
	return "missing"
}

// ErrSyncRunning is returned when a sync is started while another one is
// still in progress on the same pipeline.
var ErrSyncRunning = errors.New("thumbnail sync already running")

// Catalog is the part of the catalog the pipeline reads and updates.
type Catalog interface {
	ListPicturesForThumbnails(ctx context.Context, all bool) ([]database.Picture, error)
	UpdateField(ctx context.Context, id uuid.UUID, field database.Field, value any) error
}

// RunRecorder stores the time of the last completed sync.
type RunRecorder interface {
	SetLastRun(ctx context.Context, key string, t time.Time) error
}

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	// Concurrency caps parallel renders. Defaults to one per CPU.
	Concurrency int
	// Size is the edge of the thumbnail box. Defaults to DefaultSize.
	Size int
	// Monitor, when set, pauses rendering under memory pressure.
	Monitor *memory.Monitor
}

// Result summarizes a sync.
type Result struct {
	Selected  int
	Generated int
	// Skipped counts pictures whose source could not be read or decoded.
	Skipped  int
	Duration time.Duration
}

// Pipeline regenerates stored thumbnails with bounded concurrency.
type Pipeline struct {
	catalog     Catalog
	concurrency int
	size        int
	monitor     *memory.Monitor
	running     atomic.Bool
}

// New creates a pipeline over catalog.
func New(catalog Catalog, opts Options) *Pipeline {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	return &Pipeline{
		catalog:     catalog,
		concurrency: workers.Resolve(opts.Concurrency, workers.ForCPU(0)),
		size:        size,
		monitor:     opts.Monitor,
	}
}

// Concurrency returns the render cap.
func (p *Pipeline) Concurrency() int {
	return p.concurrency
}

// IsRunning reports whether a sync is in progress.
func (p *Pipeline) IsRunning() bool {
	return p.running.Load()
}

// Sync renders and stores thumbnails for the pictures selected by mode.
// Pictures whose source cannot be read or decoded are logged and left
// without a thumbnail. Failed catalog updates are joined into the returned
// error; they do not stop the other renders.
func (p *Pipeline) Sync(ctx context.Context, mode Mode) (Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		return Result{}, ErrSyncRunning
	}
	defer p.running.Store(false)

	metrics.ThumbnailSyncRunning.Set(1)
	defer metrics.ThumbnailSyncRunning.Set(0)

	start := time.Now()
	pictures, err := p.catalog.ListPicturesForThumbnails(ctx, mode == ModeAll)
	if err != nil {
		return Result{}, fmt.Errorf("list pictures for thumbnails: %w", err)
	}
	logging.Info("Thumbnail sync (%s): %d pictures, %d workers", mode, len(pictures), p.concurrency)

	var (
		generated atomic.Int64
		skipped   atomic.Int64
		stopped   atomic.Bool
		mu        sync.Mutex
		errs      []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for _, pic := range pictures {
		g.Go(func() error {
			if err := p.monitor.Wait(ctx); err != nil {
				stopped.Store(true)
				return nil
			}

			path := pic.Path()
			data, err := p.render(path)
			if err != nil {
				logging.Warn("Skipping thumbnail for %s: %v", path, err)
				skipped.Add(1)
				return nil
			}

			if err := p.catalog.UpdateField(ctx, pic.ID, database.FieldThumbnail, data); err != nil {
				metrics.ThumbnailGenerationsTotal.WithLabelValues("error_store").Inc()
				fail(fmt.Errorf("store thumbnail for %s: %w", path, err))
				return nil
			}
			generated.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	if stopped.Load() {
		errs = append(errs, ctx.Err())
	}

	result := Result{
		Selected:  len(pictures),
		Generated: int(generated.Load()),
		Skipped:   int(skipped.Load()),
		Duration:  time.Since(start),
	}

	metrics.ThumbnailSyncBatches.WithLabelValues(mode.String()).Inc()
	metrics.ThumbnailSyncLastDuration.Set(result.Duration.Seconds())
	logging.Info("Thumbnail sync (%s) finished in %v: %d generated, %d skipped, %d failed",
		mode, result.Duration.Round(time.Millisecond), result.Generated, result.Skipped, len(errs))

	if err := errors.Join(errs...); err != nil {
		return result, err
	}

	if rec, ok := p.catalog.(RunRecorder); ok {
		if err := rec.SetLastRun(ctx, database.MetadataLastThumbnailSync, start); err != nil {
			logging.Warn("Failed to record thumbnail sync time: %v", err)
		}
	}
	return result, nil
}

func (p *Pipeline) render(path string) ([]byte, error) {
	start := time.Now()
	data, err := LoadThumbnail(path, p.size, p.size)
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	metrics.ThumbnailGenerationsTotal.WithLabelValues(status(err)).Inc()
	return data, err
}
