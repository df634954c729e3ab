package handlers

import (
	"context"
	"sync"
	"time"

	"photo-catalog/internal/database"
	"photo-catalog/internal/importer"
	"photo-catalog/internal/preview"
	"photo-catalog/internal/thumbnail"
)

// Handlers serves the catalog HTTP API.
type Handlers struct {
	db       *database.Database
	importer *importer.Importer
	pipeline *thumbnail.Pipeline
	previews *preview.Cache

	startTime time.Time

	// background work started by requests, stopped by Shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(db *database.Database, im *importer.Importer, pipeline *thumbnail.Pipeline, previews *preview.Cache) *Handlers {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handlers{
		db:        db,
		importer:  im,
		pipeline:  pipeline,
		previews:  previews,
		startTime: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Wait blocks until background work started by requests has finished.
func (h *Handlers) Wait() {
	h.wg.Wait()
}

// Shutdown cancels background work and waits for it to stop.
func (h *Handlers) Shutdown() {
	h.cancel()
	h.wg.Wait()
}
