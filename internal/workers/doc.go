/*
Package workers sizes the bounded worker pools used by imports and thumbnail
synchronization.

Both pipelines take their concurrency cap as an explicit constructor
parameter. This package supplies the defaults those parameters fall back to:

	// File copies are I/O bound: a fixed cap of 16
	transfer := workers.Resolve(cfg.TransferWorkers, workers.DefaultTransferConcurrency)

	// Thumbnail decoding is CPU bound: one worker per available core
	thumbs := workers.Resolve(cfg.ThumbnailWorkers, workers.ForCPU(0))

# Container limits

GOMAXPROCS follows cgroup CPU limits in Go 1.19+, while runtime.NumCPU reports
the host. Count uses GOMAXPROCS so a pod limited to 2 CPUs on a 64 core node
gets 2 thumbnail workers, not 64.

# Database connections

Every worker in a pool may hold a catalog connection while it writes. If the
SQLite pool is smaller than the worker count plus the readers running
alongside, writers wait on connections that no reader releases. Use
ConnectionBudget to size the pool:

	db.SetMaxOpenConns(workers.ConnectionBudget(transfer, thumbs))
*/
package workers
