package workers

import (
	"runtime"
)

const (
	// DefaultTransferConcurrency is the number of concurrent copy tasks an
	// import runs when nothing else is configured.
	DefaultTransferConcurrency = 16

	// ReaderReserve is the number of database connections kept free for
	// read queries on top of the busiest worker pool.
	ReaderReserve = 4
)

// Count returns the number of workers for a task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count. Use 0 for no limit.
func Count(multiplier float64, limit int) int {
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// Resolve returns configured when it is positive and fallback otherwise.
func Resolve(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	if fallback < 1 {
		return 1
	}
	return fallback
}

// ConnectionBudget returns the minimum database pool size that lets every
// given worker pool hold a connection at the same time while ReaderReserve
// read queries are in flight. Pools run one at a time per process, so the
// busiest pool decides.
func ConnectionBudget(poolSizes ...int) int {
	busiest := 1
	for _, size := range poolSizes {
		if size > busiest {
			busiest = size
		}
	}
	return busiest + ReaderReserve
}
