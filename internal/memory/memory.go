package memory

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"photo-catalog/internal/logging"
	"photo-catalog/internal/metrics"
)

// Config holds memory management configuration
type Config struct {
	// MemoryLimitBytes is the soft memory limit (0 = use GOMEMLIMIT or no limit)
	MemoryLimitBytes int64

	// HighWaterMark is the fraction of the limit below which a paused monitor resumes.
	HighWaterMark float64

	// CriticalWaterMark is the fraction of the limit at which decoding pauses.
	CriticalWaterMark float64

	CheckInterval time.Duration
}

// DefaultConfig returns sensible defaults for memory management
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor tracks heap usage and pauses image decoding when it runs high.
// Full resolution decodes are the dominant allocation in the catalog, so the
// thumbnail pipeline and the preview cache wait on the monitor before each one.
type Monitor struct {
	config   Config
	limit    int64
	readHeap func() uint64

	stopOnce sync.Once
	stopChan chan struct{}

	mu        sync.RWMutex
	current   uint64
	isPaused  bool
	pauseChan chan struct{}
}

// NewMonitor creates a new memory monitor
func NewMonitor(config Config) *Monitor {
	limit := config.MemoryLimitBytes

	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
			logging.Info("Memory monitor using GOMEMLIMIT: %s", FormatBytes(limit))
		}
	}

	if limit == 0 {
		logging.Debug("Memory monitor: no memory limit configured, backpressure disabled")
	}

	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultConfig().CheckInterval
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		readHeap:  heapAlloc,
		stopChan:  make(chan struct{}),
		pauseChan: make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins monitoring memory usage
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}

	go m.monitorLoop()
}

// Stop stops the monitor and releases any waiters.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkMemory()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) checkMemory() {
	alloc := m.readHeap()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = alloc
	if m.limit <= 0 {
		return
	}

	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	switch {
	case usage >= m.config.CriticalWaterMark && !m.isPaused:
		logging.Warn("Memory critical (%.1f%% of limit), pausing image decoding", usage*100)
		m.isPaused = true
		metrics.MemoryPaused.Set(1)
		metrics.MemoryGCPauses.Inc()
		go runtime.GC()
	case usage < m.config.HighWaterMark && m.isPaused:
		logging.Info("Memory recovered (%.1f%% of limit), resuming image decoding", usage*100)
		m.isPaused = false
		metrics.MemoryPaused.Set(0)
		close(m.pauseChan)
		m.pauseChan = make(chan struct{})
	}
}

// Wait blocks while the monitor is paused. It returns ctx.Err() if the
// context ends first. A nil Monitor never blocks. A stopped monitor releases
// waiters immediately.
func (m *Monitor) Wait(ctx context.Context) error {
	if m == nil {
		return ctx.Err()
	}

	m.mu.RLock()
	if !m.isPaused {
		m.mu.RUnlock()
		return ctx.Err()
	}
	pauseChan := m.pauseChan
	m.mu.RUnlock()

	select {
	case <-pauseChan:
		return nil
	case <-m.stopChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsPaused returns true if decoding should be paused entirely
func (m *Monitor) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isPaused
}

// GetUsage returns current memory usage as a fraction of the limit.
// Returns 0 if no limit is configured.
func (m *Monitor) GetUsage() float64 {
	if m.limit == 0 {
		return 0
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return float64(m.current) / float64(m.limit)
}

// Limit returns the limit in bytes the monitor compares against.
func (m *Monitor) Limit() int64 {
	return m.limit
}
