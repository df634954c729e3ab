package metrics

import (
	"context"
	"time"

	"photo-catalog/internal/logging"
)

// Stats is a snapshot of catalog contents.
type Stats struct {
	Pictures                 int
	PicturesMissingThumbnail int
	Directories              int
}

// StatsProvider supplies catalog snapshots to the Collector.
type StatsProvider interface {
	CatalogStats(ctx context.Context) (Stats, error)
}

// Collector periodically refreshes the catalog gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := c.statsProvider.CatalogStats(ctx)
	if err != nil {
		logging.Warn("Failed to collect catalog stats: %v", err)
		return
	}

	CatalogPicturesTotal.Set(float64(stats.Pictures))
	CatalogPicturesMissingThumbnail.Set(float64(stats.PicturesMissingThumbnail))
	CatalogDirectoriesTotal.Set(float64(stats.Directories))

	logging.Debug("Metrics collected: pictures=%d, missing_thumbnails=%d, directories=%d",
		stats.Pictures, stats.PicturesMissingThumbnail, stats.Directories)
}
