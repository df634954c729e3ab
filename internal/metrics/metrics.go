package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Catalog database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_db_queries_total",
			Help: "Total number of catalog queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_catalog_db_query_duration_seconds",
			Help:    "Catalog query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_catalog_db_transaction_duration_seconds",
			Help:    "Catalog transaction duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"outcome"}, // "commit" or "rollback"
	)

	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_catalog_db_rows_affected",
			Help:    "Rows written per catalog statement",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_db_connections_open",
			Help: "Number of open catalog database connections",
		},
	)
)

// Catalog content gauges, refreshed by the Collector
var (
	CatalogPicturesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_pictures_total",
			Help: "Number of pictures in the catalog",
		},
	)

	CatalogPicturesMissingThumbnail = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_pictures_missing_thumbnail",
			Help: "Number of pictures without a stored thumbnail",
		},
	)

	CatalogDirectoriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_directories_total",
			Help: "Number of distinct picture directories",
		},
	)
)

// Scanner and import metrics
var (
	ScannerGroupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_scanner_groups_total",
			Help: "Picture groups produced or dropped by the directory scanner",
		},
		[]string{"result"}, // "picture", "raw_only", "rejected_member"
	)

	ScannerMetadataErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_catalog_scanner_metadata_errors_total",
			Help: "Pictures whose capture metadata could not be read",
		},
	)

	ImportPlanExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_import_plan_excluded_total",
			Help: "Pictures excluded while planning an import",
		},
		[]string{"reason"}, // "known", "missing_capture_time", "duplicate_destination"
	)

	ImportTransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_import_transfers_total",
			Help: "Import transfer tasks by outcome",
		},
		[]string{"outcome"}, // "copied", "in_place", "conflict", "failed"
	)

	ImportTransferDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_catalog_import_transfer_duration_seconds",
			Help:    "Duration of a single picture transfer (primary plus companion)",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ImportBytesCopied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_catalog_import_bytes_copied_total",
			Help: "Bytes copied into the library",
		},
	)

	ImportTransfersInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_import_transfers_in_flight",
			Help: "Transfer tasks currently running",
		},
	)

	ImportLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_import_last_run_timestamp",
			Help: "Unix timestamp of the last completed import",
		},
	)
)

// Thumbnail pipeline metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"}, // "success", "error_read", "error_decode", "error_encode", "error_store"
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_catalog_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailSyncRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_thumbnail_sync_running",
			Help: "Whether a thumbnail synchronization is running (1 = running, 0 = idle)",
		},
	)

	ThumbnailSyncBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_thumbnail_sync_batches_total",
			Help: "Thumbnail synchronization batches completed",
		},
		[]string{"mode"}, // "missing" or "all"
	)

	ThumbnailSyncLastDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_thumbnail_sync_last_duration_seconds",
			Help: "Duration of the last thumbnail synchronization in seconds",
		},
	)
)

// Preview cache metrics
var (
	PreviewCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_catalog_preview_cache_hits_total",
			Help: "Preview cache hits",
		},
	)

	PreviewCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_catalog_preview_cache_misses_total",
			Help: "Preview cache misses",
		},
	)

	PreviewCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_catalog_preview_cache_evictions_total",
			Help: "Preview cache entries evicted by recency",
		},
	)

	PreviewCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_preview_cache_entries",
			Help: "Decoded previews currently held in memory",
		},
	)

	PreviewDecodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_catalog_preview_decode_duration_seconds",
			Help:    "Full resolution decode time on preview cache misses",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_filesystem_retry_attempts_total",
			Help: "Filesystem operations retried after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_catalog_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_catalog_filesystem_retry_duration_seconds",
			Help:    "Total time spent in a retrying filesystem operation",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_catalog_memory_paused",
			Help: "Whether image decoding is paused for memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_catalog_memory_gc_pauses_total",
			Help: "Times decoding was paused and a GC forced for memory pressure",
		},
	)
)
