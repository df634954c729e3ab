// Package metrics provides Prometheus instrumentation for the photo catalog.
//
// All metrics are prefixed with "photo_catalog_" and registered through
// promauto, so they appear on the default registry as soon as the package
// is imported.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// ## Database Metrics
//   - DBQueryTotal and DBQueryDuration by catalog operation
//   - DBTransactionDuration, DBRowsAffected, DBConnectionsOpen
//
// ## Catalog Metrics
//
// Refreshed by the Collector from a StatsProvider:
//   - CatalogPicturesTotal, CatalogPicturesMissingThumbnail, CatalogDirectoriesTotal
//
// ## Import Metrics
//   - ScannerGroupsTotal, ScannerMetadataErrors
//   - ImportPlanExcluded by reason
//   - ImportTransfersTotal by outcome, ImportTransferDuration, ImportBytesCopied
//   - ImportTransfersInFlight, ImportLastRunTimestamp
//
// ## Thumbnail Metrics
//   - ThumbnailGenerationsTotal by status, ThumbnailGenerationDuration
//   - ThumbnailSyncRunning, ThumbnailSyncBatches, ThumbnailSyncLastDuration
//
// ## Preview Cache Metrics
//   - PreviewCacheHits, PreviewCacheMisses, PreviewCacheEvictions
//   - PreviewCacheEntries, PreviewDecodeDuration
//
// ## Filesystem and Memory Metrics
//   - FilesystemRetry* counters by operation and volume, FilesystemStaleErrors
//   - MemoryUsageRatio, MemoryPaused, MemoryGCPauses
//
// # Usage
//
// Call InitializeMetrics once at startup so every label combination is
// exported from the first scrape, and install NewFilesystemObserver with
// filesystem.SetObserver to route retry events here.
package metrics
