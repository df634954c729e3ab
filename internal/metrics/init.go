package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
func InitializeMetrics() {
	for _, result := range []string{"picture", "raw_only", "rejected_member"} {
		ScannerGroupsTotal.WithLabelValues(result)
	}

	for _, reason := range []string{"known", "missing_capture_time", "duplicate_destination"} {
		ImportPlanExcluded.WithLabelValues(reason)
	}

	for _, outcome := range []string{"copied", "in_place", "conflict", "failed"} {
		ImportTransfersTotal.WithLabelValues(outcome)
	}

	for _, status := range []string{"success", "error_read", "error_decode", "error_encode", "error_store"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}

	for _, mode := range []string{"missing", "all"} {
		ThumbnailSyncBatches.WithLabelValues(mode)
	}

	for _, op := range []string{"stat", "open", "create"} {
		for _, vol := range []string{"library", "source", "unknown"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, op := range []string{"list_pictures_under", "list_distinct_directories", "insert_pictures",
		"update_field", "resolve_directory", "get_picture", "list_directory_pictures",
		"list_thumbnail_candidates", "list_by_selection", "catalog_stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
