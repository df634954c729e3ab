package handlers

import (
	"net/http"
	"runtime"
	"time"

	"photo-catalog/internal/database"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Error   string `json:"error,omitempty"`

	// Catalog summary
	Pictures                 int    `json:"pictures"`
	PicturesMissingThumbnail int    `json:"picturesMissingThumbnail"`
	Directories              int    `json:"directories"`
	LastImport               string `json:"lastImport,omitempty"`
	LastThumbnailSync        string `json:"lastThumbnailSync,omitempty"`
	ThumbnailSyncRunning     bool   `json:"thumbnailSyncRunning"`
	PreviewsCached           int    `json:"previewsCached"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The catalog being
// unreadable makes the service degraded and answers 503.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:               statusHealthy,
		Version:              startup.Version,
		Uptime:               time.Since(h.startTime).Round(time.Second).String(),
		ThumbnailSyncRunning: h.pipeline.IsRunning(),
		PreviewsCached:       h.previews.Len(),
		GoVersion:            runtime.Version(),
		NumCPU:               runtime.NumCPU(),
		NumGoroutine:         runtime.NumGoroutine(),
	}

	stats, err := h.db.CatalogStats(r.Context())
	if err != nil {
		logging.Error("Health check: catalog unavailable: %v", err)
		response.Status = statusDegraded
		response.Error = "catalog unavailable"
	} else {
		response.Pictures = stats.Pictures
		response.PicturesMissingThumbnail = stats.PicturesMissingThumbnail
		response.Directories = stats.Directories
	}

	if t, err := h.db.GetLastRun(r.Context(), database.MetadataLastImport); err == nil && !t.IsZero() {
		response.LastImport = t.Format(time.RFC3339)
	}
	if t, err := h.db.GetLastRun(r.Context(), database.MetadataLastThumbnailSync); err == nil && !t.IsZero() {
		response.LastThumbnailSync = t.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	if response.Status != statusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}
