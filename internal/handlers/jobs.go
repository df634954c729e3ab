package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"photo-catalog/internal/importer"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/thumbnail"
)

// ImportRequest names the directory an import or catalog-in-place reads.
type ImportRequest struct {
	Source    string `json:"source,omitempty"`
	Directory string `json:"directory,omitempty"`
}

// ImportResponse summarizes a finished import.
type ImportResponse struct {
	Copied    int      `json:"copied"`
	InPlace   int      `json:"inPlace"`
	Conflicts int      `json:"conflicts"`
	Failed    int      `json:"failed"`
	Known     int      `json:"known"`
	Excluded  int      `json:"excluded"`
	Inserted  int      `json:"inserted"`
	Bytes     int64    `json:"bytes"`
	Errors    []string `json:"errors,omitempty"`
}

// NewImportResponse flattens a report into its wire form.
func NewImportResponse(report importer.Report) ImportResponse {
	resp := ImportResponse{
		Copied:    report.Copied,
		InPlace:   report.InPlace,
		Conflicts: report.Conflicts,
		Failed:    report.Failed,
		Known:     report.Known,
		Excluded:  len(report.Excluded),
		Inserted:  len(report.Inserted),
		Bytes:     report.Bytes,
	}
	for _, r := range report.Results {
		if r.Err != nil {
			resp.Errors = append(resp.Errors, r.Err.Error())
		}
	}
	for _, e := range report.Excluded {
		resp.Errors = append(resp.Errors, e.Err.Error())
	}
	return resp
}

// decodeDirectory reads the request body and returns the absolute directory
// it names, answering 400 itself on failure.
func decodeDirectory(w http.ResponseWriter, r *http.Request, pick func(ImportRequest) string) (string, bool) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return "", false
	}
	dir := pick(req)
	if dir == "" {
		writeJSONError(w, "Directory is required", http.StatusBadRequest)
		return "", false
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		writeJSONError(w, "Invalid directory", http.StatusBadRequest)
		return "", false
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		writeJSONError(w, "Directory not found", http.StatusBadRequest)
		return "", false
	}
	return abs, true
}

// Import copies new pictures from the requested source into the library.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	source, ok := decodeDirectory(w, r, func(req ImportRequest) string { return req.Source })
	if !ok {
		return
	}

	report, err := h.importer.Import(r.Context(), source)
	if err != nil {
		logging.Error("Import of %s failed: %v", source, err)
		writeJSONError(w, "Import failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, NewImportResponse(report))
}

// AddDirectory catalogs the pictures of the requested directory in place.
func (h *Handlers) AddDirectory(w http.ResponseWriter, r *http.Request) {
	dir, ok := decodeDirectory(w, r, func(req ImportRequest) string { return req.Directory })
	if !ok {
		return
	}

	report, err := h.importer.AddDirectory(r.Context(), dir)
	if err != nil {
		logging.Error("Adding %s failed: %v", dir, err)
		writeJSONError(w, "Add directory failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, NewImportResponse(report))
}

// TriggerThumbnailSync starts a thumbnail sync in the background. The all
// query parameter regenerates every thumbnail instead of the missing ones.
func (h *Handlers) TriggerThumbnailSync(w http.ResponseWriter, r *http.Request) {
	mode := thumbnail.ModeMissing
	if s := r.URL.Query().Get("all"); s != "" {
		all, err := strconv.ParseBool(s)
		if err != nil {
			writeJSONError(w, "all must be a boolean", http.StatusBadRequest)
			return
		}
		if all {
			mode = thumbnail.ModeAll
		}
	}

	if h.pipeline.IsRunning() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		writeJSON(w, map[string]string{
			"status":  "already_running",
			"message": "Thumbnail sync is already in progress",
		})
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if _, err := h.pipeline.Sync(h.ctx, mode); err != nil {
			if errors.Is(err, thumbnail.ErrSyncRunning) {
				logging.Info("Thumbnail sync request ignored: %v", err)
				return
			}
			logging.Error("Thumbnail sync failed: %v", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{
		"status":  "started",
		"mode":    mode.String(),
		"message": "Thumbnail sync started",
	})
}
