package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"photo-catalog/internal/database"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/streaming"
)

// previewQuality is the JPEG quality previews are served with.
const previewQuality = 90

// UpdateRequest carries the new value of a single picture field.
type UpdateRequest struct {
	Value json.RawMessage `json:"value"`
}

// ListDirectories returns every directory that holds a catalogued picture.
func (h *Handlers) ListDirectories(w http.ResponseWriter, r *http.Request) {
	dirs, err := h.db.ListDistinctDirectories(r.Context())
	if err != nil {
		logging.Error("ListDirectories: %v", err)
		writeJSONError(w, "Failed to list directories", http.StatusInternalServerError)
		return
	}

	if dirs == nil {
		dirs = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, dirs)
}

// ListPictures returns the pictures of one directory, newest first, or every
// picture with a given selection.
func (h *Handlers) ListPictures(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		pictures []database.Picture
		err      error
	)
	switch {
	case query.Get("directory") != "":
		pictures, err = h.db.ListDirectoryPictures(r.Context(), query.Get("directory"))
	case query.Get("selection") != "":
		sel, parseErr := database.ParseSelection(query.Get("selection"))
		if parseErr != nil {
			writeJSONError(w, parseErr.Error(), http.StatusBadRequest)
			return
		}
		pictures, err = h.db.ListPicturesBySelection(r.Context(), sel)
	default:
		writeJSONError(w, "directory or selection is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		logging.Error("ListPictures: %v", err)
		writeJSONError(w, "Failed to list pictures", http.StatusInternalServerError)
		return
	}

	if pictures == nil {
		pictures = []database.Picture{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, pictures)
}

// GetPicture returns a single picture.
func (h *Handlers) GetPicture(w http.ResponseWriter, r *http.Request) {
	id, ok := pictureID(w, r)
	if !ok {
		return
	}

	p, err := h.db.GetPicture(r.Context(), id)
	if !h.pictureFound(w, err) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, p)
}

// UpdatePicture sets one of selection, rating, flag or hidden and returns
// the updated picture. Thumbnails are only written by the sync pipeline.
func (h *Handlers) UpdatePicture(w http.ResponseWriter, r *http.Request) {
	id, ok := pictureID(w, r)
	if !ok {
		return
	}

	field, err := database.ParseField(mux.Vars(r)["field"])
	if err != nil || field == database.FieldThumbnail {
		writeJSONError(w, "Unknown field", http.StatusBadRequest)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	value, err := decodeFieldValue(field, req.Value)
	if err != nil {
		writeJSONError(w, "Invalid value for "+string(field), http.StatusBadRequest)
		return
	}

	if err := h.db.UpdateField(r.Context(), id, field, value); err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			writeJSONError(w, "Picture not found", http.StatusNotFound)
		case errors.Is(err, database.ErrInvalidValue):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logging.Error("UpdatePicture %s %s: %v", id, field, err)
			writeJSONError(w, "Failed to update picture", http.StatusInternalServerError)
		}
		return
	}

	p, err := h.db.GetPicture(r.Context(), id)
	if !h.pictureFound(w, err) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, p)
}

// decodeFieldValue turns a JSON value into the Go type UpdateField expects.
func decodeFieldValue(field database.Field, raw json.RawMessage) (any, error) {
	switch field {
	case database.FieldSelection:
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case database.FieldRating:
		var rating *int
		err := json.Unmarshal(raw, &rating)
		return rating, err
	case database.FieldFlag:
		var flag *string
		if err := json.Unmarshal(raw, &flag); err != nil {
			return nil, err
		}
		if flag == nil {
			return nil, nil
		}
		return *flag, nil
	case database.FieldHidden:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	}
	return nil, database.ErrUnknownField
}

// GetThumbnail serves the stored thumbnail of a picture.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := pictureID(w, r)
	if !ok {
		return
	}

	p, err := h.db.GetPicture(r.Context(), id)
	if !h.pictureFound(w, err) {
		return
	}
	if len(p.Thumbnail) == 0 {
		writeJSONError(w, "Thumbnail not generated yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=3600")
	serveImage(w, r, p.Thumbnail)
}

// GetPreview serves an upright full-resolution rendering of a picture from
// the preview cache. The optional max query parameter bounds both edges.
func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	id, ok := pictureID(w, r)
	if !ok {
		return
	}

	maxDimension := 0
	if s := r.URL.Query().Get("max"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSONError(w, "max must be a positive integer", http.StatusBadRequest)
			return
		}
		maxDimension = n
	}

	p, err := h.db.GetPicture(r.Context(), id)
	if !h.pictureFound(w, err) {
		return
	}
	if h.previews.PathChanged(id, p.Path()) {
		logging.Debug("Preview of %s moved to %s, reloading", id, p.Path())
	}

	img, err := h.previews.GetOrLoad(r.Context(), id)
	if err != nil {
		logging.Warn("GetPreview %s: %v", id, err)
		writeJSONError(w, "Failed to load preview", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := img.EncodeJPEG(&buf, maxDimension, previewQuality); err != nil {
		logging.Error("GetPreview %s: encode failed: %v", id, err)
		writeJSONError(w, "Failed to encode preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	serveImage(w, r, buf.Bytes())
}

// serveImage writes a JPEG body, giving up on clients that stop reading.
func serveImage(w http.ResponseWriter, r *http.Request, body []byte) {
	err := streaming.ServeBytes(r.Context(), w, "image/jpeg", body, streaming.DefaultConfig())
	switch {
	case err == nil:
	case errors.Is(err, streaming.ErrClientGone):
		logging.Debug("%s: client went away", r.URL.Path)
	default:
		logging.Warn("%s: %v", r.URL.Path, err)
	}
}

// pictureFound answers 404 or 500 for a failed lookup and reports whether
// the handler should continue.
func (h *Handlers) pictureFound(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "Picture not found", http.StatusNotFound)
		return false
	}
	logging.Error("picture lookup failed: %v", err)
	writeJSONError(w, "Failed to load picture", http.StatusInternalServerError)
	return false
}
