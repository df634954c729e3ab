package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"photo-catalog/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// pictureID parses the {id} route variable, answering 400 when it is not a
// UUID.
func pictureID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "Invalid picture id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
